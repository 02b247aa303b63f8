package utils

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetCacheSingleton(t *testing.T) {
	const n = 8
	instances := make([]*GlobalCache, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			instances[i] = GetCache()
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, instances[0], instances[i])
	}
}

func TestCacheSetGetDelete(t *testing.T) {
	c := GetCache()

	c.Set("k", "v", time.Minute)
	assert.Equal(t, "v", c.Get("k"))

	c.Delete("k")
	assert.Nil(t, c.Get("k"))

	c.Set("gone", 1, -time.Second)
	assert.Nil(t, c.Get("gone"), "expired entries read as absent")
}
