package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// IntToString formats an int in base 10.
func IntToString(i int) string {
	return strconv.Itoa(i)
}
