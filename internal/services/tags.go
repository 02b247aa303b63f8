package services

import (
	"regexp"
	"strings"
	"unicode"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// A hashtag token is a maximal \w+ run right after '#'. A '#' preceded
// by '&' is skipped so HTML entities like &#39; in rich content do not
// produce phantom tags.
var hashtagRE = regexp.MustCompile(`#(\w+)`)

// ExtractHashtags returns the distinct normalized tag names referenced
// in text, in first-appearance order. Extraction is idempotent: the
// same content always yields the same list.
func ExtractHashtags(text string) []string {
	if text == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var names []string
	for _, m := range hashtagRE.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > 0 && text[m[0]-1] == '&' {
			continue
		}
		name := strings.ToLower(text[m[2]:m[3]])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// NormalizeTagName lower-cases a manually entered tag and strips
// surrounding punctuation (including a leading '#').
func NormalizeTagName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// CollectTags merges manually entered comma-separated tags with the
// hashtags found in the title and content, deduplicated case-insensitively.
func CollectTags(title, content, manual string) []string {
	seen := make(map[string]struct{})
	var names []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	if manual != "" {
		for _, raw := range strings.Split(manual, ",") {
			add(NormalizeTagName(raw))
		}
	}
	for _, name := range ExtractHashtags(title) {
		add(name)
	}
	for _, name := range ExtractHashtags(content) {
		add(name)
	}
	return names
}

// firstOrCreateTag is the idempotent create-or-get. Two requests racing
// to introduce the same name both succeed: the loser's insert hits the
// unique index and falls back to reading the winner's row.
func firstOrCreateTag(tx *gorm.DB, name string) (models.Tag, error) {
	var tag models.Tag
	if err := tx.Where("name = ?", name).First(&tag).Error; err == nil {
		return tag, nil
	}
	tag = models.Tag{Name: name}
	if err := tx.Create(&tag).Error; err != nil {
		if !isUniqueViolation(err) {
			return tag, err
		}
		if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
			return tag, err
		}
	}
	return tag, nil
}

// SyncPostTags resolves each name to a Tag row and replaces the post's
// join rows with the result, recording each tag's position so reads can
// reproduce the order the tags were written in. Prior associations not
// in names are dropped; orphaned tags are left alone.
func SyncPostTags(tx *gorm.DB, post *models.Post, names []string) error {
	if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostTag{}).Error; err != nil {
		return err
	}
	tags := make([]models.Tag, 0, len(names))
	for i, name := range names {
		tag, err := firstOrCreateTag(tx, name)
		if err != nil {
			return err
		}
		link := models.PostTag{PostID: post.ID, TagID: tag.ID, Position: i}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
		tags = append(tags, tag)
	}
	post.Tags = tags
	return nil
}
