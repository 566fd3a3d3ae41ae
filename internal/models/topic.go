// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"unicode"

	"gorm.io/gorm"
)

// Topic is a curated tag users can attach to posts, addressable by slug.
// Distinct from Hashtag, which is free-form text extracted from content.
type Topic struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Slug string `gorm:"size:50;uniqueIndex;not null" json:"slug"`
}

// BeforeSave derives the slug from the name when none was supplied.
func (t *Topic) BeforeSave(_ *gorm.DB) error {
	if t.Slug == "" {
		t.Slug = Slugify(t.Name)
	}
	return nil
}

// Slugify lowercases s and collapses every run of non-alphanumeric
// characters into a single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Hashtag is a free-form tag harvested from post text, stored without
// the leading '#'. Posts reference hashtags by text pattern only; there
// is no join table.
type Hashtag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:64;uniqueIndex;not null" json:"name"`
}
