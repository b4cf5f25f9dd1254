// Package model defines the data structures shared by every layer of the
// application. These are plain structs — the repository maps them to rows,
// the handlers marshal them to JSON, and neither concern leaks in here.
package model

import (
	"strings"
	"time"
)

// Field length limits enforced at write time.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxCodeLength        = 50000
	MaxTagLength         = 30
)

// Snippet is the central entity: a piece of code with metadata, owned by
// exactly one user and optionally grouped into a collection.
//
// AuthorID is immutable after creation. Views never decreases, and a user
// appears at most once in Likes (the store enforces that with a primary key).
type Snippet struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Code         string    `json:"code"`
	Language     string    `json:"language"`
	Tags         []string  `json:"tags"`
	IsPublic     bool      `json:"isPublic"`
	Views        int64     `json:"views"`
	Likes        []string  `json:"likes"` // user IDs, each at most once
	AuthorID     string    `json:"-"`
	Author       *Author   `json:"author,omitempty"` // expanded on read
	CollectionID *string   `json:"collectionId"`     // nil = uncategorized
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// LikedBy reports whether the given user is in the like set.
func (s *Snippet) LikedBy(userID string) bool {
	for _, id := range s.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Languages is the fixed set of accepted programming-language tags.
// Values are stored lowercase; anything that doesn't fit uses "other".
var Languages = []string{
	"javascript", "typescript", "python", "java", "csharp", "cpp", "c",
	"go", "rust", "ruby", "php", "swift", "kotlin", "scala", "sql",
	"html", "css", "bash", "json", "yaml", "markdown", "other",
}

var languageSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Languages))
	for _, l := range Languages {
		m[l] = struct{}{}
	}
	return m
}()

// ValidLanguage reports whether lang is a member of the language enumeration.
// Callers are expected to normalize first (see NormalizeLanguage).
func ValidLanguage(lang string) bool {
	_, ok := languageSet[lang]
	return ok
}

// NormalizeLanguage applies the write-time normalization: trim + lowercase.
func NormalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// NormalizeTags applies the write-time tag normalization: each tag is
// trimmed and lowercased, empty strings are dropped, and duplicates are
// removed preserving first occurrence. Returns a non-nil slice.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
