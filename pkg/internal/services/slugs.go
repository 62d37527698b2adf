package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/spf13/viper"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const (
	PostSlugMinLength = 3
	PostSlugMaxLength = 100

	defaultSlugAttempts = 100
)

var (
	postSlugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugUnsafeChars = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashes      = regexp.MustCompile(`-{2,}`)
)

// GenerateSlug turns a free-text name into a lowercase hyphenated candidate.
func GenerateSlug(name string) string {
	chain := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	out, _, _ := transform.String(chain, name)
	out = strings.ToLower(out)

	out = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, out)
	out = slugDashes.ReplaceAllString(out, "-")

	return strings.Trim(out, "-")
}

// SanitizeSlug drops every character a stored slug cannot contain.
func SanitizeSlug(slug string) string {
	return slugUnsafeChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(slug)), "")
}

func NormalizePostSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func ValidatePostSlug(slug string) error {
	switch {
	case len(slug) < PostSlugMinLength:
		return ValidationError("slug must be at least %d characters long", PostSlugMinLength)
	case len(slug) > PostSlugMaxLength:
		return ValidationError("slug must be at most %d characters long", PostSlugMaxLength)
	case !postSlugPattern.MatchString(slug):
		return ValidationError("slug may only contain lowercase letters, numbers and single hyphens between them")
	}
	return nil
}

// SlugTaken checks the slug column of model's table, ignoring the record with excludeID.
func SlugTaken(tx *gorm.DB, model any, slug string, excludeID uint) (bool, error) {
	query := tx.Model(model).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UniqueSlug appends -1, -2 and so on to base until the slug is free.
func UniqueSlug(tx *gorm.DB, model any, base string, excludeID uint) (string, error) {
	if len(base) == 0 {
		return "", ValidationError("unable to derive a slug from an empty name")
	}

	attempts := viper.GetInt("slug.max_attempts")
	if attempts <= 0 {
		attempts = defaultSlugAttempts
	}

	candidate := base
	for idx := 1; idx <= attempts; idx++ {
		taken, err := SlugTaken(tx, model, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, idx)
	}

	return "", ConflictError("unable to find a free slug for %q after %d attempts", base, attempts)
}
