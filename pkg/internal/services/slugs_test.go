package services

import (
	"strings"
	"testing"

	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlug(t *testing.T) {
	cases := map[string]string{
		"Hello World":            "hello-world",
		"  Trim   me  ":          "trim-me",
		"Crème Brûlée":           "creme-brulee",
		"C++ & Go!":              "c-go",
		"already-a-slug":         "already-a-slug",
		"Multiple---dashes__too": "multiple-dashes-too",
		"!!!":                    "",
	}

	for in, want := range cases {
		assert.Equal(t, want, GenerateSlug(in), in)
	}
}

func TestValidatePostSlug(t *testing.T) {
	assert.NoError(t, ValidatePostSlug("abc"))
	assert.NoError(t, ValidatePostSlug("my-first-post-2024"))

	for _, slug := range []string{
		"ab",
		strings.Repeat("a", PostSlugMaxLength+1),
		"-leading",
		"trailing-",
		"double--dash",
		"Upper",
		"under_score",
	} {
		err := ValidatePostSlug(slug)
		assert.True(t, IsKind(err, KindValidation), slug)
	}
}

func TestSanitizeSlug(t *testing.T) {
	assert.Equal(t, "hello-world", SanitizeSlug("  Hello-World!  "))
	assert.Equal(t, "", SanitizeSlug("%%%"))
}

func TestUniqueSlug(t *testing.T) {
	setupDatabase(t)

	seedCategory(t, "News", nil)
	seedCategory(t, "News 1", nil)

	slug, err := UniqueSlug(database.C, &models.Category{}, "news", 0)
	require.NoError(t, err)
	assert.Equal(t, "news-2", slug)

	slug, err = UniqueSlug(database.C, &models.Category{}, "fresh", 0)
	require.NoError(t, err)
	assert.Equal(t, "fresh", slug)

	viper.Set("slug.max_attempts", 2)
	_, err = UniqueSlug(database.C, &models.Category{}, "news", 0)
	assert.True(t, IsKind(err, KindConflict))
}
