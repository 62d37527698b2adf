package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

var databaseSeq atomic.Int64

// setupDatabase points database.C at a fresh in-memory sqlite database for one test.
func setupDatabase(t *testing.T) {
	t.Helper()

	viper.Reset()
	viper.Set("uploads.temp_dir", t.TempDir())

	dsn := fmt.Sprintf("sqlite://file:forum_test_%d?mode=memory&cache=shared", databaseSeq.Add(1))
	db, err := database.Open(dsn)
	require.NoError(t, err)
	require.NoError(t, database.RunMigration(db))

	database.C = db
	t.Cleanup(func() {
		if raw, err := db.DB(); err == nil {
			_ = raw.Close()
		}
		viper.Reset()
	})
}

func seedUser(t *testing.T, username, role string) models.User {
	t.Helper()

	user := models.User{
		Email:    username + "@example.com",
		Username: username,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, database.C.Create(&user).Error)
	return user
}

func seedCategory(t *testing.T, name string, parent *uint) models.Category {
	t.Helper()

	category, err := NewCategory(CategoryInput{Name: name, ParentID: parent})
	require.NoError(t, err)
	return category
}

func seedTag(t *testing.T, name string) models.Tag {
	t.Helper()

	tag, err := NewTag(TagInput{Name: name})
	require.NoError(t, err)
	return tag
}

func seedPost(t *testing.T, slug string, category uint, tags []uint, author uint) models.Post {
	t.Helper()

	post, err := NewPost(context.Background(), nil, PostInput{
		Title:      "Post " + slug,
		Slug:       slug,
		Content:    "The quick brown fox jumps over the lazy dog.",
		CategoryID: category,
		TagIDs:     tags,
		Status:     models.PostStatusPublished,
	}, author, RequestMeta{IP: "127.0.0.1"})
	require.NoError(t, err)
	return post
}

func reload[T any](t *testing.T, id uint) T {
	t.Helper()

	var out T
	require.NoError(t, database.C.Where("id = ?", id).First(&out).Error)
	return out
}

type fakeCatalog struct {
	products map[string]models.RelatedProduct
	calls    int
}

func (v *fakeCatalog) Snapshot(_ context.Context, urlKey string) (models.RelatedProduct, error) {
	v.calls++
	if product, ok := v.products[urlKey]; ok {
		return product, nil
	}
	return models.RelatedProduct{}, errors.New("product not found")
}

type fakeIdentity map[string]models.ExternalIdentity

func (v fakeIdentity) Resolve(_ context.Context, token string) (models.ExternalIdentity, error) {
	if profile, ok := v[token]; ok {
		return profile, nil
	}
	return models.ExternalIdentity{}, errors.New("customer is not authorized")
}

func newFakeIdentity() fakeIdentity {
	return fakeIdentity{
		"jane-token": {
			Email:     "jane@example.com",
			Firstname: "Jane",
			Lastname:  "Doe",
			Picture:   lo.ToPtr("https://cdn.example.com/jane.png"),
			Ranking:   []string{"gold"},
		},
		"john-token": {
			Email:     "john@example.com",
			Firstname: "John",
			Lastname:  "Roe",
		},
	}
}
