package storage_test

import (
	"testing"

	"git.solsynth.dev/hypernet/forum/pkg/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Unconfigured(t *testing.T) {
	client, err := storage.New("", "auto", "", "", "forum", "")
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestNew_MissingBucket(t *testing.T) {
	_, err := storage.New("https://s3.example.com", "auto", "key", "secret", "", "")
	assert.Error(t, err)
}

func TestClient_FileURL(t *testing.T) {
	client, err := storage.New("https://s3.example.com/", "auto", "key", "secret", "forum", "")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com/forum/post/a.webp", client.FileURL("post/a.webp"))

	client, err = storage.New("https://s3.example.com", "auto", "key", "secret", "forum", "https://cdn.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/post/a.webp", client.FileURL("post/a.webp"))
}

func TestProfiles(t *testing.T) {
	for _, name := range []string{"avatar", "post", "category", "editor"} {
		profile, ok := storage.GetProfile(name)
		require.True(t, ok, name)
		assert.Equal(t, name, profile.Name)
		assert.Positive(t, profile.MaxSize)
		assert.Contains(t, profile.MimeTypes, "image/png")
	}

	_, ok := storage.GetProfile("video")
	assert.False(t, ok)

	avatar, _ := storage.GetProfile("avatar")
	meta := avatar.Metadata()
	assert.Equal(t, "avatar", meta["profile"])
	assert.Equal(t, "256x256", meta["resize"])
	assert.Equal(t, "true", meta["crop"])
}
