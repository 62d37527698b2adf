package services

import (
	"testing"

	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags_CRUD(t *testing.T) {
	setupDatabase(t)

	tag := seedTag(t, "Mechanical Keyboards")
	assert.Equal(t, "mechanical-keyboards", tag.Slug)

	_, err := NewTag(TagInput{Name: "mechanical keyboards"})
	assert.True(t, IsKind(err, KindConflict))

	edited, err := EditTag(tag.ID, TagPatch{Name: lo.ToPtr("Keyboards"), IsActive: lo.ToPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "keyboards", edited.Slug)
	assert.False(t, edited.IsActive)

	found, err := GetTagWithSlug("KEYBOARDS")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, found.ID)

	_, err = GetTagWithID(999)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestListTags(t *testing.T) {
	setupDatabase(t)

	author := seedUser(t, "writer", models.UserRoleEditor)
	category := seedCategory(t, "General", nil)
	popular := seedTag(t, "Popular")
	seedTag(t, "Quiet")
	hidden, err := NewTag(TagInput{Name: "Hidden", IsActive: lo.ToPtr(false)})
	require.NoError(t, err)

	seedPost(t, "first-post", category.ID, []uint{popular.ID}, author.ID)

	items, count, err := ListTags(10, 0, "", lo.ToPtr(true))
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	require.Len(t, items, 2)
	assert.Equal(t, popular.ID, items[0].ID)
	assert.EqualValues(t, 1, items[0].PostCount)

	items, _, err = ListTags(10, 0, "hid", nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, hidden.ID, items[0].ID)
}

func TestDeleteTag_ClearsLinks(t *testing.T) {
	setupDatabase(t)

	author := seedUser(t, "writer", models.UserRoleEditor)
	category := seedCategory(t, "General", nil)
	tag := seedTag(t, "Doomed")
	keep := seedTag(t, "Kept")
	post := seedPost(t, "tagged-post", category.ID, []uint{tag.ID, keep.ID}, author.ID)

	require.NoError(t, DeleteTag(tag.ID))

	item, err := GetPost(post.ID)
	require.NoError(t, err)
	require.Len(t, item.Tags, 1)
	assert.Equal(t, keep.ID, item.Tags[0].ID)
}
