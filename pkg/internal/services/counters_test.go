package services

import (
	"testing"

	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileCounters(t *testing.T) {
	fx := setupPostFixture(t)
	identity := newFakeIdentity()

	post := seedPost(t, "drifting", fx.category.ID, []uint{fx.tags[0].ID}, fx.author.ID)
	root := newTestComment(t, identity, post.ID, nil, "jane-token")
	newTestComment(t, identity, post.ID, &root.ID, "john-token")

	report, err := ReconcileCounters()
	require.NoError(t, err)
	assert.Zero(t, report.Total())

	require.NoError(t, database.C.Model(&models.Category{}).Where("id = ?", fx.category.ID).UpdateColumn("post_count", 9).Error)
	require.NoError(t, database.C.Model(&models.Tag{}).Where("id = ?", fx.tags[1].ID).UpdateColumn("post_count", 4).Error)
	require.NoError(t, database.C.Model(&models.User{}).Where("id = ?", fx.author.ID).UpdateColumn("post_count", 0).Error)
	require.NoError(t, database.C.Model(&models.Post{}).Where("id = ?", post.ID).UpdateColumn("comment_count", 5).Error)
	require.NoError(t, database.C.Model(&models.Comment{}).Where("id = ?", root.ID).UpdateColumn("reply_count", 0).Error)

	report, err = ReconcileCounters()
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{Categories: 1, Tags: 1, Users: 1, Posts: 1, Comments: 1}, report)

	assert.EqualValues(t, 1, reload[models.Category](t, fx.category.ID).PostCount)
	assert.EqualValues(t, 0, reload[models.Tag](t, fx.tags[1].ID).PostCount)
	assert.EqualValues(t, 1, reload[models.User](t, fx.author.ID).PostCount)
	assert.EqualValues(t, 2, reload[models.Post](t, post.ID).CommentCount)
	assert.EqualValues(t, 1, reload[models.Comment](t, root.ID).ReplyCount)
}
