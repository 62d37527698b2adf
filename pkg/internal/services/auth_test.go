package services

import (
	"testing"
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/database"
	"git.solsynth.dev/hypernet/forum/pkg/internal/models"
	"git.solsynth.dev/hypernet/forum/pkg/internal/sec"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T) *sec.TokenIssuer {
	t.Helper()

	issuer, err := sec.NewTokenIssuer("a-very-long-testing-secret", time.Minute)
	require.NoError(t, err)
	return issuer
}

func TestUsers_Lifecycle(t *testing.T) {
	setupDatabase(t)

	user, err := NewUser(UserInput{
		Email:    "  Editor@Example.COM ",
		Username: "editor",
		Password: "correct-horse",
		Role:     models.UserRoleEditor,
	})
	require.NoError(t, err)
	assert.Equal(t, "editor@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "correct-horse", user.Password)

	_, err = NewUser(UserInput{Email: "editor@example.com", Username: "other", Password: "correct-horse"})
	assert.True(t, IsKind(err, KindConflict))
	_, err = NewUser(UserInput{Email: "other@example.com", Username: "editor", Password: "correct-horse"})
	assert.True(t, IsKind(err, KindConflict))
	_, err = NewUser(UserInput{Email: "not-an-email", Username: "broken", Password: "correct-horse"})
	assert.True(t, IsKind(err, KindValidation))
	_, err = NewUser(UserInput{Email: "short@example.com", Username: "short", Password: "short"})
	assert.True(t, IsKind(err, KindValidation))
	_, err = NewUser(UserInput{Email: "root@example.com", Username: "root", Password: "correct-horse", Role: "owner"})
	assert.True(t, IsKind(err, KindValidation))

	edited, err := EditUser(user.ID, UserPatch{FirstName: lo.ToPtr("Ed"), Role: lo.ToPtr(models.UserRoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, "Ed", edited.FirstName)
	assert.True(t, edited.IsAdmin())

	items, count, err := ListUsers(10, 0, "edit", models.UserRoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, user.ID, items[0].ID)

	require.NoError(t, DeleteUser(user.ID))
	_, err = GetUserWithID(user.ID)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestLoginAndRefresh(t *testing.T) {
	setupDatabase(t)
	issuer := newTestIssuer(t)

	user, err := NewUser(UserInput{Email: "jane@example.com", Username: "jane", Password: "correct-horse"})
	require.NoError(t, err)

	_, _, err = Login(issuer, "jane@example.com", "wrong-password", RequestMeta{})
	assert.True(t, IsKind(err, KindUnauthorized))
	_, _, err = Login(issuer, "nobody@example.com", "correct-horse", RequestMeta{})
	assert.True(t, IsKind(err, KindUnauthorized))

	logged, pair, err := Login(issuer, "JANE@example.com", "correct-horse", RequestMeta{IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(issuer.TTL().Seconds()), pair.ExpiresIn)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotNil(t, reload[models.User](t, user.ID).LastLoginAt)

	authed, err := AuthenticateToken(issuer, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = AuthenticateToken(issuer, "garbage")
	assert.True(t, IsKind(err, KindUnauthorized))

	rotated, err := RefreshSession(issuer, pair.RefreshToken, RequestMeta{})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	_, err = RefreshSession(issuer, pair.RefreshToken, RequestMeta{})
	assert.True(t, IsKind(err, KindUnauthorized))

	require.NoError(t, Logout(user.ID, rotated.RefreshToken, RequestMeta{}))
	_, err = RefreshSession(issuer, rotated.RefreshToken, RequestMeta{})
	assert.True(t, IsKind(err, KindUnauthorized))

	activities, count, err := ListUserActivities(user.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.ElementsMatch(t, []string{ActivityLogin, ActivityLogout}, lo.Map(activities, func(item models.UserActivity, _ int) string {
		return item.Action
	}))
}

func TestLogin_DisabledAccount(t *testing.T) {
	setupDatabase(t)
	issuer := newTestIssuer(t)

	user, err := NewUser(UserInput{Email: "gone@example.com", Username: "gone", Password: "correct-horse"})
	require.NoError(t, err)
	_, pair, err := Login(issuer, "gone@example.com", "correct-horse", RequestMeta{})
	require.NoError(t, err)

	_, err = EditUser(user.ID, UserPatch{IsActive: lo.ToPtr(false)})
	require.NoError(t, err)

	_, _, err = Login(issuer, "gone@example.com", "correct-horse", RequestMeta{})
	assert.True(t, IsKind(err, KindForbidden))

	_, err = AuthenticateToken(issuer, pair.AccessToken)
	assert.True(t, IsKind(err, KindForbidden))

	_, err = RefreshSession(issuer, pair.RefreshToken, RequestMeta{})
	assert.True(t, IsKind(err, KindUnauthorized))
}

func TestChangePassword(t *testing.T) {
	setupDatabase(t)
	issuer := newTestIssuer(t)

	user, err := NewUser(UserInput{Email: "pw@example.com", Username: "pw", Password: "old-password"})
	require.NoError(t, err)
	_, pair, err := Login(issuer, "pw@example.com", "old-password", RequestMeta{})
	require.NoError(t, err)

	err = ChangePassword(user.ID, "not-it", "new-password", RequestMeta{})
	assert.True(t, IsKind(err, KindUnauthorized))
	err = ChangePassword(user.ID, "old-password", "short", RequestMeta{})
	assert.True(t, IsKind(err, KindValidation))

	require.NoError(t, ChangePassword(user.ID, "old-password", "new-password", RequestMeta{}))

	_, err = RefreshSession(issuer, pair.RefreshToken, RequestMeta{})
	assert.True(t, IsKind(err, KindUnauthorized))

	_, _, err = Login(issuer, "pw@example.com", "new-password", RequestMeta{})
	assert.NoError(t, err)
}

func TestPurgeExpiredRefreshTokens(t *testing.T) {
	setupDatabase(t)

	user := seedUser(t, "purged", models.UserRoleUser)
	now := time.Now()
	require.NoError(t, database.C.Create(&[]models.RefreshToken{
		{TokenHash: sec.HashToken("expired"), UserID: user.ID, ExpiresAt: now.Add(-time.Hour)},
		{TokenHash: sec.HashToken("valid"), UserID: user.ID, ExpiresAt: now.Add(time.Hour)},
	}).Error)

	count, err := PurgeExpiredRefreshTokens()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	setupDatabase(t)

	require.NoError(t, EnsureBootstrapAdmin())
	var count int64
	require.NoError(t, database.C.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)

	viper.Set("bootstrap.admin_email", "root@example.com")
	viper.Set("bootstrap.admin_password", "bootstrap-password")
	require.NoError(t, EnsureBootstrapAdmin())
	require.NoError(t, EnsureBootstrapAdmin())

	var users []models.User
	require.NoError(t, database.C.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.True(t, users[0].IsAdmin())
}
