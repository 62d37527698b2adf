package services

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugAsymmetry(t *testing.T) {
	setupDatabase(t)

	category := seedCategory(t, "Tech News", nil)
	assert.Equal(t, "tech-news", category.Slug)
	_, err := NewCategory(CategoryInput{Name: "Tech News"})
	assert.True(t, IsKind(err, KindConflict))

	first, err := NewBanner(BannerInput{Title: "Tech News", ImageURL: "https://cdn.example.com/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "tech-news", first.Slug)
	assert.Equal(t, "home", first.Position)

	second, err := NewBanner(BannerInput{Title: "Tech News", ImageURL: "https://cdn.example.com/b.png"})
	require.NoError(t, err)
	assert.Equal(t, "tech-news-1", second.Slug)
}

func TestListActiveBanners(t *testing.T) {
	setupDatabase(t)

	now := time.Now()
	live, err := NewBanner(BannerInput{Title: "Live", ImageURL: "live.png", Position: "sidebar"})
	require.NoError(t, err)
	_, err = NewBanner(BannerInput{Title: "Future", ImageURL: "future.png", Position: "sidebar", StartsAt: lo.ToPtr(now.Add(2 * time.Hour))})
	require.NoError(t, err)
	_, err = NewBanner(BannerInput{Title: "Expired", ImageURL: "expired.png", Position: "sidebar", EndsAt: lo.ToPtr(now.Add(-2 * time.Hour))})
	require.NoError(t, err)
	_, err = NewBanner(BannerInput{Title: "Off", ImageURL: "off.png", Position: "sidebar", IsActive: lo.ToPtr(false)})
	require.NoError(t, err)
	_, err = NewBanner(BannerInput{Title: "Elsewhere", ImageURL: "home.png"})
	require.NoError(t, err)

	items, err := ListActiveBanners("sidebar")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, live.ID, items[0].ID)

	all, count, err := ListBanners(10, 0, "sidebar")
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
	assert.Len(t, all, 4)
}

func TestBannerWindowAndEdits(t *testing.T) {
	setupDatabase(t)

	now := time.Now()
	_, err := NewBanner(BannerInput{Title: "Broken", ImageURL: "x.png", StartsAt: &now, EndsAt: lo.ToPtr(now.Add(-time.Hour))})
	assert.True(t, IsKind(err, KindValidation))

	banner, err := NewBanner(BannerInput{Title: "Summer Sale", ImageURL: "x.png"})
	require.NoError(t, err)

	edited, err := EditBanner(banner.ID, BannerPatch{Title: lo.ToPtr("Winter Sale"), Order: lo.ToPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, "winter-sale", edited.Slug)
	assert.Equal(t, 3, edited.Order)

	_, err = EditBanner(banner.ID, BannerPatch{StartsAt: &now, EndsAt: lo.ToPtr(now.Add(-time.Minute))})
	assert.True(t, IsKind(err, KindValidation))

	require.NoError(t, DeleteBanner(banner.ID))
	assert.True(t, IsKind(DeleteBanner(banner.ID), KindNotFound))
	_, err = GetBannerWithID(banner.ID)
	assert.True(t, IsKind(err, KindNotFound))
}
