package service

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensourcefinder/server/internal/domain"
)

func newEngagementFixture(t *testing.T) (*EngagementService, *memStore, uuid.UUID, uuid.UUID) {
	t.Helper()
	store := newMemStore()
	svc := NewEngagementService(&memProjectRepo{s: store}, &memUserRepo{s: store})

	userID := seedUser(t, store, "")
	project := &domain.Project{ID: uuid.New(), CanonicalURL: "https://github.com/acme/widget", SubmittedBy: userID}
	require.NoError(t, (&memProjectRepo{s: store}).Create(context.Background(), project))

	return svc, store, userID, project.ID
}

func TestToggleLikeRoundTrip(t *testing.T) {
	svc, _, userID, projectID := newEngagementFixture(t)

	first, err := svc.ToggleLike(context.Background(), projectID, userID)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, 1, first.LikeCount)

	second, err := svc.ToggleLike(context.Background(), projectID, userID)
	require.NoError(t, err)
	assert.False(t, second.Liked)
	assert.Equal(t, 0, second.LikeCount)
}

func TestLikeCounterMatchesSet(t *testing.T) {
	svc, store, _, projectID := newEngagementFixture(t)
	repo := &memProjectRepo{s: store}

	users := make([]uuid.UUID, 5)
	for i := range users {
		users[i] = seedUser(t, store, "")
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		_, err := svc.ToggleLike(context.Background(), projectID, users[rng.Intn(len(users))])
		require.NoError(t, err)

		p, err := repo.GetByID(context.Background(), projectID)
		require.NoError(t, err)
		assert.Equal(t, len(p.LikerIDs), p.LikeCount)
	}
}

func TestToggleBookmarkRoundTrip(t *testing.T) {
	svc, store, userID, projectID := newEngagementFixture(t)

	first, err := svc.ToggleBookmark(context.Background(), userID, projectID)
	require.NoError(t, err)
	assert.True(t, first.Bookmarked)

	user, err := (&memUserRepo{s: store}).GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Contains(t, user.Bookmarks, projectID)

	second, err := svc.ToggleBookmark(context.Background(), userID, projectID)
	require.NoError(t, err)
	assert.False(t, second.Bookmarked)

	user, err = (&memUserRepo{s: store}).GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, user.Bookmarks)
}

func TestToggleBookmarkMissingProject(t *testing.T) {
	svc, _, userID, _ := newEngagementFixture(t)

	_, err := svc.ToggleBookmark(context.Background(), userID, uuid.New())
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
