package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *GitHub {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g := NewGitHub("")
	require.NoError(t, g.WithBaseURL(srv.URL))
	return g
}

func TestFetchMetadata(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widget", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"stargazers_count": 10,
			"forks_count": 2,
			"language": "Go",
			"description": "A widget",
			"updated_at": "2024-03-05T12:00:00Z"
		}`))
	})

	meta, err := g.FetchMetadata(context.Background(), "acme", "widget")
	require.NoError(t, err)
	assert.Equal(t, 10, meta.StarCount)
	assert.Equal(t, 2, meta.ForkCount)
	require.NotNil(t, meta.Language)
	assert.Equal(t, "Go", *meta.Language)
	assert.Equal(t, "A widget", meta.Description)
	require.NotNil(t, meta.UpdatedAt)
	assert.Equal(t, 2024, meta.UpdatedAt.Year())
}

func TestFetchMetadataMissingFields(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"stargazers_count": 0, "forks_count": 0}`))
	})

	meta, err := g.FetchMetadata(context.Background(), "acme", "widget")
	require.NoError(t, err)
	assert.Nil(t, meta.Language)
	assert.Empty(t, meta.Description)
	assert.Nil(t, meta.UpdatedAt)
}

func TestFetchMetadataNotFound(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})

	_, err := g.FetchMetadata(context.Background(), "acme", "gone")
	assert.ErrorIs(t, err, ErrRepoNotFound)
}

func TestFetchMetadataTransientFailure(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
	})

	_, err := g.FetchMetadata(context.Background(), "acme", "widget")
	require.Error(t, err)
	// Server errors must stay distinguishable from genuine absence.
	assert.NotErrorIs(t, err, ErrRepoNotFound)
}

func TestFetchMetadataEmptyInput(t *testing.T) {
	g := NewGitHub("")

	_, err := g.FetchMetadata(context.Background(), "", "widget")
	assert.ErrorIs(t, err, ErrInvalidRepo)

	_, err = g.FetchMetadata(context.Background(), "acme", "  ")
	assert.ErrorIs(t, err, ErrInvalidRepo)
}
