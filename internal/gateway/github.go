// Package gateway talks to the external repository metadata service.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/github"
	"golang.org/x/oauth2"
)

var (
	// ErrRepoNotFound means the upstream reported the repository as absent or
	// inaccessible. Any other error from FetchMetadata is transient; callers
	// decide whether to retry or reject.
	ErrRepoNotFound = errors.New("repository not found or inaccessible")
	ErrInvalidRepo  = errors.New("owner and name are required")
)

// RepoMetadata mirrors the fields we care about from the upstream response.
// The source is untrusted: absent fields come back zero-valued.
type RepoMetadata struct {
	StarCount   int
	ForkCount   int
	Language    *string
	Description string
	UpdatedAt   *time.Time
}

type GitHub struct {
	client *github.Client
}

// NewGitHub builds a gateway client. An empty token means unauthenticated
// requests, which GitHub rate-limits aggressively but still serves.
func NewGitHub(token string) *GitHub {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.Background(), ts)
	}
	return &GitHub{client: github.NewClient(hc)}
}

// WithBaseURL redirects API calls to a different root. Tests point this at a
// local httptest server.
func (g *GitHub) WithBaseURL(raw string) error {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing base URL: %w", err)
	}
	g.client.BaseURL = u
	return nil
}

// FetchMetadata is a direct passthrough to GET /repos/{owner}/{repo}: no
// caching, no retries.
func (g *GitHub) FetchMetadata(ctx context.Context, owner, name string) (*RepoMetadata, error) {
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(name) == "" {
		return nil, ErrInvalidRepo
	}

	repo, resp, err := g.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden) {
			return nil, ErrRepoNotFound
		}
		return nil, fmt.Errorf("fetching repository %s/%s: %w", owner, name, err)
	}

	meta := &RepoMetadata{
		StarCount:   repo.GetStargazersCount(),
		ForkCount:   repo.GetForksCount(),
		Description: repo.GetDescription(),
		Language:    repo.Language,
	}
	if repo.UpdatedAt != nil {
		t := repo.UpdatedAt.Time
		meta.UpdatedAt = &t
	}
	return meta, nil
}
