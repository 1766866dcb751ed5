package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/opensourcefinder/server/internal/domain"
	"github.com/opensourcefinder/server/internal/gateway"
	"github.com/opensourcefinder/server/internal/repository"
)

// memStore backs the in-memory repositories the service tests run against.
// Likes and bookmarks are kept as sets and counters are derived from them,
// mirroring the guarantees the real storage layer gives.
type memStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*domain.User
	projects  map[uuid.UUID]*domain.Project
	order     []uuid.UUID
	likes     map[uuid.UUID]map[uuid.UUID]bool
	bookmarks map[uuid.UUID]map[uuid.UUID]bool
	inquiries []*domain.Inquiry
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[uuid.UUID]*domain.User),
		projects:  make(map[uuid.UUID]*domain.Project),
		likes:     make(map[uuid.UUID]map[uuid.UUID]bool),
		bookmarks: make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (s *memStore) projectView(p *domain.Project) *domain.Project {
	cp := *p
	cp.LikerIDs = []uuid.UUID{}
	for uid := range s.likes[p.ID] {
		cp.LikerIDs = append(cp.LikerIDs, uid)
	}
	cp.LikeCount = len(cp.LikerIDs)
	return &cp
}

type memProjectRepo struct{ s *memStore }

func (r *memProjectRepo) Create(_ context.Context, p *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.projects {
		if existing.CanonicalURL == p.CanonicalURL {
			return repository.ErrDuplicate
		}
	}
	cp := *p
	r.s.projects[p.ID] = &cp
	r.s.order = append(r.s.order, p.ID)
	r.s.likes[p.ID] = make(map[uuid.UUID]bool)
	return nil
}

func (r *memProjectRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[id]
	if !ok {
		return nil, nil
	}
	return r.s.projectView(p), nil
}

func (r *memProjectRepo) GetByCanonicalURL(_ context.Context, url string) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.projects {
		if p.CanonicalURL == url {
			return r.s.projectView(p), nil
		}
	}
	return nil, nil
}

func (r *memProjectRepo) List(_ context.Context) ([]domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Project
	for _, id := range r.s.order {
		if p, ok := r.s.projects[id]; ok {
			out = append(out, *r.s.projectView(p))
		}
	}
	return out, nil
}

func (r *memProjectRepo) ListBySubmitter(_ context.Context, userID uuid.UUID) ([]domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Project
	for _, id := range r.s.order {
		if p, ok := r.s.projects[id]; ok && p.SubmittedBy == userID {
			out = append(out, *r.s.projectView(p))
		}
	}
	return out, nil
}

func (r *memProjectRepo) ListBookmarkedBy(_ context.Context, userID uuid.UUID) ([]domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Project
	for _, id := range r.s.order {
		if r.s.bookmarks[userID][id] {
			out = append(out, *r.s.projectView(r.s.projects[id]))
		}
	}
	return out, nil
}

func (r *memProjectRepo) Refresh(_ context.Context, p *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.projects[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Description = p.Description
	stored.Language = p.Language
	stored.StarCount = p.StarCount
	stored.ForkCount = p.ForkCount
	stored.LastSyncedAt = p.LastSyncedAt
	return nil
}

func (r *memProjectRepo) Reregister(_ context.Context, p *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.projects[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range r.s.projects {
		if id != p.ID && other.CanonicalURL == p.CanonicalURL {
			return repository.ErrDuplicate
		}
	}
	stored.CanonicalURL = p.CanonicalURL
	stored.Title = p.Title
	stored.DisplayTitle = p.DisplayTitle
	stored.OwnerHandle = p.OwnerHandle
	stored.Description = p.Description
	stored.Language = p.Language
	stored.StarCount = p.StarCount
	stored.ForkCount = p.ForkCount
	stored.LastSyncedAt = p.LastSyncedAt
	r.s.likes[p.ID] = make(map[uuid.UUID]bool)
	return nil
}

func (r *memProjectRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.projects, id)
	delete(r.s.likes, id)
	return nil
}

func (r *memProjectRepo) DeleteBySubmitter(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.projects {
		if p.SubmittedBy == userID {
			delete(r.s.projects, id)
			delete(r.s.likes, id)
		}
	}
	return nil
}

func (r *memProjectRepo) ToggleLike(_ context.Context, projectID, userID uuid.UUID) (bool, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set, ok := r.s.likes[projectID]
	if !ok {
		return false, 0, repository.ErrNotFound
	}
	liked := !set[userID]
	if liked {
		set[userID] = true
	} else {
		delete(set, userID)
	}
	return liked, len(set), nil
}

func (r *memProjectRepo) RemoveLikesByUser(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, set := range r.s.likes {
		delete(set, userID)
	}
	return nil
}

func (r *memProjectRepo) StatsBySubmitter(_ context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &domain.UserStats{}
	for _, p := range r.s.projects {
		if p.SubmittedBy == userID {
			stats.TotalProjects++
			stats.TotalStars += p.StarCount
			stats.TotalForks += p.ForkCount
		}
	}
	return stats, nil
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	cp.Bookmarks = []uuid.UUID{}
	for pid := range r.s.bookmarks[id] {
		cp.Bookmarks = append(cp.Bookmarks, pid)
	}
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByHandle(_ context.Context, handle string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Handle != nil && *u.Handle == handle {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	if u.Handle != nil {
		for id, other := range r.s.users {
			if id != u.ID && other.Handle != nil && *other.Handle == *u.Handle {
				return repository.ErrDuplicate
			}
		}
	}
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	delete(r.s.bookmarks, id)
	return nil
}

func (r *memUserRepo) ToggleBookmark(_ context.Context, userID, projectID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[projectID]; !ok {
		return false, repository.ErrNotFound
	}
	set, ok := r.s.bookmarks[userID]
	if !ok {
		set = make(map[uuid.UUID]bool)
		r.s.bookmarks[userID] = set
	}
	bookmarked := !set[projectID]
	if bookmarked {
		set[projectID] = true
	} else {
		delete(set, projectID)
	}
	return bookmarked, nil
}

type memInquiryRepo struct{ s *memStore }

func (r *memInquiryRepo) Create(_ context.Context, inquiry *domain.Inquiry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *inquiry
	r.s.inquiries = append(r.s.inquiries, &cp)
	return nil
}

// stubFetcher serves canned metadata keyed by "owner/name" and can be told
// to fail for specific repositories.
type stubFetcher struct {
	mu    sync.Mutex
	repos map[string]*gateway.RepoMetadata
	fail  map[string]error
	calls int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		repos: make(map[string]*gateway.RepoMetadata),
		fail:  make(map[string]error),
	}
}

func (f *stubFetcher) FetchMetadata(_ context.Context, owner, name string) (*gateway.RepoMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	key := fmt.Sprintf("%s/%s", owner, name)
	if err, ok := f.fail[key]; ok {
		return nil, err
	}
	meta, ok := f.repos[key]
	if !ok {
		return nil, gateway.ErrRepoNotFound
	}
	cp := *meta
	return &cp, nil
}

type stubSuggester struct {
	keywords []string
	lastText string
}

func (s *stubSuggester) Suggest(_ context.Context, description string) []string {
	s.lastText = description
	return s.keywords
}
