package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opensourcefinder/server/internal/domain"
	"github.com/opensourcefinder/server/internal/gateway"
	"github.com/opensourcefinder/server/internal/logging"
	"github.com/opensourcefinder/server/internal/repository"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrDuplicateProject = errors.New("project already exists")
	// ErrRepoGone means the upstream reported the repository as absent;
	// ErrUpstreamUnavailable covers every other upstream failure. The two
	// stay distinct so callers can reject permanently vs. ask to retry.
	ErrRepoGone            = errors.New("source repository does not exist")
	ErrUpstreamUnavailable = errors.New("source repository service unavailable")
	ErrNotProjectOwner     = errors.New("only the submitting user can modify this project")
	ErrNoLinkedAccount     = errors.New("no linked GitHub account")
)

// LastSyncedAt value used when the source never reported an update time.
const neverUpdated = "Never updated"

type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, owner, name string) (*gateway.RepoMetadata, error)
}

type KeywordSuggester interface {
	Suggest(ctx context.Context, description string) []string
}

type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	fetcher     MetadataFetcher
	suggester   KeywordSuggester
	log         *logrus.Entry
}

func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, fetcher MetadataFetcher, suggester KeywordSuggester) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		fetcher:     fetcher,
		suggester:   suggester,
		log:         logging.C("project-service"),
	}
}

type RegisterProjectInput struct {
	Owner string   `json:"owner"`
	Name  string   `json:"name"`
	Tags  []string `json:"tags"`
}

// Register fetches the source repository's metadata, derives the canonical
// URL and inserts a new record with an empty like set.
func (s *ProjectService) Register(ctx context.Context, userID uuid.UUID, input RegisterProjectInput) (*domain.Project, error) {
	owner := strings.TrimSpace(input.Owner)
	name := strings.TrimSpace(input.Name)

	meta, err := s.fetchSource(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	url := canonicalURL(owner, name)
	existing, err := s.projectRepo.GetByCanonicalURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("checking for existing project: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateProject
	}

	project := &domain.Project{
		ID:           uuid.New(),
		CanonicalURL: url,
		Title:        name,
		DisplayTitle: formatDisplayTitle(name),
		OwnerHandle:  owner,
		SubmittedBy:  userID,
		Description:  meta.Description,
		Language:     meta.Language,
		StarCount:    meta.StarCount,
		ForkCount:    meta.ForkCount,
		LastSyncedAt: formatSyncTime(meta.UpdatedAt),
		Tags:         normalizeTags(input.Tags),
		LikerIDs:     []uuid.UUID{},
		LikeCount:    0,
		CreatedAt:    time.Now(),
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateProject
		}
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.log.WithFields(logrus.Fields{"project": project.ID, "url": url}).Info("project registered")
	return project, nil
}

type ProjectPreview struct {
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// Preview runs the registration checks without writing anything, and asks
// the keyword service for tag suggestions. Suggestions are best effort: a
// failing keyword service yields an empty list, never an error.
func (s *ProjectService) Preview(ctx context.Context, owner, name string) (*ProjectPreview, error) {
	owner = strings.TrimSpace(owner)
	name = strings.TrimSpace(name)

	meta, err := s.fetchSource(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	existing, err := s.projectRepo.GetByCanonicalURL(ctx, canonicalURL(owner, name))
	if err != nil {
		return nil, fmt.Errorf("checking for existing project: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateProject
	}

	return &ProjectPreview{
		Description: meta.Description,
		Keywords:    s.suggester.Suggest(ctx, meta.Description),
	}, nil
}

type EditProjectInput struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// Edit repoints a record at a different source repository: metadata is
// re-fetched, the canonical URL re-derived and checked against other
// records, and the like set cleared — engagement earned by the old source
// does not carry over.
func (s *ProjectService) Edit(ctx context.Context, userID, projectID uuid.UUID, input EditProjectInput) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if project.SubmittedBy != userID {
		return nil, ErrNotProjectOwner
	}

	owner := strings.TrimSpace(input.Owner)
	name := strings.TrimSpace(input.Name)

	meta, err := s.fetchSource(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	url := canonicalURL(owner, name)
	existing, err := s.projectRepo.GetByCanonicalURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("checking for existing project: %w", err)
	}
	if existing != nil && existing.ID != project.ID {
		return nil, ErrDuplicateProject
	}

	project.CanonicalURL = url
	project.Title = name
	project.DisplayTitle = formatDisplayTitle(name)
	project.OwnerHandle = owner
	project.Description = meta.Description
	project.Language = meta.Language
	project.StarCount = meta.StarCount
	project.ForkCount = meta.ForkCount
	project.LastSyncedAt = formatSyncTime(meta.UpdatedAt)
	project.LikerIDs = []uuid.UUID{}
	project.LikeCount = 0

	if err := s.projectRepo.Reregister(ctx, project); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateProject
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("updating project: %w", err)
	}

	return project, nil
}

// Delete removes the record at the canonical URL derived from owner+name,
// provided the acting user submitted it.
func (s *ProjectService) Delete(ctx context.Context, userID uuid.UUID, owner, name string) error {
	url := canonicalURL(strings.TrimSpace(owner), strings.TrimSpace(name))

	project, err := s.projectRepo.GetByCanonicalURL(ctx, url)
	if err != nil {
		return fmt.Errorf("loading project: %w", err)
	}
	if project == nil {
		return ErrProjectNotFound
	}
	if project.SubmittedBy != userID {
		return ErrNotProjectOwner
	}

	if err := s.projectRepo.Delete(ctx, project.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("deleting project: %w", err)
	}

	s.log.WithField("url", url).Info("project deleted")
	return nil
}

type RefreshSummary struct {
	Refreshed int `json:"refreshed"`
	Failed    int `json:"failed"`
}

// RefreshAllForUser re-fetches metadata for every project the user
// submitted, using their linked GitHub handle as the source owner. Mirrored
// fields are overwritten; likes and bookmarks are untouched. Projects are
// visited sequentially and a failing one is skipped, not fatal.
func (s *ProjectService) RefreshAllForUser(ctx context.Context, userID uuid.UUID) (*RefreshSummary, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.GitHubHandle == nil || strings.TrimSpace(*user.GitHubHandle) == "" {
		return nil, ErrNoLinkedAccount
	}

	projects, err := s.projectRepo.ListBySubmitter(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	summary := &RefreshSummary{}
	for i := range projects {
		p := &projects[i]

		meta, err := s.fetcher.FetchMetadata(ctx, *user.GitHubHandle, p.Title)
		if err != nil {
			s.log.WithError(err).WithField("project", p.ID).Warn("skipping project during refresh")
			summary.Failed++
			continue
		}

		p.Description = meta.Description
		p.Language = meta.Language
		p.StarCount = meta.StarCount
		p.ForkCount = meta.ForkCount
		p.LastSyncedAt = formatSyncTime(meta.UpdatedAt)

		if err := s.projectRepo.Refresh(ctx, p); err != nil {
			s.log.WithError(err).WithField("project", p.ID).Warn("failed to store refreshed metadata")
			summary.Failed++
			continue
		}
		summary.Refreshed++
	}

	return summary, nil
}

func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// fetchSource translates gateway failures into the service error taxonomy.
func (s *ProjectService) fetchSource(ctx context.Context, owner, name string) (*gateway.RepoMetadata, error) {
	meta, err := s.fetcher.FetchMetadata(ctx, owner, name)
	if err != nil {
		if errors.Is(err, gateway.ErrRepoNotFound) {
			return nil, ErrRepoGone
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return meta, nil
}

func canonicalURL(owner, name string) string {
	return fmt.Sprintf("https://github.com/%s/%s", owner, name)
}

// formatDisplayTitle turns a repository name like "my-cool-project" into
// "My Cool Project".
func formatDisplayTitle(name string) string {
	var words []string
	for _, part := range strings.Split(name, "-") {
		if part == "" {
			continue
		}
		r := []rune(part)
		r[0] = unicode.ToUpper(r[0])
		words = append(words, string(r))
	}
	return strings.Join(words, " ")
}

func formatSyncTime(t *time.Time) string {
	if t == nil {
		return neverUpdated
	}
	return t.Format("January 2, 2006")
}

func normalizeTags(tags []string) []string {
	normalized := []string{}
	seen := make(map[string]bool)
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		normalized = append(normalized, tag)
	}
	return normalized
}
