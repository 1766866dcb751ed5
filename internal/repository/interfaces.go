package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/opensourcefinder/server/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByHandle(ctx context.Context, handle string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ToggleBookmark flips the project's membership in the user's bookmark
	// set as one atomic statement and reports the resulting state.
	ToggleBookmark(ctx context.Context, userID, projectID uuid.UUID) (bool, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	GetByCanonicalURL(ctx context.Context, url string) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	ListBySubmitter(ctx context.Context, userID uuid.UUID) ([]domain.Project, error)
	ListBookmarkedBy(ctx context.Context, userID uuid.UUID) ([]domain.Project, error)
	// Refresh overwrites only the fields mirrored from the external source.
	Refresh(ctx context.Context, project *domain.Project) error
	// Reregister overwrites identity and mirrored fields and clears the
	// like set together with its counter, in one transaction.
	Reregister(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBySubmitter(ctx context.Context, userID uuid.UUID) error
	// ToggleLike flips the user's membership in the project's like set and
	// applies the matching counter delta in one atomic statement. It reports
	// the resulting state and the new counter value.
	ToggleLike(ctx context.Context, projectID, userID uuid.UUID) (bool, int, error)
	// RemoveLikesByUser clears every like a user has placed, decrementing
	// each affected project's counter in the same statement.
	RemoveLikesByUser(ctx context.Context, userID uuid.UUID) error
	StatsBySubmitter(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)
}

type InquiryRepository interface {
	Create(ctx context.Context, inquiry *domain.Inquiry) error
}
