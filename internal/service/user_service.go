package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opensourcefinder/server/internal/domain"
	"github.com/opensourcefinder/server/internal/logging"
	"github.com/opensourcefinder/server/internal/repository"
	"github.com/sirupsen/logrus"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrHandleTaken  = errors.New("handle already taken")
)

type UserService struct {
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	log         *logrus.Entry
}

func NewUserService(userRepo repository.UserRepository, projectRepo repository.ProjectRepository) *UserService {
	return &UserService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		log:         logging.C("user-service"),
	}
}

func (s *UserService) GetMe(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

type UpdateProfileInput struct {
	Handle       *string `json:"handle"`
	Bio          *string `json:"bio"`
	Location     *string `json:"location"`
	Website      *string `json:"website"`
	Twitter      *string `json:"twitter"`
	GitHubHandle *string `json:"github_handle"`
}

// EditProfile applies the fields present in the input; nil fields are left
// as they are. Handle uniqueness is checked up front for a friendly error,
// with the unique index as the real guarantee.
func (s *UserService) EditProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.Handle != nil {
		handle := strings.TrimSpace(*input.Handle)
		if user.Handle == nil || *user.Handle != handle {
			taken, err := s.userRepo.GetByHandle(ctx, handle)
			if err != nil {
				return nil, fmt.Errorf("checking handle: %w", err)
			}
			if taken != nil && taken.ID != userID {
				return nil, ErrHandleTaken
			}
		}
		user.Handle = &handle
	}
	if input.Bio != nil {
		user.Bio = input.Bio
	}
	if input.Location != nil {
		user.Location = input.Location
	}
	if input.Website != nil {
		user.Website = input.Website
	}
	if input.Twitter != nil {
		user.Twitter = input.Twitter
	}
	if input.GitHubHandle != nil {
		user.GitHubHandle = input.GitHubHandle
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrHandleTaken
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return user, nil
}

// DeleteAccount removes the user and everything they submitted. Likes the
// user placed on other people's projects are retracted first so those
// counters stay in step with their like sets.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.projectRepo.RemoveLikesByUser(ctx, userID); err != nil {
		return fmt.Errorf("retracting likes: %w", err)
	}
	if err := s.projectRepo.DeleteBySubmitter(ctx, userID); err != nil {
		return fmt.Errorf("deleting projects: %w", err)
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	s.log.WithField("user", userID).Info("account deleted")
	return nil
}

func (s *UserService) Stats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	stats, err := s.projectRepo.StatsBySubmitter(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("computing stats: %w", err)
	}
	return stats, nil
}

func (s *UserService) ListBookmarks(ctx context.Context, userID uuid.UUID) ([]domain.Project, error) {
	projects, err := s.projectRepo.ListBookmarkedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing bookmarks: %w", err)
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return projects, nil
}
