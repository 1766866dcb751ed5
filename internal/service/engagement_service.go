package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opensourcefinder/server/internal/logging"
	"github.com/opensourcefinder/server/internal/repository"
)

// EngagementService flips like and bookmark membership. The actual
// check-and-mutate happens in a single conditional statement at the storage
// layer; reading the current state here first would reintroduce the
// read-then-write race this design exists to avoid.
type EngagementService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	log         *logrus.Entry
}

func NewEngagementService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *EngagementService {
	return &EngagementService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		log:         logging.C("engagement-service"),
	}
}

type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// ToggleLike adds the user to the project's like set if absent, removes
// them if present, and moves the counter by exactly one in the same
// operation. Applying it twice restores the original state.
func (s *EngagementService) ToggleLike(ctx context.Context, projectID, userID uuid.UUID) (*LikeResult, error) {
	liked, likeCount, err := s.projectRepo.ToggleLike(ctx, projectID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("toggling like: %w", err)
	}

	s.log.WithFields(logrus.Fields{"project": projectID, "user": userID, "liked": liked}).Debug("like toggled")
	return &LikeResult{Liked: liked, LikeCount: likeCount}, nil
}

type BookmarkResult struct {
	Bookmarked bool `json:"bookmarked"`
}

// ToggleBookmark flips the project's membership in the user's bookmark set.
// No counter is maintained for bookmarks.
func (s *EngagementService) ToggleBookmark(ctx context.Context, userID, projectID uuid.UUID) (*BookmarkResult, error) {
	bookmarked, err := s.userRepo.ToggleBookmark(ctx, userID, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("toggling bookmark: %w", err)
	}

	return &BookmarkResult{Bookmarked: bookmarked}, nil
}
