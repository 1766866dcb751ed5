package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Handle       *string   `json:"handle,omitempty"`
	DisplayName  string    `json:"display_name"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	PasswordHash string    `json:"-"`
	Bio          *string   `json:"bio,omitempty"`
	Location     *string   `json:"location,omitempty"`
	Website      *string   `json:"website,omitempty"`
	Twitter      *string   `json:"twitter,omitempty"`
	GitHubHandle *string   `json:"github_handle,omitempty"`
	// Bookmarks is the set of project IDs the user has bookmarked.
	Bookmarks []uuid.UUID `json:"bookmarks"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// UserStats aggregates the user's submissions for the profile page.
type UserStats struct {
	TotalProjects int `json:"total_projects"`
	TotalStars    int `json:"total_stars"`
	TotalForks    int `json:"total_forks"`
}
