package domain

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID           uuid.UUID `json:"id"`
	CanonicalURL string    `json:"url"`
	Title        string    `json:"title"`
	DisplayTitle string    `json:"display_title"`
	OwnerHandle  string    `json:"owner_handle"`
	SubmittedBy  uuid.UUID `json:"submitted_by"`
	Description  string    `json:"description"`
	Language     *string   `json:"language,omitempty"`
	StarCount    int       `json:"star_count"`
	ForkCount    int       `json:"fork_count"`
	// LastSyncedAt is a formatted date string ("January 2, 2006"), or the
	// "Never updated" sentinel when the source has no update timestamp.
	LastSyncedAt string   `json:"last_synced_at"`
	Tags         []string `json:"tags"`
	// LikerIDs and LikeCount must always agree: the counter is a cache of
	// the set's cardinality.
	LikerIDs  []uuid.UUID `json:"liker_ids"`
	LikeCount int         `json:"like_count"`
	CreatedAt time.Time   `json:"created_at"`
}
