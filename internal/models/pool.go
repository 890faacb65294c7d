package models

import "time"

type PoolStoryStatus string

const (
	PoolAvailable PoolStoryStatus = "AVAILABLE"
	PoolAssigned  PoolStoryStatus = "ASSIGNED"
	PoolRetired   PoolStoryStatus = "RETIRED"
)

// PoolStory is a pre-produced story waiting in the pool. Assigning it to a
// bulletin creates a rundown row and records the link here.
type PoolStory struct {
	StoryID         string          `json:"story_id"`
	Slug            string          `json:"slug"`
	Title           string          `json:"title"`
	EstDurationSecs int             `json:"est_duration_secs"`
	Status          PoolStoryStatus `json:"status"`
	AssignedRowID   *string         `json:"assigned_row_id,omitempty"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
