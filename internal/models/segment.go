package models

import "time"

type SegmentType string

const (
	SegmentVO   SegmentType = "VO"
	SegmentSOT  SegmentType = "SOT"
	SegmentLive SegmentType = "LIVE"
	SegmentPkg  SegmentType = "PKG"
	SegmentGfx  SegmentType = "GFX"
)

// RowSegment is a sub-unit of a row (the VO, then a SOT, then a live tag for
// one story). Segments carry script text for the prompter; timing stays
// row-level, segment durations are informational.
type RowSegment struct {
	SegmentID    string      `json:"segment_id"`
	RowID        string      `json:"row_id"`
	SortOrder    int         `json:"sort_order"`
	SegmentType  SegmentType `json:"segment_type"`
	Script       string      `json:"script"`
	DurationSecs int         `json:"duration_secs"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
