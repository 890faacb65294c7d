package models

import "time"

type RowType string

const (
	RowStory      RowType = "STORY"
	RowCommercial RowType = "COMMERCIAL"
	RowBreakLink  RowType = "BREAK_LINK"
	RowOpen       RowType = "OPEN"
	RowClose      RowType = "CLOSE"
	RowWelcome    RowType = "WELCOME"
)

// DefaultStoryDurationSecs is the planned duration a new story row gets when
// the producer has not supplied one.
const DefaultStoryDurationSecs = 90

// RundownRow is one ordered item in a bulletin's running order. SortOrder is
// unique per bulletin for live rows; soft-deleted rows are parked on negative
// orders so the live sequence stays contiguous. FrontTimeSecs and
// CumeTimeSecs are written only by the timing recalculation.
type RundownRow struct {
	RowID      string  `json:"row_id"`
	BulletinID string  `json:"bulletin_id"`
	SortOrder  int     `json:"sort_order"`
	RowType    RowType `json:"row_type"`
	Slug       string  `json:"slug"`
	Block      string  `json:"block"` // lettered block A-D, Z for the closer

	EstDurationSecs    int  `json:"est_duration_secs"`
	ActualDurationSecs *int `json:"actual_duration_secs"` // nil = not yet timed
	FrontTimeSecs      int  `json:"front_time_secs"`      // seconds since midnight
	CumeTimeSecs       int  `json:"cume_time_secs"`

	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// EffectiveDurationSecs is the duration a row contributes to cumulative
// timing: the recorded actual when present, the estimate otherwise.
func (r *RundownRow) EffectiveDurationSecs() int {
	if r.ActualDurationSecs != nil {
		return *r.ActualDurationSecs
	}
	return r.EstDurationSecs
}
