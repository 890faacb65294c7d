package models

import "time"

type BulletinStatus string

const (
	BulletinDraft    BulletinStatus = "DRAFT"
	BulletinReady    BulletinStatus = "READY"
	BulletinOnAir    BulletinStatus = "ON_AIR"
	BulletinArchived BulletinStatus = "ARCHIVED"
)

// Bulletin is one scheduled broadcast. The four total_* fields and the
// variance are caches written only by the timing recalculation; everything
// else is edited directly.
type Bulletin struct {
	BulletinID          string         `json:"bulletin_id"`
	Title               string         `json:"title"`
	AirDate             string         `json:"air_date"`
	StartTime           string         `json:"start_time"` // "19:00" or "19:00:00"
	PlannedDurationSecs int            `json:"planned_duration_secs"`
	Status              BulletinStatus `json:"status"`

	TotalEstDurationSecs    int  `json:"total_est_duration_secs"`
	TotalActualDurationSecs *int `json:"total_actual_duration_secs"` // nil until a row has an actual
	TotalCommercialSecs     int  `json:"total_commercial_secs"`
	TimingVarianceSecs      int  `json:"timing_variance_secs"` // positive = under time

	IsLocked  bool       `json:"is_locked"`
	LockedBy  *string    `json:"locked_by,omitempty"`
	CreatedBy string     `json:"created_by"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
