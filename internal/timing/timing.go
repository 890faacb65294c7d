// Package timing holds the rundown timing recalculation as a pure fold over
// an ordered row list. It does no I/O; the services layer wraps Compute in a
// transaction and persists the result.
package timing

import (
	"github.com/newsroomhq/rundown/internal/models"
	"github.com/newsroomhq/rundown/pkg/timecode"
)

// RowTiming is the computed timing for one row, with display strings ready
// for the rundown grid.
type RowTiming struct {
	RowID                 string  `json:"row_id"`
	SortOrder             int     `json:"sort_order"`
	EstDurationSecs       int     `json:"est_duration_secs"`
	ActualDurationSecs    *int    `json:"actual_duration_secs"`
	FrontTimeSecs         int     `json:"front_time_secs"`
	CumeTimeSecs          int     `json:"cume_time_secs"`
	EstDurationDisplay    string  `json:"est_duration_display"`
	ActualDurationDisplay string  `json:"actual_duration_display"`
	FrontTimeDisplay      string  `json:"front_time_display"`
	CumeTimeDisplay       string  `json:"cume_time_display"`
}

// Result is one full recalculation: per-row timing plus the bulletin
// aggregates. TotalActualDurationSecs stays nil until at least one row has a
// recorded actual; a bulletin where nothing has been timed reports "absent",
// not "zero".
type Result struct {
	BulletinID              string      `json:"bulletin_id"`
	BulletinStartSecs       int         `json:"bulletin_start_secs"`
	Rows                    []RowTiming `json:"rows"`
	TotalEstDurationSecs    int         `json:"total_est_duration_secs"`
	TotalActualDurationSecs *int        `json:"total_actual_duration_secs"`
	TotalCommercialSecs     int         `json:"total_commercial_secs"`
	TimingVarianceSecs      int         `json:"timing_variance_secs"`
	VarianceDisplay         string      `json:"variance_display"`
}

// Compute runs the single forward pass over rows, which must already be
// live rows ordered ascending by sort order. A row's front time is the
// bulletin start plus everything before it; its cume time includes its own
// effective duration. Recorded actuals override estimates for the running
// totals, while the estimate keeps feeding the bulletin's estimated total.
func Compute(b *models.Bulletin, rows []*models.RundownRow) *Result {
	startSecs := int(timecode.ParseTimeOfDay(b.StartTime))

	res := &Result{
		BulletinID:        b.BulletinID,
		BulletinStartSecs: startSecs,
		Rows:              make([]RowTiming, 0, len(rows)),
	}

	cumeSecs := 0
	totalActualSecs := 0
	hasActual := false

	for _, row := range rows {
		effective := row.EffectiveDurationSecs()
		frontSecs := startSecs + cumeSecs
		cumeSecs += effective

		rt := RowTiming{
			RowID:              row.RowID,
			SortOrder:          row.SortOrder,
			EstDurationSecs:    row.EstDurationSecs,
			ActualDurationSecs: row.ActualDurationSecs,
			FrontTimeSecs:      frontSecs,
			CumeTimeSecs:       cumeSecs,
			EstDurationDisplay: timecode.FormatDuration(float64(row.EstDurationSecs)),
			FrontTimeDisplay:   timecode.FormatTimeOfDay(float64(frontSecs)),
			CumeTimeDisplay:    timecode.FormatDuration(float64(cumeSecs)),
		}
		if row.ActualDurationSecs != nil {
			rt.ActualDurationDisplay = timecode.FormatDuration(float64(*row.ActualDurationSecs))
		} else {
			rt.ActualDurationDisplay = timecode.FormatDuration(0)
		}
		res.Rows = append(res.Rows, rt)

		// Commercial time is tracked apart from editorial time; a row feeds
		// one bucket or the other, never both.
		if row.RowType == models.RowCommercial {
			res.TotalCommercialSecs += effective
		} else {
			res.TotalEstDurationSecs += row.EstDurationSecs
		}
		if row.ActualDurationSecs != nil {
			totalActualSecs += *row.ActualDurationSecs
			hasActual = true
		}
	}

	if hasActual {
		res.TotalActualDurationSecs = &totalActualSecs
	}

	res.TimingVarianceSecs = b.PlannedDurationSecs - (res.TotalEstDurationSecs + res.TotalCommercialSecs)
	res.VarianceDisplay = FormatVariance(res.TimingVarianceSecs)

	return res
}

// FormatVariance renders a variance as "Under 1:40" or "Over 1:40" from the
// absolute value. Zero reports as under, since the bulletin is not over time.
func FormatVariance(varianceSecs int) string {
	if varianceSecs < 0 {
		return "Over " + timecode.FormatDuration(float64(-varianceSecs))
	}
	return "Under " + timecode.FormatDuration(float64(varianceSecs))
}
