// Package timecode converts between raw seconds and the display formats used
// across the rundown UI: clock durations ("1:30", "1:30.50") and absolute
// times of day ("19:00:00").
//
// Unset or malformed values never error. Rundown data routinely carries rows
// with no actual duration yet, so every function degrades to the zero
// representation ("0:00", "00:00:00", 0) instead of failing.
package timecode

import (
	"math"
	"strconv"
	"strings"
)

// FormatDuration renders a duration in seconds as M:SS, with a .CC
// centisecond suffix only when the value has a fractional part.
// Zero, negative and NaN inputs all render as "0:00".
func FormatDuration(totalSeconds float64) string {
	if math.IsNaN(totalSeconds) || totalSeconds <= 0 {
		return "0:00"
	}

	centis := int(math.Round(totalSeconds * 100))
	minutes := centis / 6000
	seconds := (centis % 6000) / 100
	frac := centis % 100

	out := strconv.Itoa(minutes) + ":" + pad2(seconds)
	if frac != 0 {
		out += "." + pad2(frac)
	}
	return out
}

// FormatTimeOfDay renders seconds since midnight as zero-padded HH:MM:SS.
// Non-positive and NaN inputs render as "00:00:00".
func FormatTimeOfDay(totalSeconds float64) string {
	if math.IsNaN(totalSeconds) || totalSeconds <= 0 {
		return "00:00:00"
	}

	total := int(totalSeconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	return pad2(hours) + ":" + pad2(minutes) + ":" + pad2(seconds)
}

// ParseTimeOfDay converts a clock string to seconds since midnight.
// Three parts are read as HH:MM:SS. Two parts are ambiguous: bulletin start
// times ("19:00") and row durations ("90:30") share the same shape, so a
// first component of 24 or more is read as minutes (MM:SS), anything lower
// as hours (HH:MM). Empty or unparseable input yields 0.
func ParseTimeOfDay(text string) float64 {
	parts := strings.Split(strings.TrimSpace(text), ":")

	switch len(parts) {
	case 3:
		h, okH := parseInt(parts[0])
		m, okM := parseInt(parts[1])
		s, okS := parseInt(parts[2])
		if !okH || !okM || !okS {
			return 0
		}
		return nonNegative(float64(h*3600 + m*60 + s))
	case 2:
		first, okF := parseInt(parts[0])
		second, okS := parseInt(parts[1])
		if !okF || !okS {
			return 0
		}
		if first >= 24 {
			// Too large to be an hour: this is an MM:SS duration.
			return nonNegative(float64(first*60 + second))
		}
		return nonNegative(float64(first*3600 + second*60))
	default:
		return 0
	}
}

// ParseDuration converts a clock duration string ("1:30", "1:30.50") to
// seconds, fractional when the input carries centiseconds. Input with no
// colon is taken as a bare seconds value. Empty or unparseable input
// yields 0.
func ParseDuration(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	if !strings.Contains(text, ":") {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil || math.IsNaN(v) {
			return 0
		}
		return nonNegative(v)
	}

	parts := strings.Split(text, ":")
	total := 0.0
	for i, part := range parts {
		if i == len(parts)-1 {
			v, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return 0
			}
			total = total*60 + v
			continue
		}
		v, ok := parseInt(part)
		if !ok {
			return 0
		}
		total = total*60 + float64(v)
	}
	return nonNegative(total)
}

// nonNegative maps negative results onto the shared "no time" zero value.
func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func parseInt(s string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

func pad2(v int) string {
	if v < 10 {
		return "0" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}
