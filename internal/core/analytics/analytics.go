package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/quietroom/noticing/internal/core/common"
	"github.com/quietroom/noticing/internal/core/model"
)

// RhythmPoint positions one entry on a time-window strip for timeline
// rendering. TimeFraction is 0 at the window start and 1 at the end.
type RhythmPoint struct {
	ID           string  `json:"id"`
	TimeFraction float64 `json:"timeFraction"`
	Tooltip      string  `json:"tooltip"`
}

// Rhythm maps entries with a parsable timestamp inside [windowStart,
// windowEnd] onto fractional positions, ascending by time. A zero-length
// window treats the denominator as 1 so every point lands at 0.
func Rhythm(entries []model.Entry, windowStart, windowEnd time.Time) []RhythmPoint {
	type timed struct {
		entry model.Entry
		t     time.Time
	}

	var inside []timed
	for _, e := range entries {
		t, ok := common.ParseTime(e.CreatedAt)
		if !ok {
			continue
		}
		if t.Before(windowStart) || t.After(windowEnd) {
			continue
		}
		inside = append(inside, timed{entry: e, t: t})
	}

	sort.SliceStable(inside, func(i, j int) bool {
		return inside[i].t.Before(inside[j].t)
	})

	span := windowEnd.Sub(windowStart).Seconds()
	if span == 0 {
		span = 1
	}

	var points []RhythmPoint
	for _, it := range inside {
		fraction := it.t.Sub(windowStart).Seconds() / span
		if fraction < 0 {
			fraction = 0
		}
		if fraction > 1 {
			fraction = 1
		}
		points = append(points, RhythmPoint{
			ID:           it.entry.ID,
			TimeFraction: fraction,
			Tooltip:      tooltip(it.entry),
		})
	}
	return points
}

func tooltip(e model.Entry) string {
	text := common.FormatTimestamp(e.CreatedAt)
	if len(e.Tags) > 0 {
		tags := e.Tags
		if len(tags) > 3 {
			tags = tags[:3]
		}
		text += " · " + strings.Join(tags, ", ")
	}
	return text
}

// The narrative phrases below are fixed wording; reports and downstream
// consumers depend on them byte-for-byte.

// SoloGroupComparison describes where focus gathers based on the solo/group
// balance.
func SoloGroupComparison(solo, group int) string {
	switch {
	case solo == group:
		return "shows up evenly across solo and group work"
	case solo > group:
		return "seems to strengthen most in solo work"
	default:
		return "seems to gather most when others are nearby"
	}
}

// SoftSummary combines the solo/group comparison with the strongest tag into
// one templated narrative sentence.
func SoftSummary(total, solo, group int, topTag string) string {
	if total == 0 {
		return "No observations recorded yet."
	}

	thread := "A stronger thread will become clearer as tags build."
	if topTag != "" {
		thread = fmt.Sprintf("The strongest thread right now shows up around “%s.”", topTag)
	}

	return fmt.Sprintf("Recently, focus %s. %s", SoloGroupComparison(solo, group), thread)
}

// NextBestStep suggests one concrete follow-up based on the strongest tag.
func NextBestStep(topTag string) string {
	if topTag == "" {
		return "Choose one small material invitation this week and observe what returns."
	}
	return fmt.Sprintf("Offer one small invitation connected to “%s,” then observe whether it draws steady return.", topTag)
}
