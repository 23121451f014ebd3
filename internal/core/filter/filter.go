package filter

import (
	"fmt"

	"github.com/quietroom/noticing/internal/core/model"
	"github.com/quietroom/noticing/internal/core/names"
)

// Mode selects which slice of a person view is shown.
type Mode string

const (
	ModeAll      Mode = "all"
	ModeSolo     Mode = "solo"
	ModeGroup    Mode = "group"
	ModePatterns Mode = "patterns"
)

// ParseMode validates a mode string, defaulting empty to ModeAll.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAll, ModeSolo, ModeGroup, ModePatterns:
		return Mode(s), nil
	case "":
		return ModeAll, nil
	default:
		return "", fmt.Errorf("unknown filter mode: %s", s)
	}
}

// Apply filters a person view by mode, then by exact tag match. It is a pure
// function: same inputs, same output, order preserved.
//
// Tag matching is deliberately case-sensitive with no normalization — tags
// come from a fixed vocabulary at authoring time.
func Apply(personView []model.Entry, target string, mode Mode, activeTag string, repeated map[string]bool) []model.Entry {
	normalizedTarget := names.Normalize(target)

	var list []model.Entry
	for _, e := range personView {
		switch mode {
		case ModeSolo:
			if !e.IsSolo() {
				continue
			}
		case ModeGroup:
			if !e.IsGroup() {
				continue
			}
		case ModePatterns:
			if !hasRepeatedCollaborator(e, normalizedTarget, repeated) {
				continue
			}
		}
		list = append(list, e)
	}

	if activeTag == "" {
		return list
	}

	var tagged []model.Entry
	for _, e := range list {
		for _, t := range e.Tags {
			if t == activeTag {
				tagged = append(tagged, e)
				break
			}
		}
	}
	return tagged
}

func hasRepeatedCollaborator(e model.Entry, normalizedTarget string, repeated map[string]bool) bool {
	for _, p := range e.People {
		if names.Normalize(p) == normalizedTarget {
			continue
		}
		if repeated[p] {
			return true
		}
	}
	return false
}
