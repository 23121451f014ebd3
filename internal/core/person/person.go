package person

import (
	"sort"
	"strings"
	"time"

	"github.com/quietroom/noticing/internal/core/common"
	"github.com/quietroom/noticing/internal/core/model"
	"github.com/quietroom/noticing/internal/core/names"
)

// View is everything derived for one participant from a merged collection.
// It is recomputed from a fresh snapshot on every read and never cached
// across store changes.
type View struct {
	Target  string
	Entries []model.Entry

	// Collaborators holds co-occurring names (original casing, target
	// excluded) that appear more than once, descending by count.
	Collaborators []model.NameCount
	// TagCounts is the tag frequency table, descending by count.
	TagCounts []model.TagCount

	Last30DaysCount int
	SoloCount       int
	GroupCount      int
}

// TopTag returns the most frequent tag, or "" when there are no tags.
func (v View) TopTag() string {
	if len(v.TagCounts) == 0 {
		return ""
	}
	return v.TagCounts[0].Tag
}

// ForPerson builds the view for targetName. now anchors the 30-day window.
//
// Entries sort descending by createdAt using lexicographic comparison, which
// is time-correct for ISO-8601 strings. Unparsable timestamps get no special
// case: they sort stably wherever string order puts them, stay in every
// count except the 30-day window, and are never dropped.
func ForPerson(entries []model.Entry, targetName string, now time.Time) View {
	target := names.Normalize(targetName)

	var matched []model.Entry
	for _, e := range entries {
		for _, p := range e.People {
			if names.Normalize(p) == target {
				matched = append(matched, e)
				break
			}
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt > matched[j].CreatedAt
	})

	view := View{
		Target:        targetName,
		Entries:       matched,
		Collaborators: collaborators(matched, target),
		TagCounts:     tagCounts(matched),
	}

	cutoff := now.Add(-30 * 24 * time.Hour)
	for _, e := range matched {
		if e.IsSolo() {
			view.SoloCount++
		} else {
			view.GroupCount++
		}
		if t, ok := common.ParseTime(e.CreatedAt); ok {
			if !t.Before(cutoff) && !t.After(now) {
				view.Last30DaysCount++
			}
		}
	}

	return view
}

// collaborators counts co-occurring names and keeps only the repeated ones
// (count > 1). Keys preserve original casing; ties keep first-encountered
// order via stable sort.
func collaborators(entries []model.Entry, target string) []model.NameCount {
	counts := make(map[string]int)
	var order []string

	for _, e := range entries {
		for _, p := range e.People {
			if names.Normalize(p) == target {
				continue
			}
			if _, seen := counts[p]; !seen {
				order = append(order, p)
			}
			counts[p]++
		}
	}

	var result []model.NameCount
	for _, name := range order {
		result = append(result, model.NameCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	var repeated []model.NameCount
	for _, nc := range result {
		if nc.Count > 1 {
			repeated = append(repeated, nc)
		}
	}
	return repeated
}

func tagCounts(entries []model.Entry) []model.TagCount {
	counts := make(map[string]int)
	var order []string

	for _, e := range entries {
		for _, t := range e.Tags {
			tag := strings.TrimSpace(t)
			if tag == "" {
				continue
			}
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	var result []model.TagCount
	for _, tag := range order {
		result = append(result, model.TagCount{Tag: tag, Count: counts[tag]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

// RepeatedSet converts a collaborator table into a membership set for the
// patterns filter.
func RepeatedSet(collaborators []model.NameCount) map[string]bool {
	set := make(map[string]bool, len(collaborators))
	for _, nc := range collaborators {
		set[nc.Name] = true
	}
	return set
}

// Roster lists every distinct participant name across the collection,
// sorted. Entries without a people list fall back to the legacy
// comma-separated frame field.
func Roster(entries []model.Entry) []string {
	seen := make(map[string]struct{})
	var roster []string

	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		roster = append(roster, name)
	}

	for _, e := range entries {
		if len(e.People) > 0 {
			for _, p := range e.People {
				add(p)
			}
			continue
		}
		for _, part := range strings.Split(e.Frame, ",") {
			add(part)
		}
	}

	sort.Strings(roster)
	return roster
}
