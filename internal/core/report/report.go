package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quietroom/noticing/internal/core/common"
	"github.com/quietroom/noticing/internal/core/model"
	"github.com/quietroom/noticing/internal/core/person"
)

// ConferenceInput gathers everything the conference export renders.
// Reflection may be nil when one has not been generated.
type ConferenceInput struct {
	Name         string
	GeneratedAt  time.Time
	View         person.View
	SoftSummary  string
	NextBestStep string
	Reflection   *model.ReflectionSummary
}

// Conference renders the deterministic plain-text conference-ready summary.
// Labels, placeholders and ordering are fixed wording.
func Conference(in ConferenceInput) string {
	var lines []string
	push := func(s string) { lines = append(lines, s) }

	push(fmt.Sprintf("%s — Conference Summary", in.Name))
	push(fmt.Sprintf("Generated: %s", common.FormatClock(in.GeneratedAt)))
	push("")

	push("SUMMARY")
	push(fmt.Sprintf("• Moments (last 30 days): %d", in.View.Last30DaysCount))
	push(fmt.Sprintf("• Solo vs Group: %s", soloGroupLine(in.View.SoloCount, in.View.GroupCount)))

	if len(in.View.TagCounts) > 0 {
		push(fmt.Sprintf("• Top tags: %s", joinTagCounts(in.View.TagCounts, 3)))
	} else {
		push("• Top tags: (none yet)")
	}

	if len(in.View.Collaborators) > 0 {
		push(fmt.Sprintf("• Repeated collaborators: %s", joinNameCounts(in.View.Collaborators, 3)))
	} else {
		push("• Repeated collaborators: (none yet)")
	}

	push("")
	push(fmt.Sprintf("Narrative thread: %s", in.SoftSummary))
	push(fmt.Sprintf("Next best step: %s", in.NextBestStep))
	push("")

	push("LAST 10 OBSERVATIONS")
	last10 := in.View.Entries
	if len(last10) > 10 {
		last10 = last10[:10]
	}
	if len(last10) == 0 {
		push("(No observations yet.)")
	} else {
		for i, e := range last10 {
			push(fmt.Sprintf("%d. %s", i+1, common.FormatTimestamp(e.CreatedAt)))
			if len(e.People) > 0 {
				push(fmt.Sprintf("   People: %s", strings.Join(e.People, ", ")))
			}
			if len(e.Tags) > 0 {
				push(fmt.Sprintf("   Tags: %s", strings.Join(e.Tags, ", ")))
			}
			push(fmt.Sprintf("   Note: %s", strings.TrimSpace(e.Text)))
			push("")
		}
	}

	push("AI REFLECTION")
	if in.Reflection == nil {
		push("(Not generated yet. Click Assisted Reflection → Generate to include it.)")
	} else {
		lines = append(lines, reflectionLines(in.Reflection)...)
	}

	return strings.Join(lines, "\n")
}

// reflectionLines itemizes a structured reflection. Empty sections are
// omitted entirely rather than rendered as bare headers.
func reflectionLines(r *model.ReflectionSummary) []string {
	var lines []string
	push := func(s string) { lines = append(lines, s) }

	section := func(header string, items []string) {
		if len(items) == 0 {
			return
		}
		push(header)
		for _, item := range items {
			push(fmt.Sprintf("• %s", item))
		}
		push("")
	}

	section("Strengths:", r.Strengths)
	section("Emerging capacities:", r.EmergingCapacities)
	section("Concerns (non-diagnostic):", r.Concerns)
	section("Supports:", r.Supports)

	if len(r.SuggestedMaterials) > 0 {
		push("Suggested Montessori materials / lessons:")
		for _, s := range r.SuggestedMaterials {
			line := fmt.Sprintf("• %s", s.Title)
			if s.Confidence != "" {
				line += fmt.Sprintf(" (%s)", s.Confidence)
			}
			if s.Tag != "" {
				line += fmt.Sprintf(" — Tag: %s", s.Tag)
			}
			push(line)
			push(fmt.Sprintf("  Rationale: %s", s.Rationale))
		}
		push("")
	}

	if r.Notes != "" {
		push(fmt.Sprintf("Notes: %s", r.Notes))
		push("")
	}

	return lines
}

func soloGroupLine(solo, group int) string {
	switch {
	case solo == group:
		return "Evenly split"
	case solo > group:
		return "More often solo"
	default:
		return "More often in groups"
	}
}

func joinTagCounts(counts []model.TagCount, max int) string {
	if len(counts) > max {
		counts = counts[:max]
	}
	parts := make([]string, len(counts))
	for i, tc := range counts {
		parts[i] = fmt.Sprintf("%s (%d)", tc.Tag, tc.Count)
	}
	return strings.Join(parts, ", ")
}

func joinNameCounts(counts []model.NameCount, max int) string {
	if len(counts) > max {
		counts = counts[:max]
	}
	parts := make([]string, len(counts))
	for i, nc := range counts {
		parts[i] = fmt.Sprintf("%s (%d)", nc.Name, nc.Count)
	}
	return strings.Join(parts, ", ")
}

// BackupPayload is the portable export shape: the full unfiltered reconciled
// collection, independent of any active filter, for round-trip restore.
type BackupPayload struct {
	Version    int           `json:"version"`
	ExportedAt string        `json:"exportedAt"`
	EntriesKey string        `json:"entriesKey"`
	Entries    []model.Entry `json:"entries"`
}

// Backup serializes the collection as an indented, restorable document.
func Backup(entries []model.Entry, entriesKey string, exportedAt time.Time) ([]byte, error) {
	if entries == nil {
		entries = []model.Entry{}
	}
	payload := BackupPayload{
		Version:    1,
		ExportedAt: exportedAt.UTC().Format(time.RFC3339),
		EntriesKey: entriesKey,
		Entries:    entries,
	}
	return json.MarshalIndent(payload, "", "  ")
}

// ParseRestore accepts either a full backup payload or a bare entries array
// and returns the entries to restore. Anything else is rejected so a failed
// import can never touch the store.
func ParseRestore(data []byte) ([]model.Entry, error) {
	var bare []model.Entry
	if err := json.Unmarshal(data, &bare); err == nil && bare != nil {
		return bare, nil
	}

	var wrapped struct {
		Entries json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil || wrapped.Entries == nil {
		return nil, errors.New("that file doesn't look like a backup")
	}

	var entries []model.Entry
	if err := json.Unmarshal(wrapped.Entries, &entries); err != nil || entries == nil {
		return nil, errors.New("that file doesn't look like a backup")
	}
	return entries, nil
}
