package reconcile

import (
	"encoding/json"
	"strconv"

	"github.com/quietroom/noticing/internal/core/model"
	"github.com/quietroom/noticing/internal/store"
)

// SourceKeys is the fixed priority order of storage keys. Earlier keys win
// on duplicate ids; later keys exist because of historical renames.
var SourceKeys = []string{
	"noticing_entries_v1",
	"montessori_entries_v1",
	"entries_v1",
}

// PrimaryKey is where new entries and restored backups are written.
const PrimaryKey = "noticing_entries_v1"

// Result is a merged, deduplicated entry collection plus the source keys
// that contributed at least one valid entry (kept for diagnostics).
type Result struct {
	Entries     []model.Entry
	SourcesUsed []string
}

// looseEntry tolerates legacy shapes: ids stored as numbers, absent optional
// fields. Items that do not decode at all are dropped individually instead
// of failing the source.
type looseEntry struct {
	ID        any      `json:"id"`
	CreatedAt string   `json:"createdAt"`
	Text      string   `json:"text"`
	Frame     string   `json:"frame"`
	People    []string `json:"people"`
	Tags      []string `json:"tags"`
}

func (l looseEntry) idString() string {
	switch v := l.ID.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Merge reads every source in priority order and returns the deduplicated
// collection in first-seen order (not sorted by time). A source whose value
// is missing, malformed, or not an array is skipped silently: broken legacy
// data must never block the read path. Merge cannot fail; the worst case is
// an empty result.
func Merge(kv store.KV, sources []string) Result {
	var merged []model.Entry
	seen := make(map[string]struct{})
	var used []string

	for _, key := range sources {
		raw, ok, err := kv.Get(key)
		if err != nil || !ok || raw == "" {
			continue
		}

		var items []json.RawMessage
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			continue
		}

		accepted := 0
		for _, item := range items {
			var loose looseEntry
			if err := json.Unmarshal(item, &loose); err != nil {
				continue
			}

			id := loose.idString()
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			merged = append(merged, model.Entry{
				ID:        id,
				CreatedAt: loose.CreatedAt,
				Text:      loose.Text,
				Frame:     loose.Frame,
				People:    loose.People,
				Tags:      loose.Tags,
			})
			accepted++
		}

		if accepted > 0 {
			used = append(used, key)
		}
	}

	return Result{Entries: merged, SourcesUsed: used}
}

// MergeAll is Merge over the standard source keys.
func MergeAll(kv store.KV) Result {
	return Merge(kv, SourceKeys)
}
