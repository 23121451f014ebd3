package core

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quietroom/noticing/internal/core/reconcile"
	"github.com/quietroom/noticing/internal/store"
)

type MockLLM struct {
	Response string
	Calls    int
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Calls++
	return m.Response, nil
}

const mockReflection = `{
	"strengths": ["keeps returning to the same work"],
	"emerging_capacities": [],
	"concerns": [],
	"supports": [],
	"suggested_montessori_materials": [],
	"notes": "short sample"
}`

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testNotebook(client *MockLLM) *Notebook {
	var nb *Notebook
	if client != nil {
		nb = NewNotebook(store.NewMemory(), client)
	} else {
		nb = NewNotebook(store.NewMemory(), nil)
	}
	nb.Now = func() time.Time { return testNow }
	seq := 0
	nb.NewID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return nb
}

func TestAddEntry(t *testing.T) {
	nb := testNotebook(nil)

	entry, err := nb.AddEntry("  built the checkerboard  ", "lucy, MARCO", []string{"Cognitive"})
	assert.NoError(t, err)
	assert.Equal(t, "id-1", entry.ID)
	assert.Equal(t, "2026-03-15T12:00:00Z", entry.CreatedAt)
	assert.Equal(t, "built the checkerboard", entry.Text)
	assert.Equal(t, []string{"Lucy", "Marco"}, entry.People)

	entries := nb.Entries().Entries
	assert.Len(t, entries, 1)
	assert.Equal(t, "id-1", entries[0].ID)
}

func TestAddEntryPrepends(t *testing.T) {
	nb := testNotebook(nil)

	_, err := nb.AddEntry("first", "Lucy", nil)
	assert.NoError(t, err)
	_, err = nb.AddEntry("second", "Lucy", nil)
	assert.NoError(t, err)

	raw, ok, err := nb.Store.Get(reconcile.PrimaryKey)
	assert.NoError(t, err)
	assert.True(t, ok)

	var stored []map[string]any
	assert.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, "id-2", stored[0]["id"])
	assert.Equal(t, "id-1", stored[1]["id"])
}

func TestAddEntryValidation(t *testing.T) {
	nb := testNotebook(nil)

	_, err := nb.AddEntry("   ", "Lucy", nil)
	assert.Error(t, err)

	_, err = nb.AddEntry("text", "Lucy", []string{"NotATag"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tag")
}

func TestDeleteEntry(t *testing.T) {
	nb := testNotebook(nil)
	// The entry lives in a legacy key, not the primary one.
	nb.Store.Set("entries_v1", `[{"id":"legacy-1","text":"x"},{"id":"legacy-2","text":"y"}]`)

	assert.NoError(t, nb.DeleteEntry("legacy-1"))
	entries := nb.Entries().Entries
	assert.Len(t, entries, 1)
	assert.Equal(t, "legacy-2", entries[0].ID)
}

func TestDeleteEntryNotFound(t *testing.T) {
	nb := testNotebook(nil)
	err := nb.DeleteEntry("nope")
	assert.Error(t, err)
}

func TestExportBackup(t *testing.T) {
	nb := testNotebook(nil)
	nb.Store.Set("noticing_entries_v1", `[{"id":"a","text":"x"}]`)
	nb.Store.Set("entries_v1", `[{"id":"b","text":"y"}]`)

	data, err := nb.ExportBackup()
	assert.NoError(t, err)

	var payload struct {
		Version    int    `json:"version"`
		ExportedAt string `json:"exportedAt"`
		EntriesKey string `json:"entriesKey"`
	}
	assert.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, 1, payload.Version)
	assert.Equal(t, "2026-03-15T12:00:00Z", payload.ExportedAt)
	assert.Equal(t, "noticing_entries_v1, entries_v1", payload.EntriesKey)
}

func TestExportBackupEmptyStore(t *testing.T) {
	nb := testNotebook(nil)
	data, err := nb.ExportBackup()
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"entriesKey": "noticing_entries_v1"`)
}

func TestImportBackup(t *testing.T) {
	nb := testNotebook(nil)

	count, err := nb.ImportBackup([]byte(`{"version":1,"entries":[{"id":"a","text":"x"},{"id":"b","text":"y"}]}`))
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, nb.Entries().Entries, 2)
}

func TestImportBackupReplacesContributingKey(t *testing.T) {
	nb := testNotebook(nil)
	nb.Store.Set("entries_v1", `[{"id":"old","text":"x"}]`)

	_, err := nb.ImportBackup([]byte(`[{"id":"new","text":"y"}]`))
	assert.NoError(t, err)

	// The restore replaced the key that held the old data, so the old entry
	// no longer shadows anything.
	entries := nb.Entries().Entries
	assert.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].ID)
}

func TestImportBackupRejectsGarbage(t *testing.T) {
	nb := testNotebook(nil)
	_, err := nb.ImportBackup([]byte(`{"surprise":true}`))
	assert.Error(t, err)
	assert.Len(t, nb.Entries().Entries, 0)
}

func TestReflectRequiresLLM(t *testing.T) {
	nb := testNotebook(nil)
	_, err := nb.Reflect(context.Background(), "Lucy", "all", "", true)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestReflectRequiresEntries(t *testing.T) {
	nb := testNotebook(&MockLLM{Response: mockReflection})
	_, err := nb.Reflect(context.Background(), "Lucy", "all", "", true)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no observations")
}

func TestReflectCachesResult(t *testing.T) {
	mock := &MockLLM{Response: mockReflection}
	nb := testNotebook(mock)
	_, err := nb.AddEntry("worked on the checkerboard", "Lucy", []string{"Cognitive"})
	assert.NoError(t, err)

	summary, err := nb.Reflect(context.Background(), "Lucy", "all", "", true)
	assert.NoError(t, err)
	assert.Equal(t, "short sample", summary.Notes)
	assert.Equal(t, 1, mock.Calls)

	// Cached under the normalized name.
	assert.NotNil(t, nb.Reflection("  LUCY "))
	assert.Nil(t, nb.Reflection("Marco"))
}

func TestReportIncludesReflection(t *testing.T) {
	nb := testNotebook(&MockLLM{Response: mockReflection})
	_, err := nb.AddEntry("worked alone", "lucy", nil)
	assert.NoError(t, err)

	before := nb.Report("lucy")
	assert.Contains(t, before, "Lucy — Conference Summary")
	assert.Contains(t, before, "(Not generated yet.")

	_, err = nb.Reflect(context.Background(), "lucy", "all", "", true)
	assert.NoError(t, err)

	after := nb.Report("lucy")
	assert.Contains(t, after, "Strengths:")
	assert.Contains(t, after, "keeps returning to the same work")
}

func TestFilteredInvalidMode(t *testing.T) {
	nb := testNotebook(nil)
	_, _, _, err := nb.Filtered("Lucy", "bogus", "")
	assert.Error(t, err)
}

func TestRhythm(t *testing.T) {
	nb := testNotebook(nil)
	nb.Store.Set(reconcile.PrimaryKey, `[
		{"id":"in","createdAt":"2026-03-10T10:00:00Z","text":"x","people":["Lucy"]},
		{"id":"out","createdAt":"2026-01-01T10:00:00Z","text":"y","people":["Lucy"]}
	]`)

	points := nb.Rhythm("Lucy")
	assert.Len(t, points, 1)
	assert.Equal(t, "in", points[0].ID)
}

func TestRosterAcrossSources(t *testing.T) {
	nb := testNotebook(nil)
	nb.Store.Set("noticing_entries_v1", `[{"id":"a","people":["Lucy"]}]`)
	nb.Store.Set("montessori_entries_v1", `[{"id":"b","people":["Marco"]}]`)

	assert.Equal(t, []string{"Lucy", "Marco"}, nb.Roster())
}

func TestRandomPromptFromList(t *testing.T) {
	p := RandomPrompt()
	assert.Contains(t, Prompts, p)
}

func TestValidTag(t *testing.T) {
	assert.True(t, ValidTag("Social"))
	assert.False(t, ValidTag("social"))
	assert.False(t, ValidTag(""))
}
