package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quietroom/noticing/internal/core/analytics"
	"github.com/quietroom/noticing/internal/core/filter"
	"github.com/quietroom/noticing/internal/core/model"
	"github.com/quietroom/noticing/internal/core/names"
	"github.com/quietroom/noticing/internal/core/person"
	"github.com/quietroom/noticing/internal/core/reconcile"
	"github.com/quietroom/noticing/internal/core/reflection"
	"github.com/quietroom/noticing/internal/core/report"
	"github.com/quietroom/noticing/internal/llm"
	"github.com/quietroom/noticing/internal/store"
)

// Notebook ties the storage, reconciliation, analytics and reflection layers
// together behind one API used by both the HTTP server and the CLI.
//
// Every read merges a fresh snapshot from the store; nothing derived is
// cached except generated reflections, which are expensive and keyed by
// normalized person name.
type Notebook struct {
	Store store.KV
	LLM   llm.Client

	// Now and NewID exist so tests can pin time and ids.
	Now   func() time.Time
	NewID func() string

	mu          sync.Mutex
	reflecting  bool
	reflections map[string]*model.ReflectionSummary
}

func NewNotebook(kv store.KV, client llm.Client) *Notebook {
	return &Notebook{
		Store:       kv,
		LLM:         client,
		Now:         time.Now,
		NewID:       uuid.NewString,
		reflections: make(map[string]*model.ReflectionSummary),
	}
}

// Entries returns the reconciled collection across all source keys.
func (n *Notebook) Entries() reconcile.Result {
	return reconcile.MergeAll(n.Store)
}

// Roster lists every distinct participant name, sorted.
func (n *Notebook) Roster() []string {
	return person.Roster(n.Entries().Entries)
}

// Person builds the per-person view for name.
func (n *Notebook) Person(name string) person.View {
	return person.ForPerson(n.Entries().Entries, name, n.Now())
}

// Filtered builds the person view and applies a mode plus optional tag
// filter. The returned view always describes the full (unfiltered) set.
func (n *Notebook) Filtered(name, mode, tag string) (person.View, []model.Entry, filter.Mode, error) {
	m, err := filter.ParseMode(mode)
	if err != nil {
		return person.View{}, nil, "", err
	}
	view := n.Person(name)
	repeated := person.RepeatedSet(view.Collaborators)
	scoped := filter.Apply(view.Entries, name, m, tag, repeated)
	return view, scoped, m, nil
}

// AddEntry validates and stores a new observation at the head of the primary
// source key. The frame string is the raw comma-separated participant list;
// people are derived from it at save time.
func (n *Notebook) AddEntry(text, frame string, tags []string) (model.Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Entry{}, errors.New("entry text is empty")
	}
	for _, t := range tags {
		if !ValidTag(t) {
			return model.Entry{}, fmt.Errorf("unknown tag: %s", t)
		}
	}

	entry := model.Entry{
		ID:        n.NewID(),
		CreatedAt: n.Now().UTC().Format(time.RFC3339),
		Text:      text,
		Frame:     strings.TrimSpace(frame),
		People:    names.ParseFrame(frame),
		Tags:      tags,
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	existing := n.readKey(reconcile.PrimaryKey)
	updated := append([]model.Entry{entry}, existing...)
	if err := n.writeKey(reconcile.PrimaryKey, updated); err != nil {
		return model.Entry{}, err
	}
	return entry, nil
}

// DeleteEntry removes the entry with id from every source key it appears in.
func (n *Notebook) DeleteEntry(id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	found := false
	for _, key := range reconcile.SourceKeys {
		entries := n.readKey(key)
		var kept []model.Entry
		removed := false
		for _, e := range entries {
			if e.ID == id {
				removed = true
				continue
			}
			kept = append(kept, e)
		}
		if !removed {
			continue
		}
		found = true
		if err := n.writeKey(key, kept); err != nil {
			return err
		}
	}

	if !found {
		return fmt.Errorf("no entry with id %s", id)
	}
	return nil
}

// readKey decodes one source key, tolerating absence and malformed content
// the same way the merge path does.
func (n *Notebook) readKey(key string) []model.Entry {
	raw, ok, err := n.Store.Get(key)
	if err != nil || !ok || raw == "" {
		return nil
	}
	var entries []model.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}

func (n *Notebook) writeKey(key string, entries []model.Entry) error {
	if entries == nil {
		entries = []model.Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return n.Store.Set(key, string(data))
}

// ExportBackup serializes the full reconciled collection. The entriesKey
// field records which source keys contributed, for diagnostics on restore.
func (n *Notebook) ExportBackup() ([]byte, error) {
	result := n.Entries()
	entriesKey := reconcile.PrimaryKey
	if len(result.SourcesUsed) > 0 {
		entriesKey = strings.Join(result.SourcesUsed, ", ")
	}
	return report.Backup(result.Entries, entriesKey, n.Now())
}

// ImportBackup replaces the current collection with the backup's entries.
// The write targets the first source key that currently holds data so the
// restored collection shadows what was there; a fresh store gets the primary
// key.
func (n *Notebook) ImportBackup(data []byte) (int, error) {
	entries, err := report.ParseRestore(data)
	if err != nil {
		return 0, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	target := reconcile.PrimaryKey
	if used := reconcile.MergeAll(n.Store).SourcesUsed; len(used) > 0 {
		target = used[0]
	}
	if err := n.writeKey(target, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Reflect generates (and caches) an assisted reflection for name. scopeAll
// sends the full person history; otherwise only the currently filtered
// entries go to the model. One request at a time.
func (n *Notebook) Reflect(ctx context.Context, name, mode, tag string, scopeAll bool) (*model.ReflectionSummary, error) {
	if n.LLM == nil {
		return nil, errors.New("reflection is not configured: set an llm provider")
	}

	n.mu.Lock()
	if n.reflecting {
		n.mu.Unlock()
		return nil, errors.New("a reflection request is already in progress")
	}
	n.reflecting = true
	n.mu.Unlock()
	defer func() {
		n.mu.Lock()
		n.reflecting = false
		n.mu.Unlock()
	}()

	view, scoped, m, err := n.Filtered(name, mode, tag)
	if err != nil {
		return nil, err
	}
	if len(view.Entries) == 0 {
		return nil, fmt.Errorf("no observations for %s yet", name)
	}

	scope := scoped
	if scopeAll {
		scope = view.Entries
	}

	payload := reflection.BuildPayload(name, m, tag, view, scope)
	summary, err := reflection.NewService(n.LLM).Generate(ctx, payload)
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	n.reflections[names.Normalize(name)] = summary
	n.mu.Unlock()
	return summary, nil
}

// Reflection returns the cached reflection for name, or nil.
func (n *Notebook) Reflection(name string) *model.ReflectionSummary {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.reflections[names.Normalize(name)]
}

// Report renders the conference-ready text export for name.
func (n *Notebook) Report(name string) string {
	view := n.Person(name)
	topTag := view.TopTag()
	return report.Conference(report.ConferenceInput{
		Name:         names.ToDisplayName(name),
		GeneratedAt:  n.Now(),
		View:         view,
		SoftSummary:  analytics.SoftSummary(len(view.Entries), view.SoloCount, view.GroupCount, topTag),
		NextBestStep: analytics.NextBestStep(topTag),
		Reflection:   n.Reflection(name),
	})
}

// Rhythm positions the last 30 days of a person's entries on a timeline.
func (n *Notebook) Rhythm(name string) []analytics.RhythmPoint {
	now := n.Now()
	view := n.Person(name)
	return analytics.Rhythm(view.Entries, now.Add(-30*24*time.Hour), now)
}
