package reflection

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quietroom/noticing/internal/core/filter"
	"github.com/quietroom/noticing/internal/core/model"
	"github.com/quietroom/noticing/internal/core/person"
)

type MockLLM struct {
	Response string
	Err      error
	Prompt   string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompt = prompt
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

const validResponse = `{
	"strengths": ["sustained focus during math work"],
	"emerging_capacities": ["beginning to teach peers"],
	"concerns": ["transitions feel rushed"],
	"supports": ["offer a visual sequence card"],
	"suggested_montessori_materials": [
		{"title": "Checkerboard", "rationale": "extends multiplication", "tag": "Cognitive", "confidence": "medium"}
	],
	"notes": "a steady stretch overall"
}`

func sampleView() person.View {
	var tags []model.TagCount
	for _, tag := range []string{"Social", "Motor", "Moral", "Cognitive", "Regulation", "Executive", "Independence", "Other", "More"} {
		tags = append(tags, model.TagCount{Tag: tag, Count: 1})
	}
	return person.View{
		Target: "Lucy",
		Entries: []model.Entry{
			{ID: "a", CreatedAt: "2026-03-10T10:00:00Z", Text: "x", Tags: []string{"Social"}, People: []string{"Lucy"}},
			{ID: "b", CreatedAt: "2026-03-09T10:00:00Z", Text: "y"},
		},
		TagCounts:       tags,
		Collaborators:   []model.NameCount{{Name: "Marco", Count: 2}},
		Last30DaysCount: 2,
		SoloCount:       2,
		GroupCount:      0,
	}
}

func TestBuildPayload(t *testing.T) {
	view := sampleView()
	payload := BuildPayload("Lucy", filter.ModeSolo, "Social", view, view.Entries)

	assert.Equal(t, "Lucy", payload.Name)
	assert.Equal(t, "all_time", payload.Timeframe)
	assert.Equal(t, "solo", payload.ActiveMode)
	assert.NotNil(t, payload.ActiveTag)
	assert.Equal(t, "Social", *payload.ActiveTag)
	assert.Equal(t, 2, payload.Counts.Total)
	assert.Equal(t, 2, payload.Counts.Solo)

	// Tag table caps at eight.
	assert.Len(t, payload.TopTags, 8)
	assert.Len(t, payload.Entries, 2)
}

func TestBuildPayloadNilTag(t *testing.T) {
	view := sampleView()
	payload := BuildPayload("Lucy", filter.ModeAll, "", view, view.Entries)
	assert.Nil(t, payload.ActiveTag)

	// A nil tag serializes as JSON null, not as a missing key.
	body, err := json.Marshal(payload)
	assert.NoError(t, err)
	assert.Contains(t, string(body), `"active_tag":null`)
}

func TestBuildPayloadEntriesNeverNullFields(t *testing.T) {
	view := sampleView()
	payload := BuildPayload("Lucy", filter.ModeAll, "", view, view.Entries)

	for _, e := range payload.Entries {
		assert.NotNil(t, e.Tags)
		assert.NotNil(t, e.People)
	}
}

func TestGenerateValidResponse(t *testing.T) {
	mock := &MockLLM{Response: validResponse}
	svc := NewService(mock)

	view := sampleView()
	payload := BuildPayload("Lucy", filter.ModeAll, "", view, view.Entries)
	summary, err := svc.Generate(context.Background(), payload)

	assert.NoError(t, err)
	assert.Equal(t, []string{"sustained focus during math work"}, summary.Strengths)
	assert.Len(t, summary.SuggestedMaterials, 1)
	assert.Equal(t, "medium", summary.SuggestedMaterials[0].Confidence)
	assert.Equal(t, "a steady stretch overall", summary.Notes)

	// The observation data rides along in the prompt.
	assert.Contains(t, mock.Prompt, `"name":"Lucy"`)
}

func TestGenerateMissingField(t *testing.T) {
	// No "notes" field.
	mock := &MockLLM{Response: `{
		"strengths": [], "emerging_capacities": [], "concerns": [],
		"supports": [], "suggested_montessori_materials": []
	}`}
	svc := NewService(mock)

	view := sampleView()
	_, err := svc.Generate(context.Background(), BuildPayload("Lucy", filter.ModeAll, "", view, view.Entries))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `missing field "notes"`)
}

func TestGenerateMaterialMissingField(t *testing.T) {
	mock := &MockLLM{Response: `{
		"strengths": [], "emerging_capacities": [], "concerns": [], "supports": [],
		"suggested_montessori_materials": [{"title": "Checkerboard", "rationale": "x", "tag": "Cognitive"}],
		"notes": ""
	}`}
	svc := NewService(mock)

	view := sampleView()
	_, err := svc.Generate(context.Background(), BuildPayload("Lucy", filter.ModeAll, "", view, view.Entries))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `missing field "confidence"`)
}

func TestGenerateInvalidConfidence(t *testing.T) {
	mock := &MockLLM{Response: `{
		"strengths": [], "emerging_capacities": [], "concerns": [], "supports": [],
		"suggested_montessori_materials": [{"title": "Checkerboard", "rationale": "x", "tag": "Cognitive", "confidence": "certain"}],
		"notes": ""
	}`}
	svc := NewService(mock)

	view := sampleView()
	_, err := svc.Generate(context.Background(), BuildPayload("Lucy", filter.ModeAll, "", view, view.Entries))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid confidence")
}

func TestGenerateProviderError(t *testing.T) {
	mock := &MockLLM{Err: errors.New("rate limited")}
	svc := NewService(mock)

	view := sampleView()
	_, err := svc.Generate(context.Background(), BuildPayload("Lucy", filter.ModeAll, "", view, view.Entries))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestGenerateNonJSONResponse(t *testing.T) {
	mock := &MockLLM{Response: "I cannot help with that."}
	svc := NewService(mock)

	view := sampleView()
	_, err := svc.Generate(context.Background(), BuildPayload("Lucy", filter.ModeAll, "", view, view.Entries))
	assert.Error(t, err)
}
