package reflection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quietroom/noticing/internal/core/common"
	"github.com/quietroom/noticing/internal/core/filter"
	"github.com/quietroom/noticing/internal/core/model"
	"github.com/quietroom/noticing/internal/core/person"
	"github.com/quietroom/noticing/internal/llm"
)

// Timeframe is fixed for now: the payload always spans the full history of
// the scoped entries.
const Timeframe = "all_time"

const topListLimit = 8

// BuildPayload assembles the reflection request body. scope is the entry
// list actually sent (the full person view or the filtered view); the counts
// and frequency tables always describe the full view.
func BuildPayload(name string, mode filter.Mode, activeTag string, view person.View, scope []model.Entry) model.ReflectionPayload {
	var tagPtr *string
	if activeTag != "" {
		tagPtr = &activeTag
	}

	topTags := view.TagCounts
	if len(topTags) > topListLimit {
		topTags = topTags[:topListLimit]
	}
	collaborators := view.Collaborators
	if len(collaborators) > topListLimit {
		collaborators = collaborators[:topListLimit]
	}

	entries := make([]model.ReflectionEntry, 0, len(scope))
	for _, e := range scope {
		tags := e.Tags
		if tags == nil {
			tags = []string{}
		}
		people := e.People
		if people == nil {
			people = []string{}
		}
		entries = append(entries, model.ReflectionEntry{
			CreatedAt: e.CreatedAt,
			Text:      e.Text,
			Tags:      tags,
			People:    people,
		})
	}

	return model.ReflectionPayload{
		Name:       name,
		Timeframe:  Timeframe,
		ActiveMode: string(mode),
		ActiveTag:  tagPtr,
		Counts: model.ReflectionCounts{
			Total:      len(view.Entries),
			Last30Days: view.Last30DaysCount,
			Solo:       view.SoloCount,
			Group:      view.GroupCount,
		},
		TopTags:               topTags,
		RepeatedCollaborators: collaborators,
		Entries:               entries,
	}
}

// Service runs reflection requests against an LLM provider. One request per
// invocation; retries and cancellation are the caller's concern.
type Service struct {
	LLM llm.Client
}

func NewService(client llm.Client) *Service {
	return &Service{LLM: client}
}

// Generate performs a single reflection request and validates the structured
// result. Callers get either a complete summary or an error string, never a
// partial object.
func (s *Service) Generate(ctx context.Context, payload model.ReflectionPayload) (*model.ReflectionSummary, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal reflection payload: %w", err)
	}

	prompt := reflectionPrompt + "\n\nObservation data:\n" + string(body)

	response, err := s.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("reflection request failed: %w", err)
	}

	return parseSummary(response)
}

var requiredFields = []string{
	"strengths",
	"emerging_capacities",
	"concerns",
	"supports",
	"suggested_montessori_materials",
	"notes",
}

var requiredMaterialFields = []string{"title", "rationale", "tag", "confidence"}

// parseSummary validates the response against the mandatory schema. All six
// top-level fields must be present, and every suggested material must carry
// all four of its fields with a known confidence value.
func parseSummary(response string) (*model.ReflectionSummary, error) {
	raw, err := common.ParseJSON[map[string]json.RawMessage](response)
	if err != nil {
		return nil, fmt.Errorf("malformed reflection response: %w", err)
	}

	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			return nil, fmt.Errorf("malformed reflection response: missing field %q", field)
		}
	}

	var materials []map[string]json.RawMessage
	if err := json.Unmarshal(raw["suggested_montessori_materials"], &materials); err != nil {
		return nil, fmt.Errorf("malformed reflection response: suggested_montessori_materials is not a list")
	}
	for i, m := range materials {
		for _, field := range requiredMaterialFields {
			if _, ok := m[field]; !ok {
				return nil, fmt.Errorf("malformed reflection response: material %d missing field %q", i, field)
			}
		}
	}

	summary, err := common.ParseJSON[model.ReflectionSummary](response)
	if err != nil {
		return nil, fmt.Errorf("malformed reflection response: %w", err)
	}

	for i, m := range summary.SuggestedMaterials {
		switch m.Confidence {
		case "low", "medium", "high":
		default:
			return nil, fmt.Errorf("malformed reflection response: material %d has invalid confidence %q", i, m.Confidence)
		}
	}

	return &summary, nil
}

// reflectionPrompt frames the request for the model. The schema mirrors
// model.ReflectionSummary; responses that deviate are rejected by
// parseSummary.
const reflectionPrompt = `You are supporting a Montessori guide who records observation notes.
Given the student's entries across time, produce a calm, Montessori Guide reflection.

Begin the reflection with a short, collaborative framing sentence such as:
"Here's what seems steady right now."
This sentence should feel reflective and supportive, not evaluative.

Rules:
- Do not diagnose.
- Use gentle, observational language.
- Be specific, evidence-based, and time-aware (look for repetition).
- "Concerns" should be framed as frictions or needs, not labels.
- "Supports" should be practical: environment tweaks, invitations, grace/courtesy, scaffolds.
- Suggest Montessori materials/lessons that could meet a concern or extend a strength.
- Assume the child is in an Elementary Montessori classroom (ages 6-12).
- Suggest materials and lessons as part of an album progression (follow-up, extension, or consolidation), not introductory primary work.
- Avoid Primary-only materials (e.g., Pink Tower, Metal Insets, Knobbed Cylinders) unless observations clearly indicate a foundational gap.
- If unsure, set confidence "low" and say why in rationale.
- Keep each bullet short (1-2 sentences max).

Return ONLY a JSON object with this exact structure, no other text:
{
  "strengths": ["..."],
  "emerging_capacities": ["..."],
  "concerns": ["..."],
  "supports": ["..."],
  "suggested_montessori_materials": [
    {"title": "...", "rationale": "...", "tag": "...", "confidence": "low|medium|high"}
  ],
  "notes": "..."
}
All six top-level fields are required. Every suggested material must include
title, rationale, tag, and confidence.`
