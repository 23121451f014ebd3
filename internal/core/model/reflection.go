package model

// ReflectionCounts summarizes the person view for the reflection request.
type ReflectionCounts struct {
	Total      int `json:"total"`
	Last30Days int `json:"last30Days"`
	Solo       int `json:"solo"`
	Group      int `json:"group"`
}

// ReflectionEntry is the trimmed entry shape sent to the reflection service.
// Tags and people are always present as arrays, never null.
type ReflectionEntry struct {
	CreatedAt string   `json:"createdAt"`
	Text      string   `json:"text"`
	Tags      []string `json:"tags"`
	People    []string `json:"people"`
}

// ReflectionKnowledge carries optional guide notes alongside the entries.
type ReflectionKnowledge struct {
	MontessoriAlbumNotes string `json:"montessori_album_notes"`
	SpiralCompanionNotes string `json:"spiral_companion_notes"`
}

// ReflectionPayload is the request body for the AI reflection service.
type ReflectionPayload struct {
	Name                  string              `json:"name"`
	Timeframe             string              `json:"timeframe"`
	ActiveMode            string              `json:"active_mode"`
	ActiveTag             *string             `json:"active_tag"`
	Counts                ReflectionCounts    `json:"counts"`
	TopTags               []TagCount          `json:"topTags"`
	RepeatedCollaborators []NameCount         `json:"repeatedCollaborators"`
	Entries               []ReflectionEntry   `json:"entries"`
	Knowledge             ReflectionKnowledge `json:"knowledge"`
}

// MaterialSuggestion is one suggested material or lesson in a reflection.
// All four fields are mandatory in a valid response.
type MaterialSuggestion struct {
	Title      string `json:"title"`
	Rationale  string `json:"rationale"`
	Tag        string `json:"tag"`
	Confidence string `json:"confidence"` // "low" | "medium" | "high"
}

// ReflectionSummary is the structured reflection result. All six top-level
// fields must be present in a valid response; a response missing any of them
// is surfaced as an error, never as a partial summary.
type ReflectionSummary struct {
	Strengths          []string             `json:"strengths"`
	EmergingCapacities []string             `json:"emerging_capacities"`
	Concerns           []string             `json:"concerns"`
	Supports           []string             `json:"supports"`
	SuggestedMaterials []MaterialSuggestion `json:"suggested_montessori_materials"`
	Notes              string               `json:"notes"`
}
