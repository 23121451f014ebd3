package model

// Entry is one stored observation record. Field names are fixed by the
// storage format: every source key holds a JSON array of these, and backups
// must round-trip the collection losslessly.
//
// CreatedAt stays an ISO-8601 string rather than a time.Time on purpose:
// ordering comparisons are lexicographic (valid for well-formed ISO
// timestamps) and legacy values that do not parse must survive round-trips
// untouched.
type Entry struct {
	ID        string   `json:"id"`
	CreatedAt string   `json:"createdAt"`
	Text      string   `json:"text"`
	Frame     string   `json:"frame,omitempty"`
	People    []string `json:"people,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// IsSolo reports whether the entry has at most one named participant.
func (e Entry) IsSolo() bool {
	return len(e.People) <= 1
}

// IsGroup reports whether the entry has two or more named participants.
func (e Entry) IsGroup() bool {
	return len(e.People) >= 2
}

// TagCount is one row of a tag frequency table.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// NameCount is one row of a collaborator frequency table. Name keeps the
// casing it had in the entries.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
