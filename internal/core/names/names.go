package names

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes a participant name for equality checks: trimmed,
// internal whitespace runs collapsed to single spaces, lowercased. Only ever
// used for matching, never for display.
func Normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ToDisplayName cleans a name the way the authoring flow stores it: trimmed,
// single-spaced, each word title-cased. Applied once at entry creation, so
// stored names are already canonical for display. The read side still goes
// through Normalize because legacy entries predate this transform.
func ToDisplayName(input string) string {
	words := strings.Fields(input)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// ParseFrame splits a comma-separated frame ("River, Lucy, Journee") into
// display names, dropping empties and in-frame duplicates while preserving
// first occurrence.
func ParseFrame(frame string) []string {
	var people []string
	seen := make(map[string]struct{})

	for _, part := range strings.Split(frame, ",") {
		name := ToDisplayName(part)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		people = append(people, name)
	}

	return people
}
