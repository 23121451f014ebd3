package core

import "math/rand"

// Prompts are short noticing invitations shown when starting a new entry.
var Prompts = []string{
	"What did someone do that they didn’t realize you saw?",
	"Where did energy gather?",
	"Who surprised you?",
	"What felt steady today?",
	"What almost went unnoticed?",
	"What changed after lunch?",
	"What kept pulling focus?",
	"What's becoming easier over time?",
	"What needed support—and what didn’t?",
	"What pattern is starting to repeat?",
	"What was the quiet win today?",
	"What shifted when you changed nothing?",
	"Who carried the room for a moment?",
	"What was contagious—in a good way?",
	"What was avoided (gently or loudly)?",
	"What needs a follow-up tomorrow?",
}

// RandomPrompt picks one invitation at random.
func RandomPrompt() string {
	return Prompts[rand.Intn(len(Prompts))]
}

// TagOptions is the fixed authoring vocabulary. Tags on stored entries are
// matched exactly against these values.
var TagOptions = []string{
	"Cognitive",
	"Social",
	"Regulation",
	"Moral",
	"Independence",
	"Motor",
	"Executive",
}

// ValidTag reports whether tag is part of the fixed vocabulary.
func ValidTag(tag string) bool {
	for _, t := range TagOptions {
		if t == tag {
			return true
		}
	}
	return false
}
