package session

import "fmt"

// Recipe is the read-only step list the voice session is layered on top of.
// The engine does not own recipe content; it only navigates it.
type Recipe struct {
	Title        string
	Instructions []string
}

// TotalSteps returns the number of instructions.
func (r Recipe) TotalSteps() int { return len(r.Instructions) }

func defaultSystemInstruction(recipe Recipe) string {
	return fmt.Sprintf(
		"You are an expert sous chef voice assistant. The user is cooking %q. "+
			"Be concise and directly answer cooking-related questions. "+
			"Use the provided tools: %q for step navigation, %q for countdown timers "+
			"and %q for ingredient substitutions when requested. "+
			"The current recipe has %d steps.",
		recipe.Title, toolNameNavigate, toolNameSetTimer, toolNameSubstitute,
		recipe.TotalSteps(),
	)
}
