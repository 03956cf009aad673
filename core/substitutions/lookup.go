// Package substitutions provides ingredient substitute lookups for the
// cooking session's tool dispatcher.
package substitutions

import "context"

// Lookup answers "what can I use instead of X" questions. Implementations
// may take arbitrarily long; the caller bounds them with the context.
type Lookup interface {
	Substitute(ctx context.Context, ingredient, recipeTitle string) (string, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, ingredient, recipeTitle string) (string, error)

func (f LookupFunc) Substitute(ctx context.Context, ingredient, recipeTitle string) (string, error) {
	return f(ctx, ingredient, recipeTitle)
}
