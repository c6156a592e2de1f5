// Package query filters the course catalog by keyword, modality, status,
// instructor, day and time of day. Searching is deterministic and free of
// side effects: the same catalog and request always produce the same
// result list, and the catalog is never mutated.
package query

// TokenFilter is the canonical form every filter argument is normalized
// into. A zero TokenFilter is inactive and matches everything.
type TokenFilter struct {
	Tokens []string
	// RequireAll selects conjunction over the tokens. Only meaningful
	// for day and time filters, where a single meeting must satisfy
	// every token.
	RequireAll bool
}

func (f TokenFilter) Active() bool {
	return len(f.Tokens) > 0
}

// Tokens constructs a disjunctive filter from pre-split values.
func Tokens(values ...string) TokenFilter {
	return TokenFilter{Tokens: values}
}
