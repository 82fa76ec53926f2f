package gophrase

import "strings"

// Direction selects which of the two rewrite styles is applied.
type Direction string

const (
	// DirectionNTToND renders a phrase into a literal, direct form with no
	// idioms, metaphors or implied meaning.
	DirectionNTToND Direction = "nt->nd"
	// DirectionNDToNT renders a direct phrase into the softer, figurative
	// register many neurotypical readers expect.
	DirectionNDToNT Direction = "nd->nt"
)

// DefaultDirection is the direction used by the CLI when none is given.
const DefaultDirection = DirectionNTToND

// ParseDirection validates a direction string. Matching is case-insensitive
// and ignores surrounding whitespace; anything else is rejected rather than
// defaulted.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", &InvalidDirectionError{Value: s}
	}
	return d, nil
}

// Valid reports whether d is a supported direction.
func (d Direction) Valid() bool {
	return d == DirectionNTToND || d == DirectionNDToNT
}

// Label returns the display label, e.g. "NT -> ND".
func (d Direction) Label() string {
	switch d {
	case DirectionNTToND:
		return "NT -> ND"
	case DirectionNDToNT:
		return "ND -> NT"
	default:
		return string(d)
	}
}

func (d Direction) String() string {
	return string(d)
}

// Source records where a translation result came from.
type Source string

const (
	// SourceCache means the result was served from the phrase cache.
	SourceCache Source = "cache"
	// SourceProvider means the AI provider produced the result.
	SourceProvider Source = "provider"
	// SourceNone means no translation is available.
	SourceNone Source = "none"
)

// Result is the outcome of a translation request.
type Result struct {
	Phrase    string    // The phrase as submitted
	Text      string    // Translation (empty when Source is SourceNone)
	Direction Direction // Direction that was requested
	Source    Source    // Where Text came from
	Err       error     // Provider failure behind a SourceNone result, if any
}

// Found reports whether a translation is available.
func (r *Result) Found() bool {
	return r != nil && r.Source != SourceNone && r.Text != ""
}
