package gophrase

import (
	"errors"
	"testing"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input string
		want  Direction
	}{
		{"nt->nd", DirectionNTToND},
		{"nd->nt", DirectionNDToNT},
		{"NT->ND", DirectionNTToND},
		{"  nd->nt ", DirectionNDToNT},
	}

	for _, tt := range tests {
		got, err := ParseDirection(tt.input)
		if err != nil {
			t.Errorf("ParseDirection(%q) returned error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDirection(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseDirection_Invalid(t *testing.T) {
	for _, input := range []string{"", "nt", "nt-nd", "ND->ND"} {
		_, err := ParseDirection(input)
		var dirErr *InvalidDirectionError
		if !errors.As(err, &dirErr) {
			t.Errorf("ParseDirection(%q) should return InvalidDirectionError, got %v", input, err)
			continue
		}
		if dirErr.Value != input {
			t.Errorf("InvalidDirectionError.Value = %q, want %q", dirErr.Value, input)
		}
	}
}

func TestDirection_Label(t *testing.T) {
	if DirectionNTToND.Label() != "NT -> ND" {
		t.Errorf("unexpected label: %s", DirectionNTToND.Label())
	}
	if DirectionNDToNT.Label() != "ND -> NT" {
		t.Errorf("unexpected label: %s", DirectionNDToNT.Label())
	}
}

func TestResult_Found(t *testing.T) {
	var nilResult *Result
	if nilResult.Found() {
		t.Error("nil result should not be found")
	}
	if (&Result{Source: SourceNone}).Found() {
		t.Error("SourceNone result should not be found")
	}
	if (&Result{Source: SourceProvider}).Found() {
		t.Error("result with empty text should not be found")
	}
	if !(&Result{Text: "hi", Source: SourceCache}).Found() {
		t.Error("cached result should be found")
	}
}
