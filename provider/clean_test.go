package provider

import "testing"

func TestCleanOutput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Good luck!", "Good luck!"},
		{"whitespace", "  Good   luck!\n", "Good luck!"},
		{"double quotes", `"Good luck!"`, "Good luck!"},
		{"curly quotes", "“Good luck!”", "Good luck!"},
		{"inner quotes kept", `"Yes" she said "no"`, `"Yes" she said "no"`},
		{"html", "<p>Good <b>luck</b>!</p>", "Good luck!"},
		{"html blocks", "<p>Good luck.</p><p>Have fun.</p>", "Good luck. Have fun."},
		{"less than sign", "I <3 you", "I <3 you"},
		{"comment", "Good luck!<!-- note -->", "Good luck!"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanOutput(tt.input); got != tt.want {
				t.Errorf("cleanOutput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
