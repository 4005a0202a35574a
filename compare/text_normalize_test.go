package compare

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		description string
		text        string
		options     TextOptions
		expected    string
	}{
		{
			description: "noop options leave text alone",
			text:        "  Hello,   World!  ",
			options:     TextOptions{},
			expected:    "  Hello,   World!  ",
		},
		{
			description: "case folding",
			text:        "Straße UPPER lower",
			options:     TextOptions{IgnoreCase: true},
			expected:    "strasse upper lower",
		},
		{
			description: "punctuation replaced by spaces",
			text:        "state-of-the-art, really?",
			options:     TextOptions{IgnorePunctuation: true},
			expected:    "state of the art  really ",
		},
		{
			description: "whitespace runs collapse and trim",
			text:        "  one \t two\n\nthree ",
			options:     TextOptions{IgnoreWhitespace: true},
			expected:    "one two three",
		},
		{
			description: "punctuation then whitespace keeps words apart",
			text:        "state-of-the-art",
			options:     TextOptions{IgnorePunctuation: true, IgnoreWhitespace: true},
			expected:    "state of the art",
		},
	}

	for _, tc := range tests {
		require.Equal(t, tc.expected, NormalizeText(tc.text, tc.options), tc.description)
	}
}
