package compare

import (
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
)

// TextOptions controls comparison-time normalization of paragraph text. The
// rendered panels always show the original text; normalization only affects
// which fragments count as equal.
type TextOptions struct {
	IgnoreCase        bool
	IgnorePunctuation bool
	IgnoreWhitespace  bool
}

func (o TextOptions) IsNoop() bool {
	return o == TextOptions{}
}

var punctuationRegex = regexp2.MustCompile(`[\p{P}\p{S}]`, regexp2.None)

var caseFolder = cases.Fold()

// NormalizeText applies the enabled transformations in a fixed order: case
// folding, punctuation stripping, whitespace collapsing. The order matters for
// punctuation that doubles as a word separator ("state-of-the-art" collapses
// differently if whitespace runs first).
func NormalizeText(text string, options TextOptions) string {
	if options.IsNoop() {
		return text
	}

	if options.IgnoreCase {
		text = caseFolder.String(text)
	}

	if options.IgnorePunctuation {
		stripped, err := punctuationRegex.Replace(text, " ", -1, -1)
		if err == nil {
			text = stripped
		}
	}

	if options.IgnoreWhitespace {
		text = strings.Join(strings.Fields(text), " ")
	}

	return text
}
