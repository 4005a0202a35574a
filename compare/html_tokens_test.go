package compare

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHtml(t *testing.T) {
	html := `<!DOCTYPE html>
<html>
<head><title> Release Notes </title><style>p { color: red }</style></head>
<body>
	<h1>Changes</h1>
	<p>See the <a href="https://example.com/log">full log</a> for details.</p>
	<p>Jump to <a>top</a>.</p>
	<ul><li>First item</li><li>Second <a href="/relative">link</a></li></ul>
	<script>console.log("skipped")</script>
</body>
</html>`

	document, err := ParseHtml(strings.NewReader(html), &DummyLogger{})
	require.NoError(t, err)

	require.Equal(t, "Release Notes", document.Title)

	var paragraphTexts []string
	for _, paragraph := range document.Paragraphs {
		require.Equal(t, "document.html", paragraph.Part)
		paragraphTexts = append(paragraphTexts, paragraph.Text())
	}
	require.Equal(t, []string{
		"Changes",
		"See the full log for details.",
		"Jump to top .",
		"First item",
		"Second link",
	}, paragraphTexts)

	require.Equal(t, 3, len(document.Links))
	require.Equal(t, "https://example.com/log", *document.Links[0].MaybeDestination)
	require.Equal(t, "full log", document.Links[0].Label)
	require.Nil(t, document.Links[1].MaybeDestination)
	require.Equal(t, "top", document.Links[1].Label)
	require.Equal(t, "/relative", *document.Links[2].MaybeDestination)

	// Anchor tokens point back at their link records
	var anchorCount int
	for _, paragraph := range document.Paragraphs {
		for _, token := range paragraph.Tokens {
			if token.Type == TokenAnchor {
				require.Equal(t, document.Links[token.LinkIndex].Label, token.Text)
				anchorCount++
			}
		}
	}
	require.Equal(t, 3, anchorCount)
}

func TestParseHtmlEmpty(t *testing.T) {
	document, err := ParseHtml(strings.NewReader(""), &DummyLogger{})
	require.NoError(t, err)
	require.Empty(t, document.Paragraphs)
	require.Empty(t, document.Links)
}
