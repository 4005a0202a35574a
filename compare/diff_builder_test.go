package compare

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func textToken(text string) Token {
	return Token{Type: TokenText, Text: text, LinkIndex: -1}
}

func anchorToken(text string, linkIndex int) Token {
	return Token{Type: TokenAnchor, Text: text, LinkIndex: linkIndex}
}

func TestBuildDiffLinkReport(t *testing.T) {
	before := &ExtractedDocument{
		Title: "Before",
		Paragraphs: []DocParagraph{
			{Part: "document.xml", Tokens: []Token{
				textToken("Visit"), anchorToken("our site", 0), textToken("today."),
			}},
			{Part: "document.xml", Tokens: []Token{
				textToken("See"), anchorToken("the docs", 1),
			}},
		},
		Links: []LinkRecord{
			link("document.xml", "https://example.com/", "our site"),
			link("document.xml", "https://example.com/docs", "the docs"),
		},
	}
	after := &ExtractedDocument{
		Title: "After",
		Paragraphs: []DocParagraph{
			{Part: "document.xml", Tokens: []Token{
				textToken("Visit"), anchorToken("our site", 0), textToken("today."),
			}},
			{Part: "document.xml", Tokens: []Token{
				textToken("See"), anchorToken("the docs", 1),
			}},
		},
		Links: []LinkRecord{
			link("document.xml", "https://example.org/", "our site"),
			link("document.xml", "https://example.com/docs", "the docs"),
		},
	}

	report := BuildDiff(before, after, DiffOptions{})

	require.Equal(t, "Before", report.BeforeTitle)
	require.Equal(t, "After", report.AfterTitle)

	require.Equal(t, 1, report.Summary.LinksChangedUrl)
	require.Equal(t, 0, report.Summary.LinksAdded)
	require.Equal(t, 0, report.Summary.LinksRemoved)
	require.Equal(t, 0, report.Summary.LinksChangedLabel)

	require.Equal(t, 1, len(report.LinkChanges))
	change := report.LinkChanges[0]
	require.Equal(t, LinkChangedUrl, change.Status)
	require.Equal(t, "our site", change.BeforeLabel)
	require.Equal(t, "https://example.com/", *change.BeforeUrl)
	require.Equal(t, "https://example.org/", *change.AfterUrl)

	// Paragraph text is identical on both sides, so rows are all equal, with the
	// changed anchor highlighted on both sides
	require.Equal(t, 2, len(report.Rows))
	require.Equal(t, RowEqual, report.Rows[0].Kind)
	require.Contains(t, string(report.Rows[0].BeforeHtml), "link-changed-url")
	require.Contains(t, string(report.Rows[0].AfterHtml), "link-changed-url")
	require.NotContains(t, string(report.Rows[1].BeforeHtml), "link-changed-url")
	require.Equal(t, float64(0), report.Summary.PercentChanged)
}

func TestBuildDiffParagraphChanges(t *testing.T) {
	before := &ExtractedDocument{
		Paragraphs: []DocParagraph{
			{Part: "document.xml", Tokens: []Token{textToken("The quick brown fox")}},
			{Part: "document.xml", Tokens: []Token{textToken("Removed paragraph")}},
			{Part: "document.xml", Tokens: []Token{textToken("Stable paragraph")}},
		},
	}
	after := &ExtractedDocument{
		Paragraphs: []DocParagraph{
			{Part: "document.xml", Tokens: []Token{textToken("The quick red fox")}},
			{Part: "document.xml", Tokens: []Token{textToken("Stable paragraph")}},
			{Part: "document.xml", Tokens: []Token{textToken("Brand new paragraph")}},
		},
	}

	report := BuildDiff(before, after, DiffOptions{})

	require.Equal(t, 1, report.Summary.Replacements)
	require.Equal(t, 1, report.Summary.Deletions)
	require.Equal(t, 1, report.Summary.Insertions)
	require.InDelta(t, 100.0, report.Summary.PercentChanged, 0.1)

	var kinds []RowKind
	for _, row := range report.Rows {
		kinds = append(kinds, row.Kind)
	}
	require.Equal(t, []RowKind{RowReplace, RowDelete, RowEqual, RowInsert}, kinds)

	replaceRow := report.Rows[0]
	require.Contains(t, string(replaceRow.BeforeHtml), "<del>")
	require.Contains(t, string(replaceRow.BeforeHtml), "brown")
	require.Contains(t, string(replaceRow.AfterHtml), "<ins>")
	require.Contains(t, string(replaceRow.AfterHtml), "red")
}

func TestBuildDiffTextOptionsAffectAlignment(t *testing.T) {
	before := &ExtractedDocument{
		Paragraphs: []DocParagraph{
			{Part: "p", Tokens: []Token{textToken("Hello,   WORLD!")}},
		},
	}
	after := &ExtractedDocument{
		Paragraphs: []DocParagraph{
			{Part: "p", Tokens: []Token{textToken("hello world")}},
		},
	}

	strict := BuildDiff(before, after, DiffOptions{})
	require.Equal(t, 1, strict.Summary.Replacements)

	lenient := BuildDiff(before, after, DiffOptions{
		Text: TextOptions{IgnoreCase: true, IgnorePunctuation: true, IgnoreWhitespace: true},
	})
	require.Equal(t, 0, lenient.Summary.Replacements)
	require.Equal(t, float64(0), lenient.Summary.PercentChanged)
}

func TestBuildDiffUrlOptionsAffectCorrelation(t *testing.T) {
	before := &ExtractedDocument{
		Paragraphs: []DocParagraph{
			{Part: "p", Tokens: []Token{anchorToken("home", 0)}},
		},
		Links: []LinkRecord{link("p", "http://example.com/page#top", "home")},
	}
	after := &ExtractedDocument{
		Paragraphs: []DocParagraph{
			{Part: "p", Tokens: []Token{anchorToken("home", 0)}},
		},
		Links: []LinkRecord{link("p", "https://example.com/page", "home")},
	}

	strict := BuildDiff(before, after, DiffOptions{})
	require.Equal(t, 1, strict.Summary.LinksChangedUrl)

	lenient := BuildDiff(before, after, DiffOptions{
		Url: UrlOptions{IgnoreProtocol: true, StripFragment: true},
	})
	require.Equal(t, 0, lenient.Summary.LinksChangedUrl)
	require.Empty(t, lenient.LinkChanges)

	// Raw urls survive for display even when matching is canonicalized
	require.Equal(t,
		"http://example.com/page#top", *before.Links[0].MaybeDestination)
}

func TestBuildDiffEscapesHtml(t *testing.T) {
	before := &ExtractedDocument{
		Paragraphs: []DocParagraph{
			{Part: "p", Tokens: []Token{textToken(`<script>alert("x")</script>`)}},
		},
	}
	after := &ExtractedDocument{
		Paragraphs: []DocParagraph{
			{Part: "p", Tokens: []Token{textToken(`<script>alert("x")</script>`)}},
		},
	}

	report := BuildDiff(before, after, DiffOptions{})
	require.Equal(t, 1, len(report.Rows))
	html := string(report.Rows[0].BeforeHtml)
	require.False(t, strings.Contains(html, "<script>"))
	require.Contains(t, html, "&lt;script&gt;")
}
