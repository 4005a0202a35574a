package compare

import "strings"

// LinkRecord is one extracted hyperlink occurrence. Part identifies the structural
// region the link lives in (document body, a header, footnotes) and scopes all
// matching; links are never matched across parts. RelationId is carried for
// traceability only and never participates in matching.
type LinkRecord struct {
	Part             string
	RelationId       string
	MaybeDestination *string
	Label            string
}

// NormalizedLabel collapses whitespace runs to a single space and trims.
// Two labels are equal iff their normalized forms are equal.
func (r *LinkRecord) NormalizedLabel() string {
	return strings.Join(strings.Fields(r.Label), " ")
}

// NormalizedDestination treats an absent destination as the empty string for
// comparison purposes. The nil is preserved in the record itself for display.
func (r *LinkRecord) NormalizedDestination() string {
	if r.MaybeDestination == nil {
		return ""
	}
	return *r.MaybeDestination
}

type ChangedPair struct {
	Before LinkRecord
	After  LinkRecord
}

// Classification partitions the records of both input lists: every record ends up
// in exactly one of matched (implicit, not reported), Added, Removed, or one side
// of a ChangedUrl/ChangedLabel pair.
type Classification struct {
	Added        []LinkRecord
	Removed      []LinkRecord
	ChangedUrl   []ChangedPair
	ChangedLabel []ChangedPair
}

type TokenType int

const (
	TokenText TokenType = iota
	TokenAnchor
)

// Token is a fragment of a paragraph: either plain text or an anchor. Anchor
// tokens point into the document's link record list via LinkIndex.
type Token struct {
	Type      TokenType
	Text      string
	LinkIndex int
}

type DocParagraph struct {
	Part   string
	Tokens []Token
}

func (p *DocParagraph) Text() string {
	var parts []string
	for _, token := range p.Tokens {
		if token.Text != "" {
			parts = append(parts, token.Text)
		}
	}
	return strings.Join(parts, " ")
}

// ExtractedDocument is what the extraction adapters produce: ordered paragraphs
// per part and the link records in anchor token order.
type ExtractedDocument struct {
	Title      string
	Paragraphs []DocParagraph
	Links      []LinkRecord
}
