package compare

import (
	"docdiff/oops"
	"io"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Html documents have no structural regions, so every record goes into a single
// synthetic part.
const htmlPart = "document.html"

var htmlBlockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "li": true, "td": true, "th": true, "blockquote": true,
	"pre": true, "figcaption": true, "dt": true, "dd": true,
}

var htmlSkippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"head": true, "svg": true,
}

// ParseHtml extracts paragraphs and link records from an html document. Block
// elements delimit paragraphs; anchors with an href become link records, and
// href-less anchors (pure fragment targets) get a nil destination.
func ParseHtml(reader io.Reader, logger Logger) (*ExtractedDocument, error) {
	root, err := htmlquery.Parse(reader)
	if err != nil {
		return nil, oops.Wrap(err)
	}

	document := &ExtractedDocument{}
	if titleNode := htmlquery.FindOne(root, "//title"); titleNode != nil {
		document.Title = strings.TrimSpace(htmlquery.InnerText(titleNode))
	}

	body := htmlquery.FindOne(root, "//body")
	if body == nil {
		logger.Warn("Html document has no body")
		return document, nil
	}

	var paragraph DocParagraph
	flushParagraph := func() {
		if paragraphHasContent(&paragraph) {
			paragraph.Part = htmlPart
			document.Paragraphs = append(document.Paragraphs, paragraph)
		}
		paragraph = DocParagraph{}
	}

	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			if text := strings.TrimSpace(node.Data); text != "" {
				paragraph.Tokens = append(paragraph.Tokens, Token{
					Type:      TokenText,
					Text:      text,
					LinkIndex: -1,
				})
			}
			return
		case html.ElementNode:
			if htmlSkippedTags[node.Data] {
				return
			}
			if node.Data == "a" {
				label := strings.TrimSpace(htmlquery.InnerText(node))
				var maybeDestination *string
				for _, attr := range node.Attr {
					if attr.Key == "href" {
						href := attr.Val
						maybeDestination = &href
						break
					}
				}
				document.Links = append(document.Links, LinkRecord{
					Part:             htmlPart,
					MaybeDestination: maybeDestination,
					Label:            label,
				})
				paragraph.Tokens = append(paragraph.Tokens, Token{
					Type:      TokenAnchor,
					Text:      label,
					LinkIndex: len(document.Links) - 1,
				})
				return
			}
			if htmlBlockTags[node.Data] {
				flushParagraph()
				for child := node.FirstChild; child != nil; child = child.NextSibling {
					walk(child)
				}
				flushParagraph()
				return
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(body)
	flushParagraph()

	return document, nil
}

func paragraphHasContent(paragraph *DocParagraph) bool {
	for _, token := range paragraph.Tokens {
		if token.Type == TokenAnchor || strings.TrimSpace(token.Text) != "" {
			return true
		}
	}
	return false
}
