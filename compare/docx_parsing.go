package compare

import (
	"archive/zip"
	"docdiff/oops"
	"io"
	"path"
	"strings"

	"github.com/antchfx/xmlquery"
)

// docx parts that can carry hyperlinks, in the order they appear in the report.
// The wildcard forms match the numbered header1.xml/footer2.xml family.
var docxPartPrefixes = []string{
	"document.xml",
	"header",
	"footer",
	"footnotes.xml",
	"endnotes.xml",
}

func isLinkBearingPart(name string) bool {
	for _, prefix := range docxPartPrefixes {
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".xml") {
			return true
		}
	}
	return false
}

// ParseDocx reads a docx archive and extracts its title, paragraphs and link
// records. Part identifiers are the bare xml filenames inside word/
// (document.xml, header1.xml), which are stable across versions of the same
// document. Hyperlinks whose relationship id can't be resolved get a nil
// destination rather than failing the parse.
func ParseDocx(readerAt io.ReaderAt, size int64, logger Logger) (*ExtractedDocument, error) {
	zipReader, err := zip.NewReader(readerAt, size)
	if err != nil {
		return nil, oops.Wrap(err)
	}

	filesByName := make(map[string]*zip.File)
	var partNames []string
	for _, file := range zipReader.File {
		filesByName[file.Name] = file
		dir, base := path.Split(file.Name)
		if dir == "word/" && isLinkBearingPart(base) {
			partNames = append(partNames, base)
		}
	}
	if _, ok := filesByName["word/document.xml"]; !ok {
		return nil, oops.New("not a docx archive: word/document.xml missing")
	}

	// document.xml first, then the rest in archive order
	orderedParts := []string{"document.xml"}
	for _, name := range partNames {
		if name != "document.xml" {
			orderedParts = append(orderedParts, name)
		}
	}

	document := &ExtractedDocument{
		Title: parseDocxTitle(filesByName),
	}

	for _, partName := range orderedParts {
		relTargets, err := parseDocxRels(filesByName, partName)
		if err != nil {
			return nil, err
		}

		partRoot, err := parseZipXml(filesByName["word/"+partName])
		if err != nil {
			return nil, err
		}

		for _, paragraphNode := range xmlquery.Find(partRoot, "//w:p") {
			paragraph := DocParagraph{Part: partName}
			collectParagraphTokens(
				paragraphNode, partName, relTargets, &paragraph, document, logger,
			)
			if len(paragraph.Tokens) > 0 {
				document.Paragraphs = append(document.Paragraphs, paragraph)
			}
		}
	}

	return document, nil
}

// collectParagraphTokens walks a w:p subtree, emitting an anchor token per
// w:hyperlink and a text token per run of plain text between them.
func collectParagraphTokens(
	paragraphNode *xmlquery.Node, partName string, relTargets map[string]string,
	paragraph *DocParagraph, document *ExtractedDocument, logger Logger,
) {
	var textBuilder strings.Builder
	flushText := func() {
		if textBuilder.Len() > 0 {
			paragraph.Tokens = append(paragraph.Tokens, Token{
				Type:      TokenText,
				Text:      textBuilder.String(),
				LinkIndex: -1,
			})
			textBuilder.Reset()
		}
	}

	for child := paragraphNode.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && child.Data == "hyperlink" {
			flushText()

			label := innerText(child)
			relationId := child.SelectAttr("r:id")
			var maybeDestination *string
			if relationId != "" {
				if target, ok := relTargets[relationId]; ok {
					maybeDestination = &target
				} else {
					logger.Warn("Unresolved hyperlink relationship %s in %s", relationId, partName)
				}
			}
			// r:id absent means an internal anchor jump (w:anchor), which has no
			// external destination

			document.Links = append(document.Links, LinkRecord{
				Part:             partName,
				RelationId:       relationId,
				MaybeDestination: maybeDestination,
				Label:            label,
			})
			paragraph.Tokens = append(paragraph.Tokens, Token{
				Type:      TokenAnchor,
				Text:      label,
				LinkIndex: len(document.Links) - 1,
			})
			continue
		}

		textBuilder.WriteString(innerText(child))
	}
	flushText()
}

// innerText concatenates all w:t descendants, honoring w:br and w:tab as
// whitespace.
func innerText(node *xmlquery.Node) string {
	var builder strings.Builder
	var walk func(*xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		if n.Type == xmlquery.ElementNode {
			switch n.Data {
			case "t":
				builder.WriteString(n.InnerText())
				return
			case "br", "tab", "cr":
				builder.WriteString(" ")
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return builder.String()
}

// parseDocxRels loads word/_rels/<part>.rels and returns relationship id →
// target for external targets. A missing rels file just means the part has no
// links.
func parseDocxRels(filesByName map[string]*zip.File, partName string) (map[string]string, error) {
	targets := make(map[string]string)

	relsFile, ok := filesByName["word/_rels/"+partName+".rels"]
	if !ok {
		return targets, nil
	}

	root, err := parseZipXml(relsFile)
	if err != nil {
		return nil, err
	}

	for _, relNode := range xmlquery.Find(root, "//Relationship") {
		id := relNode.SelectAttr("Id")
		target := relNode.SelectAttr("Target")
		if id == "" || target == "" {
			continue
		}
		targets[id] = target
	}
	return targets, nil
}

func parseDocxTitle(filesByName map[string]*zip.File) string {
	coreFile, ok := filesByName["docProps/core.xml"]
	if !ok {
		return ""
	}

	root, err := parseZipXml(coreFile)
	if err != nil {
		return ""
	}

	titleNode := xmlquery.FindOne(root, "//dc:title")
	if titleNode == nil {
		return ""
	}
	return strings.TrimSpace(titleNode.InnerText())
}

func parseZipXml(file *zip.File) (*xmlquery.Node, error) {
	reader, err := file.Open()
	if err != nil {
		return nil, oops.Wrap(err)
	}
	defer reader.Close()

	root, err := xmlquery.Parse(reader)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	return root, nil
}
