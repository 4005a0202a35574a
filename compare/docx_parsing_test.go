package compare

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, files map[string]string) *bytes.Reader {
	var buffer bytes.Buffer
	writer := zip.NewWriter(&buffer)
	for name, content := range files {
		entry, err := writer.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return bytes.NewReader(buffer.Bytes())
}

const docxDocumentXml = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
            xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <w:body>
    <w:p>
      <w:r><w:t>Visit </w:t></w:r>
      <w:hyperlink r:id="rId4">
        <w:r><w:t>our</w:t></w:r>
        <w:r><w:t xml:space="preserve"> site</w:t></w:r>
      </w:hyperlink>
      <w:r><w:t xml:space="preserve"> today.</w:t></w:r>
    </w:p>
    <w:p>
      <w:hyperlink w:anchor="section2">
        <w:r><w:t>jump inside</w:t></w:r>
      </w:hyperlink>
    </w:p>
    <w:p>
      <w:hyperlink r:id="rId99">
        <w:r><w:t>dangling</w:t></w:r>
      </w:hyperlink>
    </w:p>
  </w:body>
</w:document>`

const docxDocumentRels = `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId4" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com/" TargetMode="External"/>
</Relationships>`

const docxFooterXml = `<?xml version="1.0"?>
<w:ftr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
       xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <w:p>
    <w:hyperlink r:id="rId1">
      <w:r><w:t>footer link</w:t></w:r>
    </w:hyperlink>
  </w:p>
</w:ftr>`

const docxFooterRels = `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com/footer" TargetMode="External"/>
</Relationships>`

const docxCoreXml = `<?xml version="1.0"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
                   xmlns:dc="http://purl.org/dc/elements/1.1/">
  <dc:title>Quarterly Report</dc:title>
</cp:coreProperties>`

func TestParseDocx(t *testing.T) {
	reader := buildDocx(t, map[string]string{
		"word/document.xml":            docxDocumentXml,
		"word/_rels/document.xml.rels": docxDocumentRels,
		"word/footer1.xml":             docxFooterXml,
		"word/_rels/footer1.xml.rels":  docxFooterRels,
		"docProps/core.xml":            docxCoreXml,
		"[Content_Types].xml":          `<?xml version="1.0"?><Types/>`,
	})

	document, err := ParseDocx(reader, reader.Size(), &DummyLogger{})
	require.NoError(t, err)

	require.Equal(t, "Quarterly Report", document.Title)

	require.Equal(t, 4, len(document.Links))

	resolved := document.Links[0]
	require.Equal(t, "document.xml", resolved.Part)
	require.Equal(t, "rId4", resolved.RelationId)
	require.Equal(t, "https://example.com/", *resolved.MaybeDestination)
	require.Equal(t, "our site", resolved.Label)

	internal := document.Links[1]
	require.Equal(t, "", internal.RelationId)
	require.Nil(t, internal.MaybeDestination)
	require.Equal(t, "jump inside", internal.Label)

	dangling := document.Links[2]
	require.Equal(t, "rId99", dangling.RelationId)
	require.Nil(t, dangling.MaybeDestination)

	footer := document.Links[3]
	require.Equal(t, "footer1.xml", footer.Part)
	require.Equal(t, "https://example.com/footer", *footer.MaybeDestination)

	require.Equal(t, 4, len(document.Paragraphs))
	first := document.Paragraphs[0]
	require.Equal(t, "document.xml", first.Part)
	require.Equal(t, "Visit  our site  today.", first.Text())
	require.Equal(t, TokenAnchor, first.Tokens[1].Type)
	require.Equal(t, 0, first.Tokens[1].LinkIndex)
	require.Equal(t, "footer1.xml", document.Paragraphs[3].Part)
}

func TestParseDocxNotADocx(t *testing.T) {
	reader := buildDocx(t, map[string]string{
		"mimetype": "application/epub+zip",
	})

	_, err := ParseDocx(reader, reader.Size(), &DummyLogger{})
	require.Error(t, err)
}
