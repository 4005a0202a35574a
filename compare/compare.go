package compare

import (
	"bytes"
	"docdiff/oops"
	"path/filepath"
	"strings"
)

// InputFile is one uploaded document, already buffered. Filename drives format
// dispatch and the title fallback.
type InputFile struct {
	Filename string
	Content  []byte
}

// PerformComparison parses both documents and builds the full diff report.
// Supported formats are docx and html, dispatched on the file extension. The
// two files may be of different formats; link correlation only looks at the
// extracted records.
func PerformComparison(
	beforeFile InputFile, afterFile InputFile, options DiffOptions, logger Logger,
) (*DiffReport, error) {
	beforeDocument, err := parseInput(beforeFile, logger)
	if err != nil {
		return nil, err
	}
	afterDocument, err := parseInput(afterFile, logger)
	if err != nil {
		return nil, err
	}

	logger.Info(
		"Extracted %d/%d paragraphs, %d/%d links",
		len(beforeDocument.Paragraphs), len(afterDocument.Paragraphs),
		len(beforeDocument.Links), len(afterDocument.Links),
	)

	return BuildDiff(beforeDocument, afterDocument, options), nil
}

func parseInput(file InputFile, logger Logger) (*ExtractedDocument, error) {
	var document *ExtractedDocument
	var err error
	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".docx":
		document, err = ParseDocx(
			bytes.NewReader(file.Content), int64(len(file.Content)), logger,
		)
	case ".html", ".htm":
		document, err = ParseHtml(bytes.NewReader(file.Content), logger)
	default:
		return nil, oops.Newf("unsupported file format: %s", file.Filename)
	}
	if err != nil {
		return nil, err
	}

	if document.Title == "" {
		document.Title = file.Filename
	}
	return document, nil
}
