package compare

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type DiffOptions struct {
	Text TextOptions
	Url  UrlOptions
}

type LinkStatus string

const (
	LinkUnchanged    LinkStatus = "unchanged"
	LinkAdded        LinkStatus = "added"
	LinkRemoved      LinkStatus = "removed"
	LinkChangedUrl   LinkStatus = "changed_url"
	LinkChangedLabel LinkStatus = "changed_label"
)

// LinkChange is one row of the link report, with the raw (pre-canonicalization)
// destinations for display.
type LinkChange struct {
	Part        string      `json:"part"`
	Status      LinkStatus  `json:"status"`
	BeforeLabel string      `json:"before_label,omitempty"`
	AfterLabel  string      `json:"after_label,omitempty"`
	BeforeUrl   *string     `json:"before_url"`
	AfterUrl    *string     `json:"after_url"`
	RelationIds []string    `json:"relation_ids,omitempty"`
}

type Summary struct {
	Insertions        int     `json:"insertions"`
	Deletions         int     `json:"deletions"`
	Replacements      int     `json:"replacements"`
	PercentChanged    float64 `json:"percent_changed"`
	LinksAdded        int     `json:"links_added"`
	LinksRemoved      int     `json:"links_removed"`
	LinksChangedUrl   int     `json:"links_changed_url"`
	LinksChangedLabel int     `json:"links_changed_label"`
}

type RowKind string

const (
	RowEqual   RowKind = "equal"
	RowReplace RowKind = "replace"
	RowDelete  RowKind = "delete"
	RowInsert  RowKind = "insert"
)

// DiffRow is one side-by-side row of the rendered comparison. The html
// fragments are fully escaped here so templates can emit them as-is.
type DiffRow struct {
	Kind       RowKind
	Part       string
	BeforeHtml template.HTML
	AfterHtml  template.HTML
}

type DiffReport struct {
	BeforeTitle string       `json:"before_title"`
	AfterTitle  string       `json:"after_title"`
	Summary     Summary      `json:"summary"`
	LinkChanges []LinkChange `json:"link_changes"`
	Rows        []DiffRow    `json:"-"`
}

// BuildDiff correlates the two documents' links, aligns their paragraphs and
// produces the full report. Link matching sees canonicalized destinations per
// the url options; the report rows and link table show the original values.
func BuildDiff(before *ExtractedDocument, after *ExtractedDocument, options DiffOptions) *DiffReport {
	beforeLinks := CanonicalizeLinks(before.Links, options.Url)
	afterLinks := CanonicalizeLinks(after.Links, options.Url)
	classification := CorrelateLinks(beforeLinks, afterLinks)

	beforeStatuses, afterStatuses, linkChanges :=
		mapLinkStatuses(before, after, beforeLinks, afterLinks, classification)

	report := &DiffReport{
		BeforeTitle: before.Title,
		AfterTitle:  after.Title,
		LinkChanges: linkChanges,
	}
	report.Summary.LinksAdded = len(classification.Added)
	report.Summary.LinksRemoved = len(classification.Removed)
	report.Summary.LinksChangedUrl = len(classification.ChangedUrl)
	report.Summary.LinksChangedLabel = len(classification.ChangedLabel)

	beforeKeys := paragraphKeys(before.Paragraphs, options.Text)
	afterKeys := paragraphKeys(after.Paragraphs, options.Text)
	ops := AlignParagraphs(beforeKeys, afterKeys)

	changedParagraphs := 0
	for _, op := range ops {
		switch op.Tag {
		case OpEqual:
			for offset := 0; offset < op.BeforeHi-op.BeforeLo; offset++ {
				beforeParagraph := &before.Paragraphs[op.BeforeLo+offset]
				afterParagraph := &after.Paragraphs[op.AfterLo+offset]
				report.Rows = append(report.Rows, DiffRow{
					Kind:       RowEqual,
					Part:       beforeParagraph.Part,
					BeforeHtml: renderParagraph(beforeParagraph, beforeStatuses),
					AfterHtml:  renderParagraph(afterParagraph, afterStatuses),
				})
			}
		case OpDelete:
			for i := op.BeforeLo; i < op.BeforeHi; i++ {
				report.Rows = append(report.Rows, DiffRow{
					Kind:       RowDelete,
					Part:       before.Paragraphs[i].Part,
					BeforeHtml: renderParagraph(&before.Paragraphs[i], beforeStatuses),
				})
				report.Summary.Deletions++
				changedParagraphs++
			}
		case OpInsert:
			for j := op.AfterLo; j < op.AfterHi; j++ {
				report.Rows = append(report.Rows, DiffRow{
					Kind:      RowInsert,
					Part:      after.Paragraphs[j].Part,
					AfterHtml: renderParagraph(&after.Paragraphs[j], afterStatuses),
				})
				report.Summary.Insertions++
				changedParagraphs++
			}
		case OpReplace:
			beforeCount := op.BeforeHi - op.BeforeLo
			afterCount := op.AfterHi - op.AfterLo
			paired := beforeCount
			if afterCount < paired {
				paired = afterCount
			}
			for offset := 0; offset < paired; offset++ {
				beforeParagraph := &before.Paragraphs[op.BeforeLo+offset]
				afterParagraph := &after.Paragraphs[op.AfterLo+offset]
				beforeHtml, afterHtml := renderReplacedPair(
					beforeParagraph, afterParagraph, beforeStatuses, afterStatuses,
				)
				report.Rows = append(report.Rows, DiffRow{
					Kind:       RowReplace,
					Part:       beforeParagraph.Part,
					BeforeHtml: beforeHtml,
					AfterHtml:  afterHtml,
				})
				report.Summary.Replacements++
				changedParagraphs++
			}
			for i := op.BeforeLo + paired; i < op.BeforeHi; i++ {
				report.Rows = append(report.Rows, DiffRow{
					Kind:       RowDelete,
					Part:       before.Paragraphs[i].Part,
					BeforeHtml: renderParagraph(&before.Paragraphs[i], beforeStatuses),
				})
				report.Summary.Deletions++
				changedParagraphs++
			}
			for j := op.AfterLo + paired; j < op.AfterHi; j++ {
				report.Rows = append(report.Rows, DiffRow{
					Kind:      RowInsert,
					Part:      after.Paragraphs[j].Part,
					AfterHtml: renderParagraph(&after.Paragraphs[j], afterStatuses),
				})
				report.Summary.Insertions++
				changedParagraphs++
			}
		}
	}

	totalParagraphs := len(before.Paragraphs)
	if len(after.Paragraphs) > totalParagraphs {
		totalParagraphs = len(after.Paragraphs)
	}
	if totalParagraphs > 0 {
		report.Summary.PercentChanged =
			100 * float64(changedParagraphs) / float64(totalParagraphs)
	}

	return report
}

// mapLinkStatuses translates classification buckets back to per-index statuses.
// Buckets hold record values, and duplicates are legal, so each bucket entry
// claims the first content-equal index that hasn't been claimed yet.
func mapLinkStatuses(
	before *ExtractedDocument, after *ExtractedDocument,
	beforeCanonical []LinkRecord, afterCanonical []LinkRecord,
	classification Classification,
) (beforeStatuses []LinkStatus, afterStatuses []LinkStatus, changes []LinkChange) {
	beforeStatuses = make([]LinkStatus, len(beforeCanonical))
	afterStatuses = make([]LinkStatus, len(afterCanonical))
	for i := range beforeStatuses {
		beforeStatuses[i] = LinkUnchanged
	}
	for j := range afterStatuses {
		afterStatuses[j] = LinkUnchanged
	}

	claimIndex := func(records []LinkRecord, statuses []LinkStatus, record LinkRecord) int {
		for i := range records {
			if statuses[i] == LinkUnchanged && records[i] == record {
				return i
			}
		}
		return -1
	}

	for _, record := range classification.Removed {
		i := claimIndex(beforeCanonical, beforeStatuses, record)
		if i < 0 {
			continue
		}
		beforeStatuses[i] = LinkRemoved
		changes = append(changes, LinkChange{
			Part:        record.Part,
			Status:      LinkRemoved,
			BeforeLabel: record.Label,
			BeforeUrl:   before.Links[i].MaybeDestination,
			RelationIds: relationIds(record.RelationId),
		})
	}
	for _, record := range classification.Added {
		j := claimIndex(afterCanonical, afterStatuses, record)
		if j < 0 {
			continue
		}
		afterStatuses[j] = LinkAdded
		changes = append(changes, LinkChange{
			Part:        record.Part,
			Status:      LinkAdded,
			AfterLabel:  record.Label,
			AfterUrl:    after.Links[j].MaybeDestination,
			RelationIds: relationIds(record.RelationId),
		})
	}
	for _, pair := range classification.ChangedUrl {
		i := claimIndex(beforeCanonical, beforeStatuses, pair.Before)
		j := claimIndex(afterCanonical, afterStatuses, pair.After)
		if i < 0 || j < 0 {
			continue
		}
		beforeStatuses[i] = LinkChangedUrl
		afterStatuses[j] = LinkChangedUrl
		changes = append(changes, LinkChange{
			Part:        pair.Before.Part,
			Status:      LinkChangedUrl,
			BeforeLabel: pair.Before.Label,
			AfterLabel:  pair.After.Label,
			BeforeUrl:   before.Links[i].MaybeDestination,
			AfterUrl:    after.Links[j].MaybeDestination,
			RelationIds: relationIds(pair.Before.RelationId, pair.After.RelationId),
		})
	}
	for _, pair := range classification.ChangedLabel {
		i := claimIndex(beforeCanonical, beforeStatuses, pair.Before)
		j := claimIndex(afterCanonical, afterStatuses, pair.After)
		if i < 0 || j < 0 {
			continue
		}
		beforeStatuses[i] = LinkChangedLabel
		afterStatuses[j] = LinkChangedLabel
		changes = append(changes, LinkChange{
			Part:        pair.Before.Part,
			Status:      LinkChangedLabel,
			BeforeLabel: pair.Before.Label,
			AfterLabel:  pair.After.Label,
			BeforeUrl:   before.Links[i].MaybeDestination,
			AfterUrl:    after.Links[j].MaybeDestination,
			RelationIds: relationIds(pair.Before.RelationId, pair.After.RelationId),
		})
	}

	return beforeStatuses, afterStatuses, changes
}

func relationIds(ids ...string) []string {
	var result []string
	for _, id := range ids {
		if id != "" {
			result = append(result, id)
		}
	}
	return result
}

// paragraphKeys produces the comparison key per paragraph: part prefix plus
// normalized text. The part prefix keeps the aligner from matching a body
// paragraph against an identical footer paragraph.
func paragraphKeys(paragraphs []DocParagraph, options TextOptions) []string {
	keys := make([]string, len(paragraphs))
	for i := range paragraphs {
		keys[i] = paragraphs[i].Part + "\x00" + NormalizeText(paragraphs[i].Text(), options)
	}
	return keys
}

var linkStatusClasses = map[LinkStatus]string{
	LinkAdded:        "link-added",
	LinkRemoved:      "link-removed",
	LinkChangedUrl:   "link-changed-url",
	LinkChangedLabel: "link-changed-label",
}

func renderParagraph(paragraph *DocParagraph, statuses []LinkStatus) template.HTML {
	var builder strings.Builder
	for i, token := range paragraph.Tokens {
		if i > 0 {
			builder.WriteString(" ")
		}
		writeToken(&builder, token, statuses)
	}
	return template.HTML(builder.String())
}

func writeToken(builder *strings.Builder, token Token, statuses []LinkStatus) {
	escaped := template.HTMLEscapeString(token.Text)
	if token.Type != TokenAnchor {
		builder.WriteString(escaped)
		return
	}

	status := LinkUnchanged
	if token.LinkIndex >= 0 && token.LinkIndex < len(statuses) {
		status = statuses[token.LinkIndex]
	}
	if class, ok := linkStatusClasses[status]; ok {
		fmt.Fprintf(builder, `<span class="anchor %s">%s</span>`, class, escaped)
	} else {
		fmt.Fprintf(builder, `<span class="anchor">%s</span>`, escaped)
	}
}

// renderReplacedPair runs a word diff over the two paragraphs' plain text and
// wraps removed regions in <del> on the left, inserted regions in <ins> on the
// right. Anchors are rendered as placeholders in the diffed text so their
// status highlighting survives intact.
func renderReplacedPair(
	beforeParagraph *DocParagraph, afterParagraph *DocParagraph,
	beforeStatuses []LinkStatus, afterStatuses []LinkStatus,
) (template.HTML, template.HTML) {
	beforeText, beforeAnchors := placeholderText(beforeParagraph)
	afterText, afterAnchors := placeholderText(afterParagraph)
	diffs := DiffWords(beforeText, afterText)

	var beforeBuilder, afterBuilder strings.Builder
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			writeDiffText(&beforeBuilder, diff.Text, beforeAnchors, beforeStatuses, "")
			writeDiffText(&afterBuilder, diff.Text, afterAnchors, afterStatuses, "")
		case diffmatchpatch.DiffDelete:
			writeDiffText(&beforeBuilder, diff.Text, beforeAnchors, beforeStatuses, "del")
		case diffmatchpatch.DiffInsert:
			writeDiffText(&afterBuilder, diff.Text, afterAnchors, afterStatuses, "ins")
		}
	}
	return template.HTML(beforeBuilder.String()), template.HTML(afterBuilder.String())
}

// placeholderText flattens a paragraph to plain text with [[ANCHOR-i]] markers
// standing in for anchor tokens, and returns the anchor tokens by marker index.
func placeholderText(paragraph *DocParagraph) (string, []Token) {
	var parts []string
	var anchors []Token
	for _, token := range paragraph.Tokens {
		if token.Type == TokenAnchor {
			parts = append(parts, fmt.Sprintf("[[ANCHOR-%d]]", len(anchors)))
			anchors = append(anchors, token)
		} else if token.Text != "" {
			parts = append(parts, token.Text)
		}
	}
	return strings.Join(parts, " "), anchors
}

var anchorPlaceholderPrefix = "[[ANCHOR-"

func writeDiffText(
	builder *strings.Builder, text string, anchors []Token, statuses []LinkStatus, wrapTag string,
) {
	if wrapTag != "" {
		fmt.Fprintf(builder, "<%s>", wrapTag)
	}

	remaining := text
	for {
		start := strings.Index(remaining, anchorPlaceholderPrefix)
		if start < 0 {
			builder.WriteString(template.HTMLEscapeString(remaining))
			break
		}
		end := strings.Index(remaining[start:], "]]")
		if end < 0 {
			builder.WriteString(template.HTMLEscapeString(remaining))
			break
		}
		end += start + len("]]")

		builder.WriteString(template.HTMLEscapeString(remaining[:start]))

		var anchorIndex int
		_, err := fmt.Sscanf(remaining[start:end], "[[ANCHOR-%d]]", &anchorIndex)
		if err == nil && anchorIndex >= 0 && anchorIndex < len(anchors) {
			writeToken(builder, anchors[anchorIndex], statuses)
		} else {
			// A placeholder the word diff split mid-marker renders as-is
			builder.WriteString(template.HTMLEscapeString(remaining[start:end]))
		}
		remaining = remaining[end:]
	}

	if wrapTag != "" {
		fmt.Fprintf(builder, "</%s>", wrapTag)
	}
}
