package compare

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

type OpTag int

const (
	OpEqual OpTag = iota
	OpReplace
	OpDelete
	OpInsert
)

// ParagraphOp is one aligned region between the two paragraph lists, expressed
// as half-open index ranges. For OpDelete the after range is empty, for
// OpInsert the before range is empty, for OpReplace both are non-empty and get
// diffed word by word downstream.
type ParagraphOp struct {
	Tag      OpTag
	BeforeLo int
	BeforeHi int
	AfterLo  int
	AfterHi  int
}

// AlignParagraphs computes an edit script between two paragraph lists, treating
// each paragraph as an atomic unit. Paragraphs are interned into runes so the
// whole alignment is a single character-level diff over two short strings.
func AlignParagraphs(before []string, after []string) []ParagraphOp {
	interner := newParagraphInterner()
	beforeRunes := interner.Intern(before)
	afterRunes := interner.Intern(after)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(beforeRunes, afterRunes, false)

	var ops []ParagraphOp
	beforePos := 0
	afterPos := 0
	for _, diff := range diffs {
		length := len([]rune(diff.Text))
		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			ops = append(ops, ParagraphOp{
				Tag:      OpEqual,
				BeforeLo: beforePos,
				BeforeHi: beforePos + length,
				AfterLo:  afterPos,
				AfterHi:  afterPos + length,
			})
			beforePos += length
			afterPos += length
		case diffmatchpatch.DiffDelete:
			ops = append(ops, ParagraphOp{
				Tag:      OpDelete,
				BeforeLo: beforePos,
				BeforeHi: beforePos + length,
				AfterLo:  afterPos,
				AfterHi:  afterPos,
			})
			beforePos += length
		case diffmatchpatch.DiffInsert:
			ops = append(ops, ParagraphOp{
				Tag:      OpInsert,
				BeforeLo: beforePos,
				BeforeHi: beforePos,
				AfterLo:  afterPos,
				AfterHi:  afterPos + length,
			})
			afterPos += length
		}
	}

	return mergeReplacements(ops)
}

// mergeReplacements folds adjacent delete+insert (or insert+delete) pairs into
// a single replace op so the renderer can pair the paragraphs side by side.
func mergeReplacements(ops []ParagraphOp) []ParagraphOp {
	var merged []ParagraphOp
	for _, op := range ops {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if last.Tag == OpDelete && op.Tag == OpInsert {
				last.Tag = OpReplace
				last.AfterLo = op.AfterLo
				last.AfterHi = op.AfterHi
				continue
			}
			if last.Tag == OpInsert && op.Tag == OpDelete {
				last.Tag = OpReplace
				last.BeforeLo = op.BeforeLo
				last.BeforeHi = op.BeforeHi
				continue
			}
		}
		merged = append(merged, op)
	}
	return merged
}

// paragraphInterner assigns each distinct paragraph a rune so paragraph lists
// can be diffed as rune slices. Rune values skip the utf-16 surrogate range,
// which the diff library's string round trip would mangle.
type paragraphInterner struct {
	runeByText map[string]rune
	next       rune
}

func newParagraphInterner() *paragraphInterner {
	return &paragraphInterner{
		runeByText: map[string]rune{},
		next:       1,
	}
}

func (in *paragraphInterner) Intern(paragraphs []string) []rune {
	runes := make([]rune, len(paragraphs))
	for i, text := range paragraphs {
		r, ok := in.runeByText[text]
		if !ok {
			r = in.next
			in.next++
			if in.next == 0xD800 {
				in.next = 0xE000
			}
			in.runeByText[text] = r
		}
		runes[i] = r
	}
	return runes
}

// DiffWords produces a word-level diff of two paragraph texts with semantic
// cleanup, so changed regions snap to word boundaries instead of arbitrary
// character offsets.
func DiffWords(before string, after string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	return dmp.DiffCleanupSemantic(diffs)
}
