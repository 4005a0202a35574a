package compare

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlignParagraphs(t *testing.T) {
	tests := []struct {
		description string
		before      []string
		after       []string
		expected    []ParagraphOp
	}{
		{
			description: "identical lists are one equal run",
			before:      []string{"a", "b", "c"},
			after:       []string{"a", "b", "c"},
			expected: []ParagraphOp{
				{Tag: OpEqual, BeforeLo: 0, BeforeHi: 3, AfterLo: 0, AfterHi: 3},
			},
		},
		{
			description: "middle paragraph replaced",
			before:      []string{"a", "b", "c"},
			after:       []string{"a", "x", "c"},
			expected: []ParagraphOp{
				{Tag: OpEqual, BeforeLo: 0, BeforeHi: 1, AfterLo: 0, AfterHi: 1},
				{Tag: OpReplace, BeforeLo: 1, BeforeHi: 2, AfterLo: 1, AfterHi: 2},
				{Tag: OpEqual, BeforeLo: 2, BeforeHi: 3, AfterLo: 2, AfterHi: 3},
			},
		},
		{
			description: "insertion in the middle",
			before:      []string{"a", "c"},
			after:       []string{"a", "b", "c"},
			expected: []ParagraphOp{
				{Tag: OpEqual, BeforeLo: 0, BeforeHi: 1, AfterLo: 0, AfterHi: 1},
				{Tag: OpInsert, BeforeLo: 1, BeforeHi: 1, AfterLo: 1, AfterHi: 2},
				{Tag: OpEqual, BeforeLo: 1, BeforeHi: 2, AfterLo: 2, AfterHi: 3},
			},
		},
		{
			description: "deletion at the end",
			before:      []string{"a", "b"},
			after:       []string{"a"},
			expected: []ParagraphOp{
				{Tag: OpEqual, BeforeLo: 0, BeforeHi: 1, AfterLo: 0, AfterHi: 1},
				{Tag: OpDelete, BeforeLo: 1, BeforeHi: 2, AfterLo: 1, AfterHi: 1},
			},
		},
		{
			description: "empty before is one insert",
			before:      nil,
			after:       []string{"a"},
			expected: []ParagraphOp{
				{Tag: OpInsert, BeforeLo: 0, BeforeHi: 0, AfterLo: 0, AfterHi: 1},
			},
		},
		{
			description: "both empty yields no ops",
			before:      nil,
			after:       nil,
			expected:    nil,
		},
	}

	for _, tc := range tests {
		require.Equal(t, tc.expected, AlignParagraphs(tc.before, tc.after), tc.description)
	}
}

func TestAlignParagraphsManyDistinct(t *testing.T) {
	// Interned rune values skip the surrogate range, so lists larger than 0xD800
	// distinct paragraphs still align correctly.
	var before, after []string
	for i := 0; i < 0xD810; i++ {
		text := fmt.Sprintf("paragraph %d", i)
		before = append(before, text)
		after = append(after, text)
	}
	after[len(after)-1] = "changed"

	ops := AlignParagraphs(before, after)
	require.Equal(t, 2, len(ops))
	require.Equal(t, OpEqual, ops[0].Tag)
	require.Equal(t, OpReplace, ops[1].Tag)
}
