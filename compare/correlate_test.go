package compare

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func link(part, destination, label string) LinkRecord {
	return LinkRecord{
		Part:             part,
		MaybeDestination: &destination,
		Label:            label,
	}
}

func nilDestLink(part, label string) LinkRecord {
	return LinkRecord{
		Part:  part,
		Label: label,
	}
}

func TestCorrelateLinks(t *testing.T) {
	tests := []struct {
		description          string
		before               []LinkRecord
		after                []LinkRecord
		expectedAdded        []LinkRecord
		expectedRemoved      []LinkRecord
		expectedChangedUrl   []ChangedPair
		expectedChangedLabel []ChangedPair
	}{
		{
			description: "empty inputs",
		},
		{
			description: "identical snapshots produce no changes",
			before: []LinkRecord{
				link("document.xml", "http://a.com", "click"),
				link("header1.xml", "http://b.com", "here"),
			},
			after: []LinkRecord{
				link("document.xml", "http://a.com", "click"),
				link("header1.xml", "http://b.com", "here"),
			},
		},
		{
			description: "label-stable url rename",
			before: []LinkRecord{
				link("document.xml", "http://a.com", "click"),
			},
			after: []LinkRecord{
				link("document.xml", "http://b.com", "click"),
			},
			expectedChangedUrl: []ChangedPair{
				{
					Before: link("document.xml", "http://a.com", "click"),
					After:  link("document.xml", "http://b.com", "click"),
				},
			},
		},
		{
			description: "url-stable label rename",
			before: []LinkRecord{
				link("document.xml", "http://a.com", "old"),
			},
			after: []LinkRecord{
				link("document.xml", "http://a.com", "new"),
			},
			expectedChangedLabel: []ChangedPair{
				{
					Before: link("document.xml", "http://a.com", "old"),
					After:  link("document.xml", "http://a.com", "new"),
				},
			},
		},
		{
			description: "pure addition",
			after: []LinkRecord{
				link("document.xml", "http://a.com", "new"),
			},
			expectedAdded: []LinkRecord{
				link("document.xml", "http://a.com", "new"),
			},
		},
		{
			description: "pure removal",
			before: []LinkRecord{
				link("document.xml", "http://a.com", "gone"),
			},
			expectedRemoved: []LinkRecord{
				link("document.xml", "http://a.com", "gone"),
			},
		},
		{
			description: "duplicate labels, one true match one url change",
			before: []LinkRecord{
				link("p", "x", "L"),
				link("p", "y", "L"),
			},
			after: []LinkRecord{
				link("p", "x", "L"),
				link("p", "z", "L"),
			},
			expectedChangedUrl: []ChangedPair{
				{
					Before: link("p", "y", "L"),
					After:  link("p", "z", "L"),
				},
			},
		},
		{
			description: "labels compare whitespace-normalized",
			before: []LinkRecord{
				link("document.xml", "http://a.com", "  click \t here "),
			},
			after: []LinkRecord{
				link("document.xml", "http://b.com", "click here"),
			},
			expectedChangedUrl: []ChangedPair{
				{
					Before: link("document.xml", "http://a.com", "  click \t here "),
					After:  link("document.xml", "http://b.com", "click here"),
				},
			},
		},
		{
			description: "absent destination matches empty destination",
			before: []LinkRecord{
				nilDestLink("document.xml", "anchor"),
			},
			after: []LinkRecord{
				link("document.xml", "", "anchor"),
			},
		},
		{
			description: "same content in different parts never matches",
			before: []LinkRecord{
				link("document.xml", "http://a.com", "click"),
			},
			after: []LinkRecord{
				link("footer1.xml", "http://a.com", "click"),
			},
			expectedAdded: []LinkRecord{
				link("footer1.xml", "http://a.com", "click"),
			},
			expectedRemoved: []LinkRecord{
				link("document.xml", "http://a.com", "click"),
			},
		},
		{
			description: "url-stable group pairs labels positionally",
			before: []LinkRecord{
				link("p", "http://a.com", "first"),
				link("p", "http://a.com", "second"),
			},
			after: []LinkRecord{
				link("p", "http://a.com", "uno"),
				link("p", "http://a.com", "dos"),
			},
			expectedChangedLabel: []ChangedPair{
				{
					Before: link("p", "http://a.com", "first"),
					After:  link("p", "http://a.com", "uno"),
				},
				{
					Before: link("p", "http://a.com", "second"),
					After:  link("p", "http://a.com", "dos"),
				},
			},
		},
		{
			description: "leftover beyond shorter side becomes added",
			before: []LinkRecord{
				link("p", "http://a.com", "first"),
			},
			after: []LinkRecord{
				link("p", "http://a.com", "uno"),
				link("p", "http://a.com", "dos"),
			},
			expectedChangedLabel: []ChangedPair{
				{
					Before: link("p", "http://a.com", "first"),
					After:  link("p", "http://a.com", "uno"),
				},
			},
			expectedAdded: []LinkRecord{
				link("p", "http://a.com", "dos"),
			},
		},
		{
			description: "true destination match wins over discovery order",
			before: []LinkRecord{
				link("p", "http://a.com", "L"),
			},
			after: []LinkRecord{
				link("p", "http://b.com", "L"),
				link("p", "http://a.com", "L"),
			},
			expectedAdded: []LinkRecord{
				link("p", "http://b.com", "L"),
			},
		},
		{
			description: "url change pairs by discovery order, not best fit",
			before: []LinkRecord{
				link("p", "http://a.com", "L"),
			},
			after: []LinkRecord{
				link("p", "http://b.com", "L"),
				link("p", "http://c.com", "L"),
			},
			expectedChangedUrl: []ChangedPair{
				{
					Before: link("p", "http://a.com", "L"),
					After:  link("p", "http://b.com", "L"),
				},
			},
			expectedAdded: []LinkRecord{
				link("p", "http://c.com", "L"),
			},
		},
		{
			description: "relation ids don't participate in matching",
			before: []LinkRecord{
				{Part: "p", RelationId: "rId3", MaybeDestination: ptr("http://a.com"), Label: "click"},
			},
			after: []LinkRecord{
				{Part: "p", RelationId: "rId7", MaybeDestination: ptr("http://a.com"), Label: "click"},
			},
		},
	}

	for _, tc := range tests {
		result := CorrelateLinks(tc.before, tc.after)
		require.Equal(t, tc.expectedAdded, result.Added, tc.description)
		require.Equal(t, tc.expectedRemoved, result.Removed, tc.description)
		require.Equal(t, tc.expectedChangedUrl, result.ChangedUrl, tc.description)
		require.Equal(t, tc.expectedChangedLabel, result.ChangedLabel, tc.description)
	}
}

func TestCorrelateLinksCompleteness(t *testing.T) {
	before := []LinkRecord{
		link("p", "x", "L"),
		link("p", "y", "L"),
		link("p", "z", "M"),
		nilDestLink("p", "N"),
		link("q", "x", "L"),
	}
	after := []LinkRecord{
		link("p", "x", "L"),
		link("p", "w", "L"),
		link("p", "z", "M renamed"),
		link("q", "v", "O"),
	}

	result := CorrelateLinks(before, after)

	reported := len(result.Added) + len(result.Removed) +
		2*len(result.ChangedUrl) + 2*len(result.ChangedLabel)
	trueMatches := (len(before) + len(after) - reported) / 2
	require.Equal(t, len(before)+len(after), reported+2*trueMatches)

	// Every before record lands in exactly one bucket
	beforeAccounted := len(result.Removed) + len(result.ChangedUrl) + len(result.ChangedLabel) + trueMatches
	require.Equal(t, len(before), beforeAccounted)
	afterAccounted := len(result.Added) + len(result.ChangedUrl) + len(result.ChangedLabel) + trueMatches
	require.Equal(t, len(after), afterAccounted)
}

func TestCorrelateLinksSwapSymmetry(t *testing.T) {
	before := []LinkRecord{
		link("p", "x", "L"),
		link("p", "y", "L"),
		link("p", "z", "M"),
	}
	after := []LinkRecord{
		link("p", "x", "L"),
		link("p", "w", "L"),
		link("q", "u", "N"),
	}

	forward := CorrelateLinks(before, after)
	backward := CorrelateLinks(after, before)

	// Pairing choices may differ under ties, so compare bucket membership as
	// sets rather than exact pair identity.
	require.ElementsMatch(t, forward.Added, backward.Removed)
	require.ElementsMatch(t, forward.Removed, backward.Added)
	require.Equal(t, len(forward.ChangedUrl), len(backward.ChangedUrl))
	require.Equal(t, len(forward.ChangedLabel), len(backward.ChangedLabel))
	for i, pair := range backward.ChangedUrl {
		require.Equal(t, forward.ChangedUrl[i].Before, pair.After)
		require.Equal(t, forward.ChangedUrl[i].After, pair.Before)
	}
}

func ptr(value string) *string {
	return &value
}
