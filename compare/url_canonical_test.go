package compare

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalizeUrl(t *testing.T) {
	allOptions := UrlOptions{
		IgnoreProtocol:         true,
		NormalizeTrailingSlash: true,
		LowercaseHost:          true,
		DropTrackingParams:     true,
		StripFragment:          true,
	}

	tests := []struct {
		description string
		url         string
		options     UrlOptions
		expected    string
	}{
		{
			description: "noop options leave the url alone",
			url:         "HTTPS://Example.COM/Path/?utm_source=x#frag",
			options:     UrlOptions{},
			expected:    "HTTPS://Example.COM/Path/?utm_source=x#frag",
		},
		{
			description: "ignore protocol drops the scheme",
			url:         "https://example.com/page",
			options:     UrlOptions{IgnoreProtocol: true},
			expected:    "example.com/page",
		},
		{
			description: "http and https collapse to the same form",
			url:         "http://example.com/page",
			options:     UrlOptions{IgnoreProtocol: true},
			expected:    "example.com/page",
		},
		{
			description: "lowercase host leaves the path case alone",
			url:         "https://EXAMPLE.com/CaseSensitivePath",
			options:     UrlOptions{LowercaseHost: true},
			expected:    "https://example.com/CaseSensitivePath",
		},
		{
			description: "trailing slash trimmed from plain path",
			url:         "https://example.com/docs/",
			options:     UrlOptions{NormalizeTrailingSlash: true},
			expected:    "https://example.com/docs",
		},
		{
			description: "trailing slash kept when a query follows",
			url:         "https://example.com/docs/?q=1",
			options:     UrlOptions{NormalizeTrailingSlash: true},
			expected:    "https://example.com/docs/?q=1",
		},
		{
			description: "utm and click ids dropped, real params kept",
			url:         "https://example.com/p?utm_source=news&id=7&fbclid=abc&gclid=xyz",
			options:     UrlOptions{DropTrackingParams: true},
			expected:    "https://example.com/p?id=7",
		},
		{
			description: "fragment stripped",
			url:         "https://example.com/page#section-3",
			options:     UrlOptions{StripFragment: true},
			expected:    "https://example.com/page",
		},
		{
			description: "mailto urls pass through untouched",
			url:         "mailto:Someone@Example.com",
			options:     allOptions,
			expected:    "mailto:Someone@Example.com",
		},
		{
			description: "unparseable value passes through untouched",
			url:         "http://exa mple.com/%zz",
			options:     allOptions,
			expected:    "http://exa mple.com/%zz",
		},
		{
			description: "all options together",
			url:         "HTTP://Example.COM/docs/?utm_campaign=x#top",
			options:     allOptions,
			expected:    "example.com/docs",
		},
	}

	for _, tc := range tests {
		require.Equal(t, tc.expected, CanonicalizeUrl(tc.url, tc.options), tc.description)
	}
}

func TestCanonicalizeLinks(t *testing.T) {
	options := UrlOptions{StripFragment: true}
	links := []LinkRecord{
		link("p", "https://example.com/page#x", "click"),
		nilDestLink("p", "anchor only"),
	}

	result := CanonicalizeLinks(links, options)

	require.Equal(t, "https://example.com/page", *result[0].MaybeDestination)
	require.Nil(t, result[1].MaybeDestination)
	// Input untouched
	require.Equal(t, "https://example.com/page#x", *links[0].MaybeDestination)
}
