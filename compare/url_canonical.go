package compare

import (
	"net/url"
	"strings"
)

// UrlOptions controls how destinations are canonicalized before correlation.
// All flags default to off, which leaves destinations byte-for-byte intact.
type UrlOptions struct {
	IgnoreProtocol         bool
	NormalizeTrailingSlash bool
	LowercaseHost          bool
	DropTrackingParams     bool
	StripFragment          bool
}

func (o UrlOptions) IsNoop() bool {
	return o == UrlOptions{}
}

var trackingParams = map[string]bool{
	"gclid":   true,
	"fbclid":  true,
	"mc_eid":  true,
	"msclkid": true,
}

func isTrackingParam(name string) bool {
	return strings.HasPrefix(name, "utm_") || trackingParams[name]
}

// CanonicalizeUrl rewrites rawUrl per the options. Values that don't parse as
// urls (mailto fragments missing a colon, stray whitespace, plain anchors) come
// back unchanged: a destination we can't interpret should still compare equal
// to its identical twin on the other side.
func CanonicalizeUrl(rawUrl string, options UrlOptions) string {
	if options.IsNoop() || rawUrl == "" {
		return rawUrl
	}

	uri, err := url.Parse(rawUrl)
	if err != nil {
		return rawUrl
	}

	// Non-http schemes (mailto:, tel:, file:) carry no host/query semantics worth
	// normalizing.
	if uri.Scheme != "" && uri.Scheme != "http" && uri.Scheme != "https" {
		return rawUrl
	}

	if options.IgnoreProtocol {
		uri.Scheme = ""
	}

	if options.LowercaseHost && uri.Host != "" {
		uri.Host = strings.ToLower(uri.Host)
	}

	if options.DropTrackingParams && uri.RawQuery != "" {
		query := uri.Query()
		for name := range query {
			if isTrackingParam(strings.ToLower(name)) {
				query.Del(name)
			}
		}
		uri.RawQuery = query.Encode()
	}

	if options.StripFragment {
		uri.Fragment = ""
		uri.RawFragment = ""
	}

	result := uri.String()

	if options.IgnoreProtocol {
		result = strings.TrimPrefix(result, "//")
	}

	if options.NormalizeTrailingSlash {
		// Only the path slash. "https://example.com/" and "https://example.com"
		// should collide, "https://example.com/?q=1" shouldn't lose its query.
		if uri.RawQuery == "" && uri.Fragment == "" && strings.HasSuffix(result, "/") && result != "/" {
			result = strings.TrimSuffix(result, "/")
		}
	}

	return result
}

// CanonicalizeLinks rewrites every resolvable destination in place, leaving nil
// destinations nil. Correlation itself never sees the options; callers
// canonicalize both snapshots with the same options beforehand.
func CanonicalizeLinks(links []LinkRecord, options UrlOptions) []LinkRecord {
	if options.IsNoop() {
		return links
	}

	result := make([]LinkRecord, len(links))
	for i, link := range links {
		result[i] = link
		if link.MaybeDestination != nil {
			canonical := CanonicalizeUrl(*link.MaybeDestination, options)
			result[i].MaybeDestination = &canonical
		}
	}
	return result
}
