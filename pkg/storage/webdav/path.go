package webdav

import (
	"net/url"
	"strings"
)

// hrefToPath converts an href from a multistatus response into a normalized
// account-relative path.
//
// Servers return hrefs inconsistently: absolute vs relative, percent-encoded,
// with or without the account base path. This percent-decodes the href, takes
// its URL path component, and strips the base API URL's path component when
// it is a prefix. The empty result normalizes to "/".
//
// The prefix comparison is a plain string prefix test on slash-trimmed paths,
// not a path-segment-aware match; a base path that is a lexical prefix of a
// sibling path would be mis-stripped.
func hrefToPath(href, baseAPIURL string) string {
	unquoted, err := url.PathUnescape(href)
	if err != nil {
		unquoted = href
	}

	hrefPath := unquoted
	if parsed, err := url.Parse(unquoted); err == nil {
		hrefPath = parsed.Path
	}
	hrefPath = strings.TrimLeft(hrefPath, "/")

	basePath := ""
	if parsed, err := url.Parse(baseAPIURL); err == nil {
		basePath = strings.Trim(parsed.Path, "/")
	}

	path := hrefPath
	if strings.HasPrefix(hrefPath, basePath) {
		path = hrefPath[len(basePath):]
	}

	path = strings.Trim(path, "/")
	if path == "" {
		return "/"
	}
	return path
}

// stripAbsolutePath builds the on-wire request path from an item path by
// removing leading slashes.
func stripAbsolutePath(path string) string {
	return strings.TrimLeft(path, "/")
}

// lastPathSegment returns the last non-empty segment of a slash-delimited
// path, used as the item name when no display name is available.
func lastPathSegment(path string) string {
	trimmed := strings.TrimRight(path, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
