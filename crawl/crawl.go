// Package crawl applies oracle-inferred rules to live pages.
// It follows a feed's pagination chain, composes the fetch, classify, parse
// and locate steps into feed and post inference, and syncs a feed's posts
// into storage.
package crawl

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ComputeHash returns the xxhash of content as lowercase hex.
func ComputeHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}

// resolveURL resolves href against base. ok is false when href is blank
// or cannot be parsed.
func resolveURL(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base == nil {
		return ref.String(), true
	}
	return base.ResolveReference(ref).String(), true
}

// pageKey identifies a page for cycle detection. Fragments do not change
// the fetched document, so they are ignored.
func pageKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatBytes formats bytes in human-readable form.
func FormatBytes(bytes int) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
