// Package readability extracts post content with Mozilla's Readability
// heuristics. It is the last resort after trafilatura finds nothing.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/feedgen"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements feedgen.Extractor at compile time.
var _ feedgen.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
// Relative links in the content are resolved against pageURL.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*feedgen.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, feedgen.Errorf(feedgen.EINVALID, "empty HTML input")
	}

	var u *url.URL
	if pageURL != "" {
		var err error
		if u, err = url.Parse(pageURL); err != nil {
			return nil, feedgen.Errorf(feedgen.EINVALID, "invalid page URL %q: %v", pageURL, err)
		}
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), u)
	if err != nil {
		return nil, feedgen.Errorf(feedgen.ENOTFOUND, "no readable content: %v", err)
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, feedgen.Errorf(feedgen.ENOTFOUND, "no readable content")
	}

	return &feedgen.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
