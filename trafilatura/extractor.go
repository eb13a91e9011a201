// Package trafilatura extracts the main content of a post page without
// locators. It backs the post fallback path when a rule does not match.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/feedgen"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements feedgen.Extractor at compile time.
var _ feedgen.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
// Returns ENOTFOUND when no content could be identified.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*feedgen.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, feedgen.Errorf(feedgen.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}
	if pageURL != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, feedgen.Errorf(feedgen.EINVALID, "invalid page URL %q: %v", pageURL, err)
		}
		opts.OriginalURL = u
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, feedgen.Errorf(feedgen.ENOTFOUND, "no main content: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, feedgen.Errorf(feedgen.EINTERNAL, "render content: %v", err)
		}
	}

	return &feedgen.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
