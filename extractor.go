package feedgen

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages without any locators.
// It is the fallback used when an oracle-inferred post rule does not match.
type Extractor interface {
	// Extract processes raw HTML and returns the main content.
	// pageURL is used for resolving relative references and may be empty.
	Extract(html string, pageURL string) (*ExtractResult, error)
}
