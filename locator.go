package feedgen

// LocatorEngine parses HTML into queryable documents and checks locator syntax.
//
// A locator is a CSS selector string supplied by the oracle. Parsing is
// tolerant: malformed markup still yields a best-effort document.
type LocatorEngine interface {
	// Parse builds a document from raw HTML.
	Parse(html string) (Document, error)

	// Compile returns ELOCATOR if the locator is not a valid selector.
	Compile(locator string) error
}

// Document is a parsed HTML tree that locators can be resolved against.
// A Document is not safe for concurrent use.
type Document interface {
	// ResolveSingle returns the inner HTML of the first element matching
	// locator. Returns ELOCATOR on invalid syntax and ENOTFOUND when
	// nothing matches.
	ResolveSingle(locator string) (string, error)

	// ResolveText returns the whitespace-trimmed text of the first element
	// matching locator, with the same errors as ResolveSingle.
	ResolveText(locator string) (string, error)

	// ResolveList returns every element matching locator in document order.
	// An empty result is not an error.
	ResolveList(locator string) ([]Element, error)
}

// Element is a single matched node.
type Element interface {
	// Attr returns the value of the named attribute and whether it exists.
	Attr(name string) (string, bool)
}
