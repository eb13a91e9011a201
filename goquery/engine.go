package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/feedgen"
)

// Ensure Engine implements feedgen.LocatorEngine at compile time.
var _ feedgen.LocatorEngine = (*Engine)(nil)

// Engine resolves CSS locators against HTML documents.
//
// goquery's Find treats an invalid selector as matching nothing, so every
// locator is compiled with cascadia first to tell syntax errors apart from
// empty results.
type Engine struct{}

// NewEngine creates a new locator engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Parse builds a queryable document from raw HTML.
// Malformed markup is repaired by the HTML5 parser rather than rejected.
func (e *Engine) Parse(html string) (feedgen.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, feedgen.Errorf(feedgen.EINVALID, "failed to parse HTML: %v", err)
	}
	return &Document{doc: doc}, nil
}

// Compile returns ELOCATOR if locator is not a valid CSS selector.
func (e *Engine) Compile(locator string) error {
	_, err := compile(locator)
	return err
}

// Ensure Document implements feedgen.Document at compile time.
var _ feedgen.Document = (*Document)(nil)

// Document is a parsed HTML tree.
type Document struct {
	doc *goquery.Document
}

// ResolveSingle returns the inner HTML of the first match.
func (d *Document) ResolveSingle(locator string) (string, error) {
	sel, err := d.first(locator)
	if err != nil {
		return "", err
	}
	html, err := sel.Html()
	if err != nil {
		return "", feedgen.Errorf(feedgen.EINTERNAL, "failed to render %q: %v", locator, err)
	}
	return html, nil
}

// ResolveText returns the trimmed text content of the first match.
func (d *Document) ResolveText(locator string) (string, error) {
	sel, err := d.first(locator)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(sel.Text()), nil
}

// ResolveList returns all matches in document order.
func (d *Document) ResolveList(locator string) ([]feedgen.Element, error) {
	m, err := compile(locator)
	if err != nil {
		return nil, err
	}
	matches := d.doc.FindMatcher(m)
	elements := make([]feedgen.Element, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, Element{sel: s})
	})
	return elements, nil
}

func (d *Document) first(locator string) (*goquery.Selection, error) {
	m, err := compile(locator)
	if err != nil {
		return nil, err
	}
	sel := d.doc.FindMatcher(m).First()
	if sel.Length() == 0 {
		return nil, feedgen.Errorf(feedgen.ENOTFOUND, "locator %q matched nothing", locator)
	}
	return sel, nil
}

// Ensure Element implements feedgen.Element at compile time.
var _ feedgen.Element = Element{}

// Element is a single matched node.
type Element struct {
	sel *goquery.Selection
}

// Attr returns the named attribute of the element.
func (e Element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func compile(locator string) (cascadia.Selector, error) {
	if strings.TrimSpace(locator) == "" {
		return nil, feedgen.Errorf(feedgen.ELOCATOR, "empty locator")
	}
	sel, err := cascadia.Compile(locator)
	if err != nil {
		return nil, feedgen.Errorf(feedgen.ELOCATOR, "invalid locator %q: %v", locator, err)
	}
	return sel, nil
}
