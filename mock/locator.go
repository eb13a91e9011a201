package mock

import "github.com/fwojciec/feedgen"

var _ feedgen.LocatorEngine = (*LocatorEngine)(nil)

// LocatorEngine is a mock implementation of feedgen.LocatorEngine.
type LocatorEngine struct {
	ParseFn   func(html string) (feedgen.Document, error)
	CompileFn func(locator string) error
}

func (e *LocatorEngine) Parse(html string) (feedgen.Document, error) {
	return e.ParseFn(html)
}

func (e *LocatorEngine) Compile(locator string) error {
	return e.CompileFn(locator)
}

var _ feedgen.Document = (*Document)(nil)

// Document is a mock implementation of feedgen.Document.
type Document struct {
	ResolveSingleFn func(locator string) (string, error)
	ResolveTextFn   func(locator string) (string, error)
	ResolveListFn   func(locator string) ([]feedgen.Element, error)
}

func (d *Document) ResolveSingle(locator string) (string, error) {
	return d.ResolveSingleFn(locator)
}

func (d *Document) ResolveText(locator string) (string, error) {
	return d.ResolveTextFn(locator)
}

func (d *Document) ResolveList(locator string) ([]feedgen.Element, error) {
	return d.ResolveListFn(locator)
}

var _ feedgen.Element = Element(nil)

// Element is a mock implementation of feedgen.Element backed by an
// attribute map.
type Element map[string]string

func (e Element) Attr(name string) (string, bool) {
	v, ok := e[name]
	return v, ok
}
