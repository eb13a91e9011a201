package mock

import "github.com/fwojciec/feedgen"

var _ feedgen.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of feedgen.Extractor.
type Extractor struct {
	ExtractFn func(html string, pageURL string) (*feedgen.ExtractResult, error)
}

func (e *Extractor) Extract(html string, pageURL string) (*feedgen.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}
