package crawl

import "github.com/fwojciec/feedgen"

// Ensure Extractors implements feedgen.Extractor at compile time.
var _ feedgen.Extractor = Extractors(nil)

// Extractors tries each extractor in order and returns the first result
// with content. When every extractor fails the last error is returned.
type Extractors []feedgen.Extractor

// Extract implements feedgen.Extractor.
func (es Extractors) Extract(html string, pageURL string) (*feedgen.ExtractResult, error) {
	err := error(feedgen.Errorf(feedgen.ENOTFOUND, "no extractor configured"))
	for _, e := range es {
		result, extractErr := e.Extract(html, pageURL)
		if extractErr != nil {
			if feedgen.ErrorCode(extractErr) == feedgen.EINVALID {
				return nil, extractErr
			}
			err = extractErr
			continue
		}
		if result.ContentHTML == "" {
			err = feedgen.Errorf(feedgen.ENOTFOUND, "no main content")
			continue
		}
		return result, nil
	}
	return nil, err
}
