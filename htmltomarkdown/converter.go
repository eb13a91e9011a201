// Package htmltomarkdown converts post HTML to Markdown.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/feedgen"
)

// Ensure Converter implements feedgen.Converter at compile time.
var _ feedgen.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms an HTML fragment into Markdown. Relative links and
// images are made absolute against baseURL when it is set.
func (c *Converter) Convert(html string, baseURL string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", feedgen.Errorf(feedgen.EINVALID, "empty HTML input")
	}

	var opts []converter.ConvertOptionFunc
	if baseURL != "" {
		opts = append(opts, converter.WithDomain(baseURL))
	}

	result, err := c.conv.ConvertString(html, opts...)
	if err != nil {
		return "", feedgen.Errorf(feedgen.EINTERNAL, "convert HTML to Markdown: %v", err)
	}

	return strings.TrimSpace(result), nil
}
