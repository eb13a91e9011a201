package crawl_test

import (
	"testing"

	"github.com/fwojciec/feedgen"
	"github.com/fwojciec/feedgen/crawl"
	"github.com/fwojciec/feedgen/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractors_Extract(t *testing.T) {
	t.Parallel()

	found := func(title string) *mock.Extractor {
		return &mock.Extractor{
			ExtractFn: func(string, string) (*feedgen.ExtractResult, error) {
				return &feedgen.ExtractResult{Title: title, ContentHTML: "<p>" + title + "</p>"}, nil
			},
		}
	}
	missing := &mock.Extractor{
		ExtractFn: func(string, string) (*feedgen.ExtractResult, error) {
			return nil, feedgen.Errorf(feedgen.ENOTFOUND, "no main content")
		},
	}
	empty := &mock.Extractor{
		ExtractFn: func(string, string) (*feedgen.ExtractResult, error) {
			return &feedgen.ExtractResult{Title: "blank"}, nil
		},
	}

	t.Run("returns the first result", func(t *testing.T) {
		t.Parallel()

		result, err := crawl.Extractors{found("first"), found("second")}.Extract("<p/>", "")

		require.NoError(t, err)
		assert.Equal(t, "first", result.Title)
	})

	t.Run("falls through failures and empty content", func(t *testing.T) {
		t.Parallel()

		result, err := crawl.Extractors{missing, empty, found("third")}.Extract("<p/>", "")

		require.NoError(t, err)
		assert.Equal(t, "third", result.Title)
	})

	t.Run("stops on invalid input", func(t *testing.T) {
		t.Parallel()

		invalid := &mock.Extractor{
			ExtractFn: func(string, string) (*feedgen.ExtractResult, error) {
				return nil, feedgen.Errorf(feedgen.EINVALID, "empty HTML input")
			},
		}

		_, err := crawl.Extractors{invalid, found("second")}.Extract("", "")

		assert.Equal(t, feedgen.EINVALID, feedgen.ErrorCode(err))
	})

	t.Run("returns the last error when nothing matches", func(t *testing.T) {
		t.Parallel()

		_, err := crawl.Extractors{empty, missing}.Extract("<p/>", "")

		assert.Equal(t, feedgen.ENOTFOUND, feedgen.ErrorCode(err))
	})

	t.Run("reports not found without extractors", func(t *testing.T) {
		t.Parallel()

		_, err := crawl.Extractors(nil).Extract("<p/>", "")

		assert.Equal(t, feedgen.ENOTFOUND, feedgen.ErrorCode(err))
	})
}
