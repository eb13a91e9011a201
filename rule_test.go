package feedgen_test

import (
	"testing"

	"github.com/fwojciec/feedgen"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestParseRule_FeedStructureRule(t *testing.T) {
	t.Parallel()

	t.Run("decodes all fields", func(t *testing.T) {
		t.Parallel()

		raw := `{"title":{"locator":"h1.blog-title"},"author":null,"description":"Notes on Go",` +
			`"postListLocator":"article h2 a","postLinkAttribute":"href","nextPageLocator":"a.next"}`

		rule, err := feedgen.ParseRule[feedgen.FeedStructureRule](raw)

		require.NoError(t, err)
		want := &feedgen.FeedStructureRule{
			Title:             &feedgen.Scalar{Locator: "h1.blog-title"},
			Description:       &feedgen.Scalar{Value: "Notes on Go"},
			PostListLocator:   "article h2 a",
			PostLinkAttribute: "href",
			NextPageLocator:   ptr("a.next"),
		}
		if diff := cmp.Diff(want, rule); diff != "" {
			t.Errorf("rule mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("absent optional fields decode as nil", func(t *testing.T) {
		t.Parallel()

		rule, err := feedgen.ParseRule[feedgen.FeedStructureRule](`{"postListLocator":"li a","postLinkAttribute":"href"}`)

		require.NoError(t, err)
		assert.Nil(t, rule.Title)
		assert.Nil(t, rule.Author)
		assert.Nil(t, rule.Description)
		assert.Nil(t, rule.NextPageLocator)
	})

	t.Run("blank optional fields are normalized to nil", func(t *testing.T) {
		t.Parallel()

		rule, err := feedgen.ParseRule[feedgen.FeedStructureRule](
			`{"postListLocator":"li a","postLinkAttribute":"href","nextPageLocator":"  ","author":""}`)

		require.NoError(t, err)
		assert.Nil(t, rule.NextPageLocator)
		assert.Nil(t, rule.Author)
	})

	t.Run("ignores unknown fields", func(t *testing.T) {
		t.Parallel()

		rule, err := feedgen.ParseRule[feedgen.FeedStructureRule](
			`{"postListLocator":"li a","postLinkAttribute":"href","confidence":0.9}`)

		require.NoError(t, err)
		assert.Equal(t, "li a", rule.PostListLocator)
	})

	t.Run("missing postListLocator is a schema error", func(t *testing.T) {
		t.Parallel()

		_, err := feedgen.ParseRule[feedgen.FeedStructureRule](`{"postLinkAttribute":"href"}`)

		assert.Equal(t, feedgen.ESCHEMA, feedgen.ErrorCode(err))
	})

	t.Run("missing postLinkAttribute is a schema error", func(t *testing.T) {
		t.Parallel()

		_, err := feedgen.ParseRule[feedgen.FeedStructureRule](`{"postListLocator":"li a"}`)

		assert.Equal(t, feedgen.ESCHEMA, feedgen.ErrorCode(err))
	})

	t.Run("attribute name with spaces is a schema error", func(t *testing.T) {
		t.Parallel()

		_, err := feedgen.ParseRule[feedgen.FeedStructureRule](`{"postListLocator":"li a","postLinkAttribute":"data href"}`)

		assert.Equal(t, feedgen.ESCHEMA, feedgen.ErrorCode(err))
	})

	t.Run("wrong field type is a schema error", func(t *testing.T) {
		t.Parallel()

		_, err := feedgen.ParseRule[feedgen.FeedStructureRule](`{"postListLocator":42,"postLinkAttribute":"href"}`)

		assert.Equal(t, feedgen.ESCHEMA, feedgen.ErrorCode(err))
		assert.Contains(t, feedgen.ErrorMessage(err), "postListLocator")
	})

	t.Run("locators exclude literal fields", func(t *testing.T) {
		t.Parallel()

		rule, err := feedgen.ParseRule[feedgen.FeedStructureRule](
			`{"title":"My Blog","postListLocator":"li a","postLinkAttribute":"href","nextPageLocator":"a[rel=next]"}`)

		require.NoError(t, err)
		assert.Equal(t, []string{"li a", "a[rel=next]"}, rule.Locators())
	})

	t.Run("locators include locator scalars", func(t *testing.T) {
		t.Parallel()

		rule, err := feedgen.ParseRule[feedgen.FeedStructureRule](
			`{"title":{"locator":"h1"},"author":"Ada","postListLocator":"li a","postLinkAttribute":"href"}`)

		require.NoError(t, err)
		assert.Equal(t, []string{"li a", "h1"}, rule.Locators())
	})

	t.Run("string scalars are literals even when they look like selectors", func(t *testing.T) {
		t.Parallel()

		rule, err := feedgen.ParseRule[feedgen.FeedStructureRule](
			`{"title":"Header","description":{"value":" Main "},"postListLocator":"li a","postLinkAttribute":"href"}`)

		require.NoError(t, err)
		assert.Equal(t, &feedgen.Scalar{Value: "Header"}, rule.Title)
		assert.Equal(t, &feedgen.Scalar{Value: "Main"}, rule.Description)
	})

	t.Run("blank locator scalar is normalized to nil", func(t *testing.T) {
		t.Parallel()

		rule, err := feedgen.ParseRule[feedgen.FeedStructureRule](
			`{"title":{"locator":"  "},"postListLocator":"li a","postLinkAttribute":"href"}`)

		require.NoError(t, err)
		assert.Nil(t, rule.Title)
	})

	t.Run("scalar with both locator and value is a schema error", func(t *testing.T) {
		t.Parallel()

		_, err := feedgen.ParseRule[feedgen.FeedStructureRule](
			`{"title":{"locator":"h1","value":"Blog"},"postListLocator":"li a","postLinkAttribute":"href"}`)

		assert.Equal(t, feedgen.ESCHEMA, feedgen.ErrorCode(err))
	})

	t.Run("scalar of the wrong shape is a schema error", func(t *testing.T) {
		t.Parallel()

		_, err := feedgen.ParseRule[feedgen.FeedStructureRule](
			`{"title":["h1"],"postListLocator":"li a","postLinkAttribute":"href"}`)

		assert.Equal(t, feedgen.ESCHEMA, feedgen.ErrorCode(err))
	})
}

func TestParseRule_PostStructureRule(t *testing.T) {
	t.Parallel()

	t.Run("decodes title and content", func(t *testing.T) {
		t.Parallel()

		rule, err := feedgen.ParseRule[feedgen.PostStructureRule](`{"title":"h1","content":"article"}`)

		require.NoError(t, err)
		want := &feedgen.PostStructureRule{TitleLocator: "h1", ContentLocator: "article"}
		if diff := cmp.Diff(want, rule); diff != "" {
			t.Errorf("rule mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing content is a schema error", func(t *testing.T) {
		t.Parallel()

		_, err := feedgen.ParseRule[feedgen.PostStructureRule](`{"title":"h1"}`)

		assert.Equal(t, feedgen.ESCHEMA, feedgen.ErrorCode(err))
	})

	t.Run("null document is a schema error", func(t *testing.T) {
		t.Parallel()

		_, err := feedgen.ParseRule[feedgen.PostStructureRule](`null`)

		assert.Equal(t, feedgen.ESCHEMA, feedgen.ErrorCode(err))
	})
}

func TestParseRule_RejectsNonJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty text", raw: ""},
		{name: "plain prose", raw: "not json"},
		{name: "code fenced JSON", raw: "```json\n{\"title\":\"h1\",\"content\":\"article\"}\n```"},
		{name: "prose before JSON", raw: `Here you go: {"title":"h1","content":"article"}`},
		{name: "trailing data after object", raw: `{"title":"h1","content":"article"} thanks`},
		{name: "array instead of object", raw: `[{"title":"h1","content":"article"}]`},
		{name: "truncated object", raw: `{"title":"h1","content":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rule, err := feedgen.ParseRule[feedgen.PostStructureRule](tt.raw)

			require.Error(t, err)
			assert.Nil(t, rule)
			assert.Equal(t, feedgen.ESCHEMA, feedgen.ErrorCode(err))
		})
	}
}

func TestFeed_Validate(t *testing.T) {
	t.Parallel()

	t.Run("requires title", func(t *testing.T) {
		t.Parallel()

		f := &feedgen.Feed{Link: "https://example.com/blog"}

		assert.Equal(t, feedgen.EINVALID, feedgen.ErrorCode(f.Validate()))
	})

	t.Run("requires link", func(t *testing.T) {
		t.Parallel()

		f := &feedgen.Feed{Title: "Blog"}

		assert.Equal(t, feedgen.EINVALID, feedgen.ErrorCode(f.Validate()))
	})

	t.Run("accepts complete feed", func(t *testing.T) {
		t.Parallel()

		f := &feedgen.Feed{Title: "Blog", Link: "https://example.com/blog"}

		assert.NoError(t, f.Validate())
	})
}
