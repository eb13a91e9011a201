//go:build integration

package gemini_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/feedgen"
	"github.com/fwojciec/feedgen/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifier_Integration_ReturnsPostRule(t *testing.T) {
	t.Parallel()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	c := gemini.NewClassifier(apiKey)

	html := `<html><body><article><h1 class="post-title">Hello</h1><div class="post-body"><p>World</p></div></article></body></html>`

	raw, err := c.Classify(ctx, html, feedgen.PostInstruction)
	require.NoError(t, err)

	rule, err := feedgen.ParseRule[feedgen.PostStructureRule](raw)
	require.NoError(t, err)
	assert.NotEmpty(t, rule.TitleLocator)
	assert.NotEmpty(t, rule.ContentLocator)
}
