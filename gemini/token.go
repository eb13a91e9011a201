package gemini

import (
	"context"

	"github.com/fwojciec/feedgen"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// FallbackTokenizerModel is used for models the local tokenizer does not
// recognize. Current Gemini models share its vocabulary, so counts stay
// close enough for budgeting.
const FallbackTokenizerModel = "gemini-2.0-flash"

var _ feedgen.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts prompt tokens locally, without an API round trip.
// It backs the Classifier's token budget.
type TokenCounter struct {
	tok   *tokenizer.LocalTokenizer
	model string
}

// NewTokenCounter creates a TokenCounter for model.
// Returns ECONFIG if neither model nor the fallback has a local tokenizer.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err == nil {
		return &TokenCounter{tok: tok, model: model}, nil
	}

	tok, fallbackErr := tokenizer.NewLocalTokenizer(FallbackTokenizerModel)
	if fallbackErr != nil {
		return nil, feedgen.Errorf(feedgen.ECONFIG, "no local tokenizer for model %q: %v", model, err)
	}
	return &TokenCounter{tok: tok, model: FallbackTokenizerModel}, nil
}

// Model returns the name of the tokenizer model actually in use.
func (tc *TokenCounter) Model() string {
	return tc.model
}

// CountTokens counts the tokens text occupies as a single user turn.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
	if err != nil {
		return 0, feedgen.Errorf(feedgen.EINTERNAL, "count tokens: %v", err)
	}
	return int(result.TotalTokens), nil
}
