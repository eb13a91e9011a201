package feedgen

import "context"

// TokenCounter counts tokens in text for the oracle's model. It keeps
// classification requests under the model's input limit.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
