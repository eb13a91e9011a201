package mock

import (
	"context"

	"github.com/fwojciec/feedgen"
)

var _ feedgen.Classifier = (*Classifier)(nil)

// Classifier is a mock implementation of feedgen.Classifier.
type Classifier struct {
	ClassifyFn func(ctx context.Context, html string, instruction feedgen.Instruction) (string, error)
}

func (c *Classifier) Classify(ctx context.Context, html string, instruction feedgen.Instruction) (string, error) {
	return c.ClassifyFn(ctx, html, instruction)
}
