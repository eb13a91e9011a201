package mock

import (
	"context"

	"github.com/fwojciec/feedgen"
)

var _ feedgen.Inferrer = (*Inferrer)(nil)

// Inferrer is a mock implementation of feedgen.Inferrer.
type Inferrer struct {
	InferFeedStructureFn func(ctx context.Context, url string) (*feedgen.FeedStructure, error)
	InferFeedRuleFn      func(ctx context.Context, url string) (*feedgen.FeedStructure, *feedgen.FeedStructureRule, error)
	InferPostStructureFn func(ctx context.Context, html string) (*feedgen.PostStructure, error)
	InferPostRuleFn      func(ctx context.Context, html string) (*feedgen.PostStructureRule, error)
	ApplyPostRuleFn      func(html string, rule *feedgen.PostStructureRule) (*feedgen.PostStructure, error)
}

func (i *Inferrer) InferFeedStructure(ctx context.Context, url string) (*feedgen.FeedStructure, error) {
	return i.InferFeedStructureFn(ctx, url)
}

func (i *Inferrer) InferFeedRule(ctx context.Context, url string) (*feedgen.FeedStructure, *feedgen.FeedStructureRule, error) {
	return i.InferFeedRuleFn(ctx, url)
}

func (i *Inferrer) InferPostStructure(ctx context.Context, html string) (*feedgen.PostStructure, error) {
	return i.InferPostStructureFn(ctx, html)
}

func (i *Inferrer) InferPostRule(ctx context.Context, html string) (*feedgen.PostStructureRule, error) {
	return i.InferPostRuleFn(ctx, html)
}

func (i *Inferrer) ApplyPostRule(html string, rule *feedgen.PostStructureRule) (*feedgen.PostStructure, error) {
	return i.ApplyPostRuleFn(html, rule)
}
