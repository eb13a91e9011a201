package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/feedgen"
)

// Ensure LoggingInferrer implements feedgen.Inferrer.
var _ feedgen.Inferrer = (*LoggingInferrer)(nil)

// LoggingInferrer wraps an Inferrer with logging of each inference call.
type LoggingInferrer struct {
	next   feedgen.Inferrer
	logger *slog.Logger
}

// NewLoggingInferrer creates a new LoggingInferrer.
func NewLoggingInferrer(next feedgen.Inferrer, logger *slog.Logger) *LoggingInferrer {
	return &LoggingInferrer{next: next, logger: logger}
}

// InferFeedStructure delegates to the wrapped inferrer.
func (i *LoggingInferrer) InferFeedStructure(ctx context.Context, url string) (feed *feedgen.FeedStructure, err error) {
	defer func(begin time.Time) {
		i.logFeed(ctx, "infer feed structure", url, feed, begin, err)
	}(time.Now())
	return i.next.InferFeedStructure(ctx, url)
}

// InferFeedRule delegates to the wrapped inferrer.
func (i *LoggingInferrer) InferFeedRule(ctx context.Context, url string) (feed *feedgen.FeedStructure, rule *feedgen.FeedStructureRule, err error) {
	defer func(begin time.Time) {
		i.logFeed(ctx, "infer feed rule", url, feed, begin, err)
	}(time.Now())
	return i.next.InferFeedRule(ctx, url)
}

// InferPostStructure delegates to the wrapped inferrer.
func (i *LoggingInferrer) InferPostStructure(ctx context.Context, html string) (post *feedgen.PostStructure, err error) {
	defer func(begin time.Time) {
		i.logger.Log(ctx, level(err), "infer post structure",
			append([]any{
				"bytes", len(html),
				"duration", time.Since(begin),
				"err", err,
			}, errAttrs(err)...)...,
		)
	}(time.Now())
	return i.next.InferPostStructure(ctx, html)
}

// InferPostRule delegates to the wrapped inferrer.
func (i *LoggingInferrer) InferPostRule(ctx context.Context, html string) (rule *feedgen.PostStructureRule, err error) {
	defer func(begin time.Time) {
		attrs := []any{"bytes", len(html), "duration", time.Since(begin)}
		if rule != nil {
			attrs = append(attrs, "title", rule.TitleLocator, "content", rule.ContentLocator)
		}
		attrs = append(attrs, "err", err)
		i.logger.Log(ctx, level(err), "infer post rule", append(attrs, errAttrs(err)...)...)
	}(time.Now())
	return i.next.InferPostRule(ctx, html)
}

// ApplyPostRule delegates to the wrapped inferrer without logging.
func (i *LoggingInferrer) ApplyPostRule(html string, rule *feedgen.PostStructureRule) (*feedgen.PostStructure, error) {
	return i.next.ApplyPostRule(html, rule)
}

func (i *LoggingInferrer) logFeed(ctx context.Context, msg, url string, feed *feedgen.FeedStructure, begin time.Time, err error) {
	var links int
	if feed != nil {
		links = len(feed.Links)
	}
	i.logger.Log(ctx, level(err), msg,
		append([]any{
			"url", url,
			"links", links,
			"duration", time.Since(begin),
			"err", err,
		}, errAttrs(err)...)...,
	)
}
