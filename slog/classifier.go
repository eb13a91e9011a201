package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/feedgen"
)

// Ensure LoggingClassifier implements feedgen.Classifier.
var _ feedgen.Classifier = (*LoggingClassifier)(nil)

// LoggingClassifier wraps a Classifier with logging.
// The API key never reaches the log; only sizes and timing do.
type LoggingClassifier struct {
	next   feedgen.Classifier
	logger *slog.Logger
}

// NewLoggingClassifier creates a new LoggingClassifier.
func NewLoggingClassifier(next feedgen.Classifier, logger *slog.Logger) *LoggingClassifier {
	return &LoggingClassifier{next: next, logger: logger}
}

// Classify delegates to the wrapped classifier.
func (c *LoggingClassifier) Classify(ctx context.Context, html string, instruction feedgen.Instruction) (text string, err error) {
	defer func(begin time.Time) {
		c.logger.Log(ctx, level(err), "classify",
			append([]any{
				"instruction", instructionName(instruction),
				"bytes_in", len(html),
				"bytes_out", len(text),
				"duration", time.Since(begin),
				"err", err,
			}, errAttrs(err)...)...,
		)
	}(time.Now())
	return c.next.Classify(ctx, html, instruction)
}

func instructionName(instruction feedgen.Instruction) string {
	switch instruction {
	case feedgen.FeedInstruction:
		return "feed"
	case feedgen.PostInstruction:
		return "post"
	default:
		return "custom"
	}
}
