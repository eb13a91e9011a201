// Package slog provides logging decorators for feedgen services.
package slog

import (
	"log/slog"

	"github.com/fwojciec/feedgen"
)

// level reports failures at warn so they survive an info-level handler.
func level(err error) slog.Level {
	if err != nil {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}

// errAttrs returns the code and stage attributes of err, if any.
func errAttrs(err error) []any {
	if err == nil {
		return nil
	}
	attrs := []any{"code", feedgen.ErrorCode(err)}
	if stage := feedgen.ErrorStage(err); stage != "" {
		attrs = append(attrs, "stage", stage)
	}
	return attrs
}
