package mock

import (
	"context"

	"github.com/fwojciec/feedgen"
)

var _ feedgen.PostWriter = (*PostWriter)(nil)

// PostWriter is a mock implementation of feedgen.PostWriter.
type PostWriter struct {
	WritePostFn func(ctx context.Context, post *feedgen.Post) error
	CommitFn    func() error
	AbortFn     func() error
}

func (w *PostWriter) WritePost(ctx context.Context, post *feedgen.Post) error {
	return w.WritePostFn(ctx, post)
}

func (w *PostWriter) Commit() error {
	return w.CommitFn()
}

func (w *PostWriter) Abort() error {
	return w.AbortFn()
}
