package server

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/pixlator/internal/pattern"
)

// process runs the pattern pipeline and gives up when ctx is done. The
// pipeline itself is not interruptible; an abandoned run finishes in the
// background and its result is dropped.
func (s *Server) process(ctx context.Context, img image.Image, params pattern.Params) (*pattern.Result, error) {
	type outcome struct {
		res *pattern.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := s.processor.Process(img, params)
		done <- outcome{res, err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("processing abandoned: %w", ctx.Err())
	}
}
