package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielledeleo/wikilite/internal/renderqueue"
	"github.com/danielledeleo/wikilite/render"
	"github.com/danielledeleo/wikilite/wiki"
)

// RenderingService defines the interface for transforming submitted content.
type RenderingService interface {
	// Transform runs raw page markup through the pipeline. Failures of the
	// pipeline itself wrap wiki.ErrTransform.
	Transform(ctx context.Context, raw string) (*render.Output, error)
}

// renderingService is the default implementation of RenderingService.
type renderingService struct {
	pipeline *render.Pipeline
	queue    *renderqueue.Queue
	maxBytes int
}

// NewRenderingService creates a new RenderingService. With a nil queue the
// pipeline runs on the calling goroutine. maxContentBytes <= 0 disables the
// size check.
func NewRenderingService(pipeline *render.Pipeline, queue *renderqueue.Queue, maxContentBytes int) RenderingService {
	return &renderingService{
		pipeline: pipeline,
		queue:    queue,
		maxBytes: maxContentBytes,
	}
}

// Transform runs raw page markup through the pipeline.
func (s *renderingService) Transform(ctx context.Context, raw string) (*render.Output, error) {
	if s.maxBytes > 0 && len(raw) > s.maxBytes {
		return nil, wiki.ErrContentTooLarge
	}

	var out *render.Output
	var err error
	if s.queue != nil {
		out, err = s.queue.Transform(ctx, raw, renderqueue.TierInteractive)
	} else {
		out, err = s.pipeline.Transform(raw)
	}

	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), errors.Is(err, renderqueue.ErrQueueClosed):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %w", wiki.ErrTransform, err)
	}
}
