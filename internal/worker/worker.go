// Package worker defines the specialist workers and the registry that maps
// logical task names to them.
package worker

import (
	"context"

	"github.com/rfpforge/rfpforge/internal/llm"
)

// Worker is an opaque unit of specialized text generation. Implementations
// must not panic; internal failures are returned as errors and degraded by
// the coordinator.
type Worker interface {
	Handle(ctx context.Context, input string) (string, error)
}

// Spec describes a worker for registry construction and for the routing
// prompt.
type Spec struct {
	Name        string
	Description string
	Worker      Worker
}

// llmWorker wraps a single system prompt around the shared LLM client.
type llmWorker struct {
	client llm.Client
	system string
}

func (w *llmWorker) Handle(ctx context.Context, input string) (string, error) {
	return w.client.Complete(ctx, w.system, input)
}
