// Package routing classifies a request into a (section, worker, rationale)
// decision using an LLM-backed classifier with a deterministic fallback.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rfpforge/rfpforge/internal/domain"
	"github.com/rfpforge/rfpforge/internal/llm"
	"github.com/rfpforge/rfpforge/internal/worker"
)

// maxQueryChars bounds how much of the request text is sent to the
// classifier.
const maxQueryChars = 500

// Engine routes requests to registered workers. Classify never fails: any
// classifier error, parse failure, or unknown worker name resolves to the
// default worker. The routing step is the terminal error boundary for
// routing ambiguity.
type Engine struct {
	client   llm.Client
	registry *worker.Registry
	logger   *zap.Logger
	system   string
}

// NewEngine builds a routing engine over the given classifier client and
// worker registry.
func NewEngine(client llm.Client, registry *worker.Registry, logger *zap.Logger) *Engine {
	return &Engine{
		client:   client,
		registry: registry,
		logger:   logger,
		system:   buildSystemPrompt(registry),
	}
}

func buildSystemPrompt(registry *worker.Registry) string {
	var b strings.Builder
	b.WriteString("You are an intelligent routing coordinator for proposal generation.\n\n")
	b.WriteString("Analyze user queries and route to the appropriate worker:\n\n")
	for _, name := range registry.Names() {
		fmt.Fprintf(&b, "- %s: %s\n", name, registry.Describe(name))
	}
	b.WriteString(`
Respond with JSON only:
{
    "section": "which part of the proposal this belongs to",
    "worker": "worker_name",
    "rationale": "why this worker is appropriate"
}

Be concise and decisive.`)
	return b.String()
}

// Classify routes the request text to a registered worker. A single
// classifier attempt is made; failure is treated as routing ambiguity, not
// a transient fault, so there is no retry.
func (e *Engine) Classify(ctx context.Context, text string) domain.RoutingDecision {
	query := text
	if runes := []rune(query); len(runes) > maxQueryChars {
		query = string(runes[:maxQueryChars])
	}

	raw, err := e.client.Complete(ctx, e.system, "Route this request to the appropriate worker: "+query)
	if err != nil {
		e.logger.Warn("routing classifier failed, using default worker", zap.Error(err))
		return e.fallback()
	}

	decision, err := parseDecision(raw)
	if err != nil {
		e.logger.Warn("routing response unparseable, using default worker", zap.Error(err))
		return e.fallback()
	}

	if _, ok := e.registry.Resolve(decision.Worker); !ok {
		e.logger.Warn("routing chose unregistered worker, using default",
			zap.String("worker", decision.Worker))
		decision.Worker = worker.DefaultName
	} else {
		decision.Worker = worker.Normalize(decision.Worker)
	}

	if decision.Section == "" {
		decision.Section = "general"
	}

	return decision
}

func (e *Engine) fallback() domain.RoutingDecision {
	return domain.RoutingDecision{
		Section:   "general",
		Worker:    worker.DefaultName,
		Rationale: domain.FallbackRationale,
	}
}

// parseDecision extracts the decision JSON, tolerating markdown code fences
// and the agent-style field names the classifier sometimes emits.
func parseDecision(raw string) (domain.RoutingDecision, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "```", 3)
		if len(parts) >= 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(strings.TrimSpace(s), "json")
		s = strings.TrimSpace(s)
	}

	var fields struct {
		Section   string `json:"section"`
		Worker    string `json:"worker"`
		Agent     string `json:"agent"`
		Rationale string `json:"rationale"`
		Summary   string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return domain.RoutingDecision{}, fmt.Errorf("parse routing decision: %w", err)
	}

	name := fields.Worker
	if name == "" {
		name = fields.Agent
	}
	if name == "" {
		return domain.RoutingDecision{}, fmt.Errorf("routing decision names no worker")
	}

	rationale := fields.Rationale
	if rationale == "" {
		rationale = fields.Summary
	}

	return domain.RoutingDecision{
		Section:   strings.TrimSpace(fields.Section),
		Worker:    name,
		Rationale: rationale,
	}, nil
}
