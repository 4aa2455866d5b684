// Package coordinator ties routing, dispatch, persistence, and delivery
// into the request-handling pipeline.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rfpforge/rfpforge/internal/config"
	"github.com/rfpforge/rfpforge/internal/delivery"
	"github.com/rfpforge/rfpforge/internal/domain"
	"github.com/rfpforge/rfpforge/internal/storage"
	"github.com/rfpforge/rfpforge/internal/worker"
)

// Classifier routes a request into a (section, worker, rationale) decision.
// It never fails; ambiguity resolves to the default worker.
type Classifier interface {
	Classify(ctx context.Context, text string) domain.RoutingDecision
}

// Extractor converts an uploaded document into text. Extraction failure is
// fatal to the request that attached the file.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// DiagramRenderer converts a diagram description into a rendered artifact
// and returns its path.
type DiagramRenderer interface {
	Render(ctx context.Context, sessionID, description string) (string, error)
}

// DocumentRenderer assembles ordered sections into an output document of
// the requested format and returns its path.
type DocumentRenderer interface {
	Render(ctx context.Context, sessionID string, sections []Section, format string) (string, error)
}

// Section is one titled block handed to the document renderer.
type Section struct {
	Title   string
	Content string
}

// Coordinator owns one session at a time. Concurrent requests against the
// same session id race to last-write-wins on the snapshot; that matches the
// storage model and is documented as a known consistency gap.
type Coordinator struct {
	registry  *worker.Registry
	router    Classifier
	facade    *storage.Facade
	extractor Extractor
	offloader *delivery.Offloader
	diagrams  DiagramRenderer
	renderer  DocumentRenderer
	logger    *zap.Logger
	cfg       config.CoordinatorConfig

	state *ProposalState
	now   func() time.Time
}

// Options carries the collaborators the coordinator depends on.
type Options struct {
	Registry  *worker.Registry
	Router    Classifier
	Facade    *storage.Facade
	Extractor Extractor
	Offloader *delivery.Offloader
	Diagrams  DiagramRenderer
	Renderer  DocumentRenderer
	Logger    *zap.Logger
	Config    config.CoordinatorConfig
}

// New builds a coordinator with an empty proposal state.
func New(opts Options) *Coordinator {
	return &Coordinator{
		registry:  opts.Registry,
		router:    opts.Router,
		facade:    opts.Facade,
		extractor: opts.Extractor,
		offloader: opts.Offloader,
		diagrams:  opts.Diagrams,
		renderer:  opts.Renderer,
		logger:    opts.Logger,
		cfg:       opts.Config,
		state:     NewProposalState(),
		now:       time.Now,
	}
}

// Process runs one request through the full pipeline: optional ingestion,
// routing, dispatch, persistence, and state merge. It always returns a
// coherent envelope; total failure produces a section "error" envelope
// rather than an escaped fault.
func (c *Coordinator) Process(ctx context.Context, req domain.ProcessRequest) *domain.ResultEnvelope {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	timeout := time.Duration(c.cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c.logger.Info("processing request", zap.String("session_id", sessionID))

	// Ingestion.
	ingestStep := "Document ingestion: no document uploaded, processing text-only query"
	if req.FilePath != "" {
		text, err := c.extractor.Extract(ctx, req.FilePath)
		if err != nil {
			c.logger.Error("document extraction failed", zap.String("path", req.FilePath), zap.Error(err))
			return c.errorEnvelope(sessionID, fmt.Sprintf("failed to process document: %v", err))
		}
		c.state.SetSource(text)
		ingestStep = "Document ingestion: completed successfully"
	}

	// Routing. Classify cannot fail; ambiguity resolves internally.
	enriched := c.enrich(req.Text)
	decision := c.router.Classify(ctx, enriched)
	if ctx.Err() != nil {
		return c.timeoutEnvelope(sessionID)
	}
	c.logger.Info("routed request",
		zap.String("section", decision.Section),
		zap.String("worker", decision.Worker),
	)

	// Dispatch. A worker failure degrades into an error-string output for
	// this section; it never aborts the session.
	w, ok := c.registry.Resolve(decision.Worker)
	if !ok {
		w, ok = c.registry.Resolve(worker.DefaultName)
		if !ok {
			c.logger.Error("default worker not registered", zap.String("worker", worker.DefaultName))
			return c.errorEnvelope(sessionID, fmt.Sprintf("no worker available for %q", decision.Worker))
		}
		decision.Worker = worker.DefaultName
	}
	output, err := w.Handle(ctx, enriched)
	if err != nil {
		if ctx.Err() != nil {
			return c.timeoutEnvelope(sessionID)
		}
		c.logger.Error("worker failed", zap.String("worker", decision.Worker), zap.Error(err))
		output = fmt.Sprintf("Error processing request with %s: %v\n\nPlease try again or rephrase the request.", decision.Worker, err)
	}

	// Persistence. Best effort: the caller still gets the computed result
	// when the durable write fails.
	contentKey := c.persistBlob(ctx, sessionID, decision.Section, output)
	c.persistSnapshot(ctx, sessionID, decision, contentKey, output)

	// Merge and respond.
	c.state.Set(decision.Section, output)

	inline := output
	if c.offloader != nil {
		if summarized, _, oerr := c.offloader.OffloadIfOversized(ctx, sessionID, decision.Section+"_inline", output); oerr == nil {
			inline = summarized
		} else {
			c.logger.Warn("offload failed, returning full output inline", zap.Error(oerr))
		}
	}

	return &domain.ResultEnvelope{
		Section:    decision.Section,
		Agent:      decision.Worker,
		Summary:    decision.Rationale,
		Output:     inline,
		ContentKey: contentKey,
		SessionID:  sessionID,
		Timestamp:  c.now(),
		Reasoning: domain.Reasoning{
			QueryAnalysis: fmt.Sprintf("Analyzed user query: %q. Intent detected: the user is requesting assistance with the %s section of the proposal.", req.Text, decision.Section),
			RoutingLogic:  fmt.Sprintf("Selected %s: %s", decision.Worker, decision.Rationale),
			ProcessingSteps: []string{
				ingestStep,
				fmt.Sprintf("Query analysis: detected intent for %s section", decision.Section),
				fmt.Sprintf("Worker selection: chose %s as the most appropriate specialist", decision.Worker),
				fmt.Sprintf("Task execution: %s generated %d characters of content", decision.Worker, len(output)),
				persistStep(contentKey),
			},
		},
	}
}

// enrich combines the raw text with bounded previews of the ingested
// document and prior section results.
func (c *Coordinator) enrich(text string) string {
	source := c.state.SourcePreview(c.cfg.SourcePreviewChars)
	previews := c.state.SectionPreviews(c.cfg.SectionPreviewChars)
	if source == "" && len(previews) == 0 {
		return text
	}

	sections := make([]string, 0, len(previews))
	for section := range previews {
		sections = append(sections, section)
	}
	sort.Strings(sections)

	enriched := text + "\n\n[Context]\n"
	for _, section := range sections {
		enriched += fmt.Sprintf("Previous %s section: %s\n", section, previews[section])
	}
	if source != "" {
		enriched += "Source document preview: " + source + "\n"
	}
	return enriched
}

func (c *Coordinator) persistBlob(ctx context.Context, sessionID, section, output string) string {
	key := storage.BlobKey(sessionID, section+"_output", c.now())
	err := c.facade.Objects.PutBlob(ctx, key, []byte(output), "text/plain", map[string]string{
		"session_id": sessionID,
		"category":   section + "_output",
		"timestamp":  c.now().UTC().Format(time.RFC3339),
		"size":       fmt.Sprintf("%d", len(output)),
	})
	if err != nil {
		c.logger.Error("failed to persist output blob", zap.String("key", key), zap.Error(err))
		return ""
	}
	return key
}

// persistSnapshot read-modify-writes the session record so prior sections
// survive. The record only references blob data; section entries are
// truncated previews.
func (c *Coordinator) persistSnapshot(ctx context.Context, sessionID string, decision domain.RoutingDecision, contentKey, output string) {
	snap, err := c.facade.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			c.logger.Error("failed to load prior snapshot", zap.String("session_id", sessionID), zap.Error(err))
		}
		snap = &domain.Snapshot{SessionID: sessionID}
	}
	if snap.ProposalState == nil {
		snap.ProposalState = make(map[string]string)
	}
	if snap.ContentKeys == nil {
		snap.ContentKeys = make(map[string]string)
	}

	for section, preview := range c.state.SectionPreviews(c.cfg.SnapshotEntryChars) {
		snap.ProposalState[section] = preview
	}
	snap.ProposalState[decision.Section] = truncate(output, c.cfg.SnapshotEntryChars)

	snap.Section = decision.Section
	snap.Worker = decision.Worker
	snap.ContentKey = contentKey
	if contentKey != "" {
		snap.ContentKeys[decision.Section] = contentKey
	}
	snap.UpdatedAt = c.now().UTC().Format(time.RFC3339)

	if err := c.facade.Sessions.PutSession(ctx, sessionID, snap); err != nil {
		c.logger.Error("failed to persist snapshot", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func persistStep(contentKey string) string {
	if contentKey == "" {
		return "Storage: durable write failed, result returned from memory only"
	}
	return fmt.Sprintf("Storage: content stored at %s and session snapshot saved", contentKey)
}

func (c *Coordinator) errorEnvelope(sessionID, message string) *domain.ResultEnvelope {
	return &domain.ResultEnvelope{
		Section:   "error",
		Agent:     "error_handler",
		Summary:   "processing failed",
		Output:    fmt.Sprintf("An error occurred while processing your request: %s", message),
		SessionID: sessionID,
		Timestamp: c.now(),
		Reasoning: domain.Reasoning{
			QueryAnalysis:   "Error during analysis: " + message,
			RoutingLogic:    "Error occurred before routing could complete",
			ProcessingSteps: []string{"Error occurred during processing: " + message},
		},
	}
}

func (c *Coordinator) timeoutEnvelope(sessionID string) *domain.ResultEnvelope {
	env := c.errorEnvelope(sessionID, "request timed out; state persisted up to the last successful step remains valid")
	env.Summary = "request timed out"
	return env
}
