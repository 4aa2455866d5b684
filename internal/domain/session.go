package domain

import "time"

// Snapshot is the persisted session record. Every content key it references
// must already be durably written to the object store; section previews are
// truncated so the record never carries large payloads inline.
type Snapshot struct {
	SessionID     string            `json:"session_id" dynamodbav:"session_id"`
	Section       string            `json:"section" dynamodbav:"section"`
	Worker        string            `json:"worker" dynamodbav:"worker"`
	ContentKey    string            `json:"content_key" dynamodbav:"content_key"`
	ContentKeys   map[string]string `json:"content_keys,omitempty" dynamodbav:"content_keys"`
	ProposalState map[string]string `json:"proposal_state" dynamodbav:"proposal_state"`
	UpdatedAt     string            `json:"updated_at" dynamodbav:"updated_at"`
}

// Reasoning explains how a request moved through the pipeline.
type Reasoning struct {
	QueryAnalysis   string   `json:"query_analysis"`
	RoutingLogic    string   `json:"routing_logic"`
	ProcessingSteps []string `json:"processing_steps"`
}

// ResultEnvelope is returned to every caller of the coordinator, including
// on total failure (section "error" with the message embedded).
type ResultEnvelope struct {
	Section    string    `json:"section"`
	Agent      string    `json:"agent"`
	Summary    string    `json:"summary"`
	Output     string    `json:"output"`
	ContentKey string    `json:"content_key,omitempty"`
	SessionID  string    `json:"session_id"`
	Timestamp  time.Time `json:"timestamp"`
	Reasoning  Reasoning `json:"reasoning"`
}

// ProcessRequest is a request into the coordinator pipeline.
type ProcessRequest struct {
	Text      string `json:"text" binding:"required"`
	FilePath  string `json:"file_path,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// CompileRequest asks for the assembled proposal document.
type CompileRequest struct {
	Format string `json:"format" binding:"required,oneof=docx pdf"`
}
