package coordinator

import "sync"

// ProposalState accumulates per-section results for the lifetime of a
// coordinator instance. It is the in-memory working copy; durable snapshots
// go through the storage facade after every step.
type ProposalState struct {
	mu       sync.RWMutex
	source   string
	sections map[string]string
}

// NewProposalState returns an empty accumulator.
func NewProposalState() *ProposalState {
	return &ProposalState{sections: make(map[string]string)}
}

// SetSource records the extracted document text.
func (p *ProposalState) SetSource(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.source = text
}

// Set merges a section result.
func (p *ProposalState) Set(section, content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sections[section] = content
}

// SourcePreview returns at most n characters of the source text.
func (p *ProposalState) SourcePreview(n int) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return truncate(p.source, n)
}

// SectionPreviews returns every section truncated to n characters.
func (p *ProposalState) SectionPreviews(n int) map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]string, len(p.sections))
	for k, v := range p.sections {
		out[k] = truncate(v, n)
	}
	return out
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
