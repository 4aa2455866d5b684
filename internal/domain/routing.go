package domain

// RoutingDecision is the (section, worker, rationale) triple produced by
// classifying a request. Worker is always resolvable after validation by
// the routing engine; callers never see an unregistered name.
type RoutingDecision struct {
	Section   string `json:"section"`
	Worker    string `json:"worker"`
	Rationale string `json:"rationale"`
}

// FallbackRationale marks a decision produced by the deterministic fallback
// path rather than the classifier.
const FallbackRationale = "fallback routing"
