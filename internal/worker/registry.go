package worker

import (
	"sort"
	"strings"
)

// DefaultName is the worker every unresolvable routing decision is coerced
// to.
const DefaultName = "content"

// Registry is a fixed mapping from logical task names to workers. It is
// built once at startup, immutable afterwards, and safe for concurrent use.
type Registry struct {
	workers      map[string]Worker
	descriptions map[string]string
	names        []string
}

// NewRegistry builds a registry from worker specs. Later specs with a
// duplicate name replace earlier ones.
func NewRegistry(specs []Spec) *Registry {
	r := &Registry{
		workers:      make(map[string]Worker, len(specs)),
		descriptions: make(map[string]string, len(specs)),
	}
	for _, s := range specs {
		if _, seen := r.workers[s.Name]; !seen {
			r.names = append(r.names, s.Name)
		}
		r.workers[s.Name] = s.Worker
		r.descriptions[s.Name] = s.Description
	}
	sort.Strings(r.names)
	return r
}

// Resolve returns the worker registered under name. The classifier may
// answer with agent-style aliases ("StrategistAgent"); those are normalized
// before lookup.
func (r *Registry) Resolve(name string) (Worker, bool) {
	w, ok := r.workers[Normalize(name)]
	return w, ok
}

// Names returns the registered worker names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Describe returns the one-line description for a registered worker.
func (r *Registry) Describe(name string) string {
	return r.descriptions[Normalize(name)]
}

// Normalize maps classifier spellings onto registry keys: trims space,
// lowercases, strips an "Agent" suffix, and converts CamelCase to
// snake_case ("SolutionArchitectAgent" -> "solution_architect").
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(name, "Agent")
	name = strings.TrimSuffix(name, "agent")
	name = strings.TrimSuffix(name, "_")

	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && name[i-1] != '_' {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		if r == ' ' || r == '-' {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
