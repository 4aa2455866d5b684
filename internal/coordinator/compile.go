package coordinator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/rfpforge/rfpforge/internal/domain"
)

// sectionOrder fixes the assembly order of known sections; anything else is
// appended alphabetically.
var sectionOrder = []string{
	"strategy",
	"strategist",
	"solution_architect",
	"architecture",
	"diagram",
	"general",
	"content",
	"financial",
	"compliance",
	"review",
}

// Compile assembles every accumulated section of a session into a document
// of the requested format and returns its path. A missing session is fatal:
// there is nothing to compile.
func (c *Coordinator) Compile(ctx context.Context, sessionID, format string) (string, error) {
	if format != "docx" && format != "pdf" {
		return "", fmt.Errorf("%w: unsupported format %q", domain.ErrInvalidRequest, format)
	}

	snap, err := c.facade.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if len(snap.ProposalState) == 0 {
		return "", domain.ErrSessionNotFound
	}

	sections := make(map[string]string, len(snap.ProposalState))
	for k, v := range snap.ProposalState {
		sections[k] = v
	}

	// Prefer the full persisted output over the snapshot preview.
	for section, key := range snap.ContentKeys {
		data, err := c.facade.Objects.GetBlob(ctx, key)
		if err != nil {
			c.logger.Warn("failed to load full section content, using preview",
				zap.String("key", key), zap.Error(err))
			continue
		}
		sections[section] = string(data)
	}

	if desc, ok := sections["diagram"]; ok && c.diagrams != nil {
		path, err := c.diagrams.Render(ctx, sessionID, desc)
		if err != nil {
			c.logger.Warn("diagram rendering failed", zap.Error(err))
		} else {
			sections["diagram"] = fmt.Sprintf("%s\n\n[rendered diagram: %s]", desc, path)
		}
	}

	ordered := orderSections(sections)

	path, err := c.renderer.Render(ctx, sessionID, ordered, format)
	if err != nil {
		return "", fmt.Errorf("render proposal: %w", err)
	}

	c.logger.Info("proposal compiled",
		zap.String("session_id", sessionID),
		zap.String("path", path),
	)
	return path, nil
}

func orderSections(sections map[string]string) []Section {
	rank := make(map[string]int, len(sectionOrder))
	for i, name := range sectionOrder {
		rank[name] = i
	}

	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, iKnown := rank[names[i]]
		rj, jKnown := rank[names[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return names[i] < names[j]
		}
	})

	out := make([]Section, 0, len(names))
	for _, name := range names {
		out = append(out, Section{Title: title(name), Content: sections[name]})
	}
	return out
}

func title(section string) string {
	words := strings.Split(section, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
