// Package export assembles accumulated proposal sections into output
// documents. It stands in for the external DOCX/PDF rendering collaborator
// behind the coordinator's renderer interfaces.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rfpforge/rfpforge/internal/coordinator"
)

// FileRenderer writes the assembled proposal to a file under dir, named
// {sessionID}_proposal.{format}.
type FileRenderer struct {
	dir string
}

// NewFileRenderer builds a renderer rooted at dir.
func NewFileRenderer(dir string) *FileRenderer {
	return &FileRenderer{dir: dir}
}

// Render writes the sections in order and returns the output path.
func (r *FileRenderer) Render(ctx context.Context, sessionID string, sections []coordinator.Section, format string) (string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Proposal\n\n")
	fmt.Fprintf(&b, "Session: %s\nGenerated: %s\n\n", sessionID, time.Now().Format(time.RFC3339))
	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Title, s.Content)
	}

	path := filepath.Join(r.dir, fmt.Sprintf("%s_proposal.%s", sessionID, format))
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("write proposal: %w", err)
	}
	return path, nil
}

// TextDiagramRenderer writes diagram descriptions to a text artifact so the
// compiled document can reference them. A real image renderer replaces it
// in deployments that can draw.
type TextDiagramRenderer struct {
	dir string
}

// NewTextDiagramRenderer builds a diagram renderer rooted at dir.
func NewTextDiagramRenderer(dir string) *TextDiagramRenderer {
	return &TextDiagramRenderer{dir: dir}
}

// Render writes the description and returns the artifact path.
func (r *TextDiagramRenderer) Render(ctx context.Context, sessionID, description string) (string, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("create diagram directory: %w", err)
	}
	path := filepath.Join(r.dir, sessionID+"_diagram.txt")
	if err := os.WriteFile(path, []byte(description), 0644); err != nil {
		return "", fmt.Errorf("write diagram: %w", err)
	}
	return path, nil
}
