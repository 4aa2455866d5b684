package coordinator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProposalStatePreviews(t *testing.T) {
	p := NewProposalState()
	p.SetSource(strings.Repeat("s", 50))
	p.Set("financial", strings.Repeat("f", 50))
	p.Set("general", "short")

	assert.Equal(t, strings.Repeat("s", 10), p.SourcePreview(10))

	previews := p.SectionPreviews(10)
	assert.Equal(t, strings.Repeat("f", 10), previews["financial"])
	assert.Equal(t, "short", previews["general"])
}

func TestProposalStatePreviewsAreCopies(t *testing.T) {
	p := NewProposalState()
	p.Set("general", "original")

	previews := p.SectionPreviews(100)
	previews["general"] = "mutated"
	assert.Equal(t, "original", p.SectionPreviews(100)["general"])
}

func TestTruncateIsRuneSafe(t *testing.T) {
	assert.Equal(t, "héllo", truncate("héllo", 10))
	assert.Equal(t, "hé", truncate("héllo", 2))
	assert.Equal(t, "", truncate("héllo", 0))
	assert.Equal(t, "日本", truncate("日本語テキスト", 2))
}
