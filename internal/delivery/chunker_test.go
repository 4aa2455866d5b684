package delivery

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkWithinLimits(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxSize  int
		maxCount int
		want     []string
	}{
		{
			name:     "short text single chunk",
			text:     "hello",
			maxSize:  10,
			maxCount: 3,
			want:     []string{"hello"},
		},
		{
			name:     "exact boundary",
			text:     "abcdef",
			maxSize:  3,
			maxCount: 2,
			want:     []string{"abc", "def"},
		},
		{
			name:     "uneven final chunk",
			text:     "abcdefg",
			maxSize:  3,
			maxCount: 3,
			want:     []string{"abc", "def", "g"},
		},
		{
			name:     "empty text",
			text:     "",
			maxSize:  3,
			maxCount: 3,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chunk(tt.text, tt.maxSize, tt.maxCount))
		})
	}
}

func TestChunkTruncation(t *testing.T) {
	// Five full windows against a cap of three: two verbatim chunks plus a
	// terminal notice naming the true remainder.
	maxSize := 100
	text := strings.Repeat("x", 5*maxSize)

	chunks := Chunk(text, maxSize, 3)
	require.Len(t, chunks, 3)

	assert.Equal(t, strings.Repeat("x", maxSize), chunks[0])
	assert.Equal(t, strings.Repeat("x", maxSize), chunks[1])
	assert.Contains(t, chunks[2], fmt.Sprintf("%d characters omitted", 3*maxSize))
}

func TestChunkRoundTrip(t *testing.T) {
	// Concatenating all chunks (minus a terminal notice) must reproduce a
	// prefix of the original, and the count never exceeds the cap.
	texts := []string{
		"short",
		strings.Repeat("abc", 50),
		strings.Repeat("long input ", 500),
	}

	for _, text := range texts {
		for _, maxCount := range []int{1, 2, 5, 50} {
			chunks := Chunk(text, 7, maxCount)
			require.LessOrEqual(t, len(chunks), maxCount)

			joined := strings.Join(chunks, "")
			if len(chunks) > 0 && strings.HasPrefix(chunks[len(chunks)-1], "[output truncated") {
				joined = strings.Join(chunks[:len(chunks)-1], "")
			}
			assert.True(t, strings.HasPrefix(text, joined),
				"chunks must reassemble into a prefix (maxCount=%d)", maxCount)
		}
	}
}

func TestChunkDegenerateLimits(t *testing.T) {
	assert.Nil(t, Chunk("text", 0, 3))
	assert.Nil(t, Chunk("text", 3, 0))

	// A cap of one turns an oversized text into a single notice chunk.
	chunks := Chunk(strings.Repeat("y", 10), 3, 1)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "10 characters omitted")
}
