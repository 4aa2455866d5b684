// Package delivery makes arbitrarily large text results safe to return over
// a transport with a hard per-message size ceiling.
package delivery

import "fmt"

// Chunk splits text into fixed-size windows of at most maxSize characters,
// returning at most maxCount chunks. When the natural split would exceed
// maxCount, the first maxCount-1 windows are kept verbatim and the final
// chunk is a truncation notice stating how many characters were omitted.
// The result is deterministic and restartable from any index.
func Chunk(text string, maxSize, maxCount int) []string {
	if text == "" || maxSize <= 0 || maxCount <= 0 {
		return nil
	}

	runes := []rune(text)
	total := (len(runes) + maxSize - 1) / maxSize

	if total <= maxCount {
		chunks := make([]string, 0, total)
		for start := 0; start < len(runes); start += maxSize {
			end := start + maxSize
			if end > len(runes) {
				end = len(runes)
			}
			chunks = append(chunks, string(runes[start:end]))
		}
		return chunks
	}

	keep := maxCount - 1
	chunks := make([]string, 0, maxCount)
	for i := 0; i < keep; i++ {
		chunks = append(chunks, string(runes[i*maxSize:(i+1)*maxSize]))
	}
	omitted := len(runes) - keep*maxSize
	chunks = append(chunks, fmt.Sprintf("[output truncated: %d characters omitted]", omitted))
	return chunks
}
