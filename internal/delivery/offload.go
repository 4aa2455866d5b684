package delivery

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rfpforge/rfpforge/internal/storage"
)

// offloadPreviewChars bounds the inline preview left behind when content is
// moved to the object store.
const offloadPreviewChars = 500

// Offloader moves content exceeding the payload ceiling into the object
// store, leaving a bounded summary and the blob key in its place.
type Offloader struct {
	objects storage.ObjectStore
	ceiling int
	logger  *zap.Logger
}

// NewOffloader builds an offloader over the given object store.
func NewOffloader(objects storage.ObjectStore, ceiling int, logger *zap.Logger) *Offloader {
	return &Offloader{objects: objects, ceiling: ceiling, logger: logger}
}

// OffloadIfOversized returns content unchanged when it fits under the
// ceiling. Otherwise it persists the full text and returns a short summary
// plus the blob key.
func (o *Offloader) OffloadIfOversized(ctx context.Context, sessionID, category, content string) (string, string, error) {
	runes := []rune(content)
	if len(runes) <= o.ceiling {
		return content, "", nil
	}

	key := storage.BlobKey(sessionID, category, time.Now())
	err := o.objects.PutBlob(ctx, key, []byte(content), "text/plain", map[string]string{
		"session_id": sessionID,
		"category":   category,
		"size":       strconv.Itoa(len(content)),
	})
	if err != nil {
		return "", "", err
	}

	o.logger.Info("offloaded oversized content",
		zap.String("key", key),
		zap.Int("chars", len(runes)),
	)

	previewLen := offloadPreviewChars
	if previewLen > len(runes) {
		previewLen = len(runes)
	}
	preview := string(runes[:previewLen])
	inline := fmt.Sprintf("%s...\n\n[full output: %d characters, stored at %s]", preview, len(runes), key)
	return inline, key, nil
}
