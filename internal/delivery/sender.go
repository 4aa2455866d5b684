package delivery

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/rfpforge/rfpforge/internal/config"
)

// ErrGaveUp reports that a chunk could not be delivered within the retry
// bound. A best-effort truncated notice has already been attempted; the
// chunk was not silently dropped.
var ErrGaveUp = errors.New("delivery gave up after retries")

// fallbackNoticeChars bounds the preview embedded in the give-up notice.
const fallbackNoticeChars = 200

// Transport delivers a single message with a hard size ceiling per call.
type Transport interface {
	Send(ctx context.Context, message string) error
}

// Sender pushes chunk sequences through a transport, retrying transient
// failures with linearly increasing backoff and pacing successive sends so
// the transport is never hit with a burst.
type Sender struct {
	transport  Transport
	maxRetries int
	baseDelay  time.Duration
	pacing     time.Duration
	chunkSize  int
	chunkCount int
	logger     *zap.Logger
}

// NewSender builds a sender from delivery configuration.
func NewSender(cfg config.DeliveryConfig, transport Transport, logger *zap.Logger) *Sender {
	return &Sender{
		transport:  transport,
		maxRetries: cfg.MaxRetries,
		baseDelay:  time.Duration(cfg.BaseDelayMs) * time.Millisecond,
		pacing:     time.Duration(cfg.PacingDelayMs) * time.Millisecond,
		chunkSize:  cfg.MaxChunkSize,
		chunkCount: cfg.MaxChunkCount,
		logger:     logger,
	}
}

// SendAll chunks text and delivers every chunk in order, pausing the pacing
// delay between sends regardless of outcome. It returns ErrGaveUp if any
// chunk exhausted its retries.
func (s *Sender) SendAll(ctx context.Context, text string) error {
	var failed bool
	for i, chunk := range Chunk(text, s.chunkSize, s.chunkCount) {
		if i > 0 {
			if err := sleep(ctx, s.pacing); err != nil {
				return err
			}
		}
		if err := s.SendWithRetry(ctx, chunk); err != nil {
			if errors.Is(err, ErrGaveUp) {
				failed = true
				continue
			}
			return err
		}
	}
	if failed {
		return ErrGaveUp
	}
	return nil
}

// SendWithRetry delivers one chunk, retrying transient failures up to the
// retry bound with delay base*attempt. After exhausting retries it emits a
// truncated best-effort notice instead of dropping the chunk silently.
func (s *Sender) SendWithRetry(ctx context.Context, chunk string) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err := s.transport.Send(ctx, chunk)
		if err == nil {
			return nil
		}
		lastErr = err

		if !transient(err) {
			s.logger.Warn("transport rejected chunk", zap.Error(err))
			break
		}

		s.logger.Warn("transport send failed, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < s.maxRetries {
			if serr := sleep(ctx, s.baseDelay*time.Duration(attempt)); serr != nil {
				return serr
			}
		}
	}

	s.giveUpNotice(ctx, chunk, lastErr)
	return ErrGaveUp
}

// giveUpNotice sends a truncated fallback so the receiver learns content
// was lost. Its own failure is only logged.
func (s *Sender) giveUpNotice(ctx context.Context, chunk string, cause error) {
	preview := chunk
	if runes := []rune(preview); len(runes) > fallbackNoticeChars {
		preview = string(runes[:fallbackNoticeChars]) + "..."
	}
	notice := "[delivery failed, truncated content follows]\n" + preview
	if err := s.transport.Send(ctx, notice); err != nil {
		s.logger.Error("failed to deliver give-up notice",
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
	}
}

// transient reports whether the transport failure is worth retrying:
// connection and timeout classes, or errors the transport marks temporary.
func transient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var tmp interface{ Temporary() bool }
	if errors.As(err, &tmp) {
		return tmp.Temporary()
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
