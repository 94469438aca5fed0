package notify

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// notificationTimeout bounds one channel delivery
	notificationTimeout = 30 * time.Second
)

type contextKey string

const requestIDKey contextKey = "request_id"

// Service dispatches reports to all enabled channels asynchronously.
// Dispatch returns immediately; failures are logged, never propagated.
type Service struct {
	channels []Channel
	wg       sync.WaitGroup
}

// NewService creates a dispatch service over the given channels.
func NewService(channels []Channel) *Service {
	return &Service{channels: channels}
}

// Dispatch sends the report to every enabled channel in the background.
func (s *Service) Dispatch(report Report) {
	requestID := uuid.NewString()

	for _, ch := range s.channels {
		if !ch.IsEnabled() {
			continue
		}

		s.wg.Add(1)
		go func(ch Channel) {
			defer s.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("notification channel panicked",
						slog.String("channel", ch.Name()),
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())))
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
			defer cancel()
			ctx = context.WithValue(ctx, requestIDKey, requestID)

			if err := ch.Send(ctx, report); err != nil {
				slog.Error("notification failed",
					slog.String("channel", ch.Name()),
					slog.String("request_id", requestID),
					slog.Any("error", err))
				return
			}
			slog.Info("notification sent",
				slog.String("channel", ch.Name()),
				slog.String("request_id", requestID))
		}(ch)
	}
}

// Shutdown waits for in-flight notifications to finish or the context to
// expire.
func (s *Service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notify shutdown: %w", ctx.Err())
	}
}
