package feed

import (
	"context"
	"time"

	"promofeed/internal/constants"
	apperrors "promofeed/pkg/errors"
)

// StartRefresher refreshes the default frame and every frame served so far on each tick.
// It blocks until ctx is done.
func (s *Service) StartRefresher(ctx context.Context) error {
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = constants.DefaultRefreshInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.refreshAll(ctx)

	for {
		select {
		case <-ticker.C:
			s.refreshAll(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Service) refreshAll(ctx context.Context) {
	for _, frame := range s.refreshFrames() {
		if ctx.Err() != nil {
			return
		}
		s.safeRefresh(ctx, frame)
	}
}

func (s *Service) refreshFrames() []string {
	def := s.cfg.DefaultFrame
	if def == "" {
		def = constants.FrameAll
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	frames := []string{def}
	for _, f := range s.fetchedFramesLocked() {
		if f != def {
			frames = append(frames, f)
		}
	}
	return frames
}

func (s *Service) safeRefresh(ctx context.Context, frame string) {
	defer func() {
		if r := recover(); r != nil {
			_ = apperrors.RecoverPanicWithCallback(r, func(err error) {
				s.logger.ErrorwCtx(ctx, "Panic during feed refresh", "timeframe", frame, "error", err)
			})
		}
	}()

	if _, err := s.Refresh(ctx, frame); err != nil {
		s.logger.WarnwCtx(ctx, "Scheduled refresh failed", "timeframe", frame, "error", err)
	}
}
