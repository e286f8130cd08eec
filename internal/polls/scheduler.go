package polls

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Scheduler dispatches a poll to a fixed chat on a fixed interval. Deployments
// that drive dispatch from the admin API alone simply never start it.
type Scheduler struct {
	dispatcher *Dispatcher
	chatID     int64
	interval   time.Duration
	logger     *zap.Logger
}

// NewScheduler creates a scheduler.
func NewScheduler(dispatcher *Dispatcher, chatID int64, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		dispatcher: dispatcher,
		chatID:     chatID,
		interval:   interval,
		logger:     logger,
	}
}

// Run dispatches on each tick until ctx is done. An empty question bank is
// logged and skipped; the next tick tries again.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("poll scheduler started",
		zap.Int64("chat_id", s.chatID),
		zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("poll scheduler stopping")
			return
		case <-ticker.C:
			if _, err := s.dispatcher.DispatchNext(ctx, s.chatID); err != nil {
				if errors.Is(err, ErrNoQuestions) {
					s.logger.Warn("no questions to dispatch")
					continue
				}
				s.logger.Error("scheduled dispatch failed", zap.Error(err))
			}
		}
	}
}
