// Package scoring reconciles incoming poll answers against registered polls
// and applies the scoring consequences to the user ledger.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quizrally/backend/internal/models"
	"github.com/quizrally/backend/internal/storage"
)

// PollRegistry resolves a Telegram poll id to the poll it was dispatched as.
type PollRegistry interface {
	GetByPollID(ctx context.Context, pollID string) (*models.Poll, error)
}

// UserLedger is the durable per-user score state.
type UserLedger interface {
	// FindOrCreate returns the ledger row for the Telegram user, creating it
	// if absent. Must be idempotent under concurrent calls for the same id.
	FindOrCreate(ctx context.Context, profile models.Profile) (*models.User, error)
	// ApplyScore atomically adds delta to the user's points and updates the
	// streak counters; correct drives the streak direction.
	ApplyScore(ctx context.Context, userID uuid.UUID, delta int, correct bool) (*models.User, error)
}

// AnswerLog appends immutable answer records. Record reports false when the
// (poll, user) pair was already answered.
type AnswerLog interface {
	Record(ctx context.Context, a *models.Answer) (bool, error)
}

// Notifier delivers best-effort chat feedback. Implementations must not
// block on delivery and must swallow failures.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string)
}

// Outcome classifies a reconciliation.
type Outcome string

const (
	// OutcomeReconciled means the answer was scored and recorded.
	OutcomeReconciled Outcome = "reconciled"
	// OutcomeIgnored means the event was discarded without effect.
	OutcomeIgnored Outcome = "ignored"
)

// Ignore reasons.
const (
	ReasonUnknownPoll     = "unknown_poll"
	ReasonDuplicateAnswer = "duplicate_answer"
	ReasonNoSelection     = "no_selection"
)

// Result is the outcome of one reconciliation.
type Result struct {
	Outcome       Outcome
	Reason        string // set when Outcome is OutcomeIgnored
	ChatID        int64  // chat the poll was dispatched to
	IsCorrect     bool
	PointsAwarded int
	NewTotal      int
	Level         int
	Streak        int
}

// Reconciler matches poll answers to registered polls and scores them. It
// holds no state of its own; every decision is made from a fresh read.
type Reconciler struct {
	polls    PollRegistry
	users    UserLedger
	answers  AnswerLog
	notifier Notifier
	policy   RewardPolicy
	logger   *zap.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(polls PollRegistry, users UserLedger, answers AnswerLog, notifier Notifier, policy RewardPolicy, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		polls:    polls,
		users:    users,
		answers:  answers,
		notifier: notifier,
		policy:   policy,
		logger:   logger,
	}
}

// Reconcile processes one poll-answer event:
//
//  1. Look up the poll by Telegram poll id; unknown polls are ignored, not
//     errors (answers can arrive for polls sent before a wipe, or by other
//     bots in the chat).
//  2. Find or create the user ledger row.
//  3. Record the answer; a duplicate (poll, user) pair is dropped before any
//     points move, so re-delivered updates cannot double-score.
//  4. Apply the reward and notify the chat (best-effort).
//
// A persistence error at any step surfaces to the caller, which logs and
// drops the event; there is no retry and no compensating write.
func (r *Reconciler) Reconcile(ctx context.Context, pollID string, profile models.Profile, optionIDs []int) (Result, error) {
	if len(optionIDs) == 0 {
		// Retracted vote; Telegram sends an empty option_ids.
		return Result{Outcome: OutcomeIgnored, Reason: ReasonNoSelection}, nil
	}
	selected := optionIDs[0]

	poll, err := r.polls.GetByPollID(ctx, pollID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			r.logger.Debug("answer for untracked poll", zap.String("poll_id", pollID))
			return Result{Outcome: OutcomeIgnored, Reason: ReasonUnknownPoll}, nil
		}
		return Result{}, fmt.Errorf("poll lookup: %w", err)
	}

	isCorrect := selected == poll.CorrectIndex
	points := r.policy.Points(isCorrect)

	user, err := r.users.FindOrCreate(ctx, profile)
	if err != nil {
		return Result{}, fmt.Errorf("find or create user: %w", err)
	}

	inserted, err := r.answers.Record(ctx, &models.Answer{
		UserID:        user.ID,
		PollID:        poll.ID,
		SelectedIndex: selected,
		IsCorrect:     isCorrect,
		PointsAwarded: points,
		AnsweredAt:    time.Now(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("record answer: %w", err)
	}
	if !inserted {
		r.logger.Debug("duplicate answer dropped",
			zap.String("poll_id", pollID), zap.Int64("telegram_id", profile.TelegramID))
		return Result{Outcome: OutcomeIgnored, Reason: ReasonDuplicateAnswer}, nil
	}

	updated, err := r.users.ApplyScore(ctx, user.ID, points, isCorrect)
	if err != nil {
		return Result{}, fmt.Errorf("apply score: %w", err)
	}

	result := Result{
		Outcome:       OutcomeReconciled,
		ChatID:        poll.ChatID,
		IsCorrect:     isCorrect,
		PointsAwarded: points,
		NewTotal:      updated.TotalPoints,
		Level:         updated.Level,
		Streak:        updated.Streak,
	}
	r.notifier.Notify(ctx, poll.ChatID, FeedbackMessage(updated, result))
	return result, nil
}
