package polls

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quizrally/backend/internal/models"
	"github.com/quizrally/backend/internal/questions"
	"github.com/quizrally/backend/internal/realtime"
	"github.com/quizrally/backend/internal/storage"
)

// PollSender sends a quiz poll and returns the Telegram poll id.
type PollSender interface {
	SendQuizPoll(ctx context.Context, chatID int64, question string, options []string, correctIndex int, explanation string) (pollID string, messageID int64, err error)
}

// ErrNoQuestions is returned when the bank has no active questions left.
var ErrNoQuestions = errors.New("no active questions available")

// Dispatcher sends questions to chats as quiz polls and registers the
// resulting poll ids so answers can be matched back.
type Dispatcher struct {
	questions *questions.Repository
	polls     *Repository
	sender    PollSender
	hub       *realtime.Hub
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(questionsRepo *questions.Repository, pollsRepo *Repository, sender PollSender, hub *realtime.Hub, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		questions: questionsRepo,
		polls:     pollsRepo,
		sender:    sender,
		hub:       hub,
		logger:    logger,
	}
}

// DispatchNext picks the least recently used active question and sends it.
func (d *Dispatcher) DispatchNext(ctx context.Context, chatID int64) (*models.Poll, error) {
	q, err := d.questions.PickNext(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoQuestions
		}
		return nil, err
	}
	return d.Dispatch(ctx, q, chatID)
}

// DispatchQuestion sends a specific question to a chat.
func (d *Dispatcher) DispatchQuestion(ctx context.Context, questionID uuid.UUID, chatID int64) (*models.Poll, error) {
	q, err := d.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	return d.Dispatch(ctx, q, chatID)
}

// Dispatch sends the question as a quiz poll, registers the poll id mapping
// and logs the attempt. Registration failure after a successful send is a
// hard error: an unregistered poll can never be scored, so the caller has to
// know.
func (d *Dispatcher) Dispatch(ctx context.Context, q *models.Question, chatID int64) (*models.Poll, error) {
	pollID, messageID, err := d.sender.SendQuizPoll(ctx, chatID, q.Text, q.Options, q.CorrectIndex, q.Explanation)
	if err != nil {
		d.logSend(ctx, q.ID, chatID, false, err.Error())
		return nil, fmt.Errorf("send poll: %w", err)
	}

	poll := &models.Poll{
		PollID:       pollID,
		QuestionID:   q.ID,
		ChatID:       chatID,
		Options:      q.Options,
		CorrectIndex: q.CorrectIndex,
	}
	if err := d.polls.Register(ctx, poll); err != nil {
		d.logSend(ctx, q.ID, chatID, false, "sent but not registered: "+err.Error())
		return nil, fmt.Errorf("register poll %s: %w", pollID, err)
	}

	d.logSend(ctx, q.ID, chatID, true, "")
	if err := d.questions.MarkSent(ctx, q.ID); err != nil {
		d.logger.Warn("failed to bump send count", zap.String("question_id", q.ID.String()), zap.Error(err))
	}

	d.logger.Info("poll dispatched",
		zap.String("poll_id", pollID),
		zap.String("question_id", q.ID.String()),
		zap.Int64("chat_id", chatID),
		zap.Int64("message_id", messageID))
	if d.hub != nil {
		d.hub.BroadcastToChatAndPublish(chatID, "poll_dispatched", map[string]interface{}{
			"poll_id": pollID, "question_id": q.ID, "text": q.Text,
		})
	}
	return poll, nil
}

func (d *Dispatcher) logSend(ctx context.Context, questionID uuid.UUID, chatID int64, success bool, errMsg string) {
	err := d.polls.LogSend(ctx, &models.SendLog{
		QuestionID: questionID,
		ChatID:     chatID,
		Success:    success,
		ErrorMsg:   errMsg,
	})
	if err != nil {
		d.logger.Warn("failed to write send log", zap.Error(err))
	}
}
