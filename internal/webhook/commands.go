package webhook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quizrally/backend/internal/answers"
	"github.com/quizrally/backend/internal/leaderboard"
	"github.com/quizrally/backend/internal/models"
	"github.com/quizrally/backend/internal/storage"
	"github.com/quizrally/backend/internal/telegram"
)

// UserDirectory is the user lookup surface the bot commands need.
type UserDirectory interface {
	FindOrCreateWithBonus(ctx context.Context, p models.Profile, bonus int) (*models.User, bool, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
}

// StatsSource provides per-user answer statistics.
type StatsSource interface {
	StatsByUser(ctx context.Context, userID uuid.UUID) (answers.Stats, error)
}

// Ranking provides leaderboard views.
type Ranking interface {
	Top(ctx context.Context, period leaderboard.Period, limit int) ([]leaderboard.Entry, error)
	Rank(ctx context.Context, telegramID int64) (int, error)
}

// MessageSender sends bot replies.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text, parseMode string) error
}

// Commands implements the /start, /help, /stats and /ranking bot commands
// plus the new-member welcome.
type Commands struct {
	users        UserDirectory
	stats        StatsSource
	ranking      Ranking
	sender       MessageSender
	welcomeBonus int
	logger       *zap.Logger
}

// NewCommands creates the command router.
func NewCommands(users UserDirectory, stats StatsSource, ranking Ranking, sender MessageSender, welcomeBonus int, logger *zap.Logger) *Commands {
	return &Commands{
		users:        users,
		stats:        stats,
		ranking:      ranking,
		sender:       sender,
		welcomeBonus: welcomeBonus,
		logger:       logger,
	}
}

// Handle dispatches one command message. Non-command text is ignored.
func (cm *Commands) Handle(ctx context.Context, msg *telegram.Message) {
	cmd := commandName(msg.Text)
	if cmd == "" {
		return
	}
	var reply string
	switch cmd {
	case "start":
		reply = cm.start(ctx, msg)
	case "help":
		reply = helpText
	case "stats":
		reply = cm.statsReply(ctx, msg.From)
	case "ranking":
		reply = cm.rankingReply(ctx)
	default:
		return
	}
	cm.reply(ctx, msg.Chat.ID, reply)
}

// WelcomeNewMembers greets users added to the chat and seeds their ledger.
func (cm *Commands) WelcomeNewMembers(ctx context.Context, msg *telegram.Message) {
	for i := range msg.NewChatMembers {
		member := &msg.NewChatMembers[i]
		if member.IsBot {
			continue
		}
		user, created, err := cm.users.FindOrCreateWithBonus(ctx, models.Profile{
			TelegramID: member.ID,
			Username:   member.Username,
			FirstName:  member.FirstName,
		}, cm.welcomeBonus)
		if err != nil {
			cm.logger.Error("welcome failed", zap.Int64("telegram_id", member.ID), zap.Error(err))
			continue
		}
		if created {
			cm.reply(ctx, msg.Chat.ID, fmt.Sprintf(
				"👋 Welcome, <b>%s</b>! You start with <b>%d</b> points. Answer quiz polls to earn more.",
				displayName(user), user.TotalPoints))
		}
	}
}

func (cm *Commands) start(ctx context.Context, msg *telegram.Message) string {
	if msg.From == nil {
		return helpText
	}
	user, created, err := cm.users.FindOrCreateWithBonus(ctx, models.Profile{
		TelegramID: msg.From.ID,
		Username:   msg.From.Username,
		FirstName:  msg.From.FirstName,
	}, cm.welcomeBonus)
	if err != nil {
		cm.logger.Error("start failed", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		return "Something went wrong, please try again."
	}
	if created {
		return fmt.Sprintf("🎉 Welcome, <b>%s</b>! You start with <b>%d</b> points.\n\n%s",
			displayName(user), user.TotalPoints, helpText)
	}
	return fmt.Sprintf("Welcome back, <b>%s</b>! You have <b>%d</b> points.", displayName(user), user.TotalPoints)
}

func (cm *Commands) statsReply(ctx context.Context, from *telegram.User) string {
	if from == nil {
		return ""
	}
	user, err := cm.users.GetByTelegramID(ctx, from.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "No stats yet. Answer a quiz poll to get on the board!"
		}
		cm.logger.Error("stats lookup failed", zap.Int64("telegram_id", from.ID), zap.Error(err))
		return "Something went wrong, please try again."
	}
	st, err := cm.stats.StatsByUser(ctx, user.ID)
	if err != nil {
		cm.logger.Error("stats query failed", zap.Int64("telegram_id", from.ID), zap.Error(err))
		return "Something went wrong, please try again."
	}
	rank, err := cm.ranking.Rank(ctx, from.ID)
	if err != nil {
		cm.logger.Warn("rank query failed", zap.Int64("telegram_id", from.ID), zap.Error(err))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>%s</b>\n", displayName(user))
	fmt.Fprintf(&b, "🏆 Points: <b>%d</b> | Level: <b>%d</b>\n", user.TotalPoints, user.Level)
	if rank > 0 {
		fmt.Fprintf(&b, "🥇 Rank: <b>#%d</b>\n", rank)
	}
	if st.Total > 0 {
		fmt.Fprintf(&b, "✅ Answers: <b>%d/%d</b> correct (%.0f%%)\n", st.Correct, st.Total,
			100*float64(st.Correct)/float64(st.Total))
	}
	fmt.Fprintf(&b, "🔥 Streak: <b>%d</b> (best %d)", user.Streak, user.BestStreak)
	return b.String()
}

func (cm *Commands) rankingReply(ctx context.Context) string {
	entries, err := cm.ranking.Top(ctx, leaderboard.PeriodAllTime, 10)
	if err != nil {
		cm.logger.Error("leaderboard query failed", zap.Error(err))
		return "Something went wrong, please try again."
	}
	if len(entries) == 0 {
		return "The leaderboard is empty. Be the first to score!"
	}
	var b strings.Builder
	b.WriteString("🏆 <b>Leaderboard</b>\n")
	for _, e := range entries {
		name := e.FirstName
		if name == "" && e.Username != "" {
			name = "@" + e.Username
		}
		if name == "" {
			name = "player"
		}
		fmt.Fprintf(&b, "%s %s — %d pts (lvl %d)\n", medal(e.Rank), name, e.Points, e.Level)
	}
	return b.String()
}

func (cm *Commands) reply(ctx context.Context, chatID int64, text string) {
	if text == "" {
		return
	}
	if err := cm.sender.SendMessage(ctx, chatID, text, telegram.ParseModeHTML); err != nil {
		cm.logger.Warn("reply failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

const helpText = `🤖 <b>Commands</b>
/start — join the game
/stats — your points, level and streak
/ranking — top players
/help — this message

Answer the quiz polls in the chat to earn points.`

// commandName extracts the bare command from "/cmd@BotName args".
func commandName(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0][1:]
	if at := strings.Index(cmd, "@"); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd)
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", rank)
	}
}

func displayName(user *models.User) string {
	if user.FirstName != "" {
		return user.FirstName
	}
	if user.Username != "" {
		return "@" + user.Username
	}
	return "player"
}
