package webhook

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quizrally/backend/internal/answers"
	"github.com/quizrally/backend/internal/leaderboard"
	"github.com/quizrally/backend/internal/models"
	"github.com/quizrally/backend/internal/storage"
	"github.com/quizrally/backend/internal/telegram"
)

type fakeDirectory struct {
	users map[int64]*models.User
}

func (f *fakeDirectory) FindOrCreateWithBonus(_ context.Context, p models.Profile, bonus int) (*models.User, bool, error) {
	if u, ok := f.users[p.TelegramID]; ok {
		return u, false, nil
	}
	u := &models.User{ID: uuid.New(), TelegramID: p.TelegramID, FirstName: p.FirstName, TotalPoints: bonus, Level: 1}
	f.users[p.TelegramID] = u
	return u, true, nil
}

func (f *fakeDirectory) GetByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	if u, ok := f.users[telegramID]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

type fakeStats struct {
	stats answers.Stats
}

func (f *fakeStats) StatsByUser(context.Context, uuid.UUID) (answers.Stats, error) {
	return f.stats, nil
}

type fakeRanking struct {
	entries []leaderboard.Entry
	rank    int
}

func (f *fakeRanking) Top(context.Context, leaderboard.Period, int) ([]leaderboard.Entry, error) {
	return f.entries, nil
}

func (f *fakeRanking) Rank(context.Context, int64) (int, error) {
	return f.rank, nil
}

type fakeSender struct {
	sent []string
}

func (f *fakeSender) SendMessage(_ context.Context, _ int64, text, _ string) error {
	f.sent = append(f.sent, text)
	return nil
}

func newCommandsFixture() (*Commands, *fakeDirectory, *fakeSender) {
	dir := &fakeDirectory{users: make(map[int64]*models.User)}
	sender := &fakeSender{}
	cm := NewCommands(dir,
		&fakeStats{stats: answers.Stats{Total: 10, Correct: 7}},
		&fakeRanking{rank: 3, entries: []leaderboard.Entry{
			{Rank: 1, FirstName: "Ana", Points: 500, Level: 3},
			{Rank: 2, Username: "bob", Points: 300, Level: 2},
		}},
		sender, 25, zap.NewNop())
	return cm, dir, sender
}

func msg(text string) *telegram.Message {
	return &telegram.Message{
		From: &telegram.User{ID: 42, FirstName: "Ana"},
		Chat: telegram.Chat{ID: -100},
		Text: text,
	}
}

func TestCommandName(t *testing.T) {
	assert.Equal(t, "start", commandName("/start"))
	assert.Equal(t, "stats", commandName("/stats@QuizBot extra"))
	assert.Equal(t, "help", commandName("/HELP"))
	assert.Equal(t, "", commandName("hello"))
}

func TestStartGrantsWelcomeBonusOnce(t *testing.T) {
	cm, dir, sender := newCommandsFixture()
	ctx := context.Background()

	cm.Handle(ctx, msg("/start"))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "25")
	assert.Equal(t, 25, dir.users[42].TotalPoints)

	cm.Handle(ctx, msg("/start"))
	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[1], "Welcome back")
	assert.Equal(t, 25, dir.users[42].TotalPoints)
}

func TestStatsForUnknownUser(t *testing.T) {
	cm, _, sender := newCommandsFixture()

	cm.Handle(context.Background(), msg("/stats"))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "No stats yet")
}

func TestStatsForKnownUser(t *testing.T) {
	cm, dir, sender := newCommandsFixture()
	dir.users[42] = &models.User{ID: uuid.New(), TelegramID: 42, FirstName: "Ana", TotalPoints: 350, Level: 3, Streak: 2, BestStreak: 5}

	cm.Handle(context.Background(), msg("/stats"))
	require.Len(t, sender.sent, 1)
	reply := sender.sent[0]
	assert.Contains(t, reply, "350")
	assert.Contains(t, reply, "#3")
	assert.Contains(t, reply, "7/10")
}

func TestRankingListsTopPlayers(t *testing.T) {
	cm, _, sender := newCommandsFixture()

	cm.Handle(context.Background(), msg("/ranking"))
	require.Len(t, sender.sent, 1)
	reply := sender.sent[0]
	assert.Contains(t, reply, "🥇 Ana")
	assert.Contains(t, reply, "@bob")
}

func TestNonCommandTextIgnored(t *testing.T) {
	cm, _, sender := newCommandsFixture()
	cm.Handle(context.Background(), msg("just chatting"))
	assert.Empty(t, sender.sent)
}

func TestWelcomeNewMembersSkipsBots(t *testing.T) {
	cm, dir, sender := newCommandsFixture()
	m := &telegram.Message{
		Chat: telegram.Chat{ID: -100},
		NewChatMembers: []telegram.User{
			{ID: 7, FirstName: "Eva"},
			{ID: 8, FirstName: "Robo", IsBot: true},
		},
	}
	cm.WelcomeNewMembers(context.Background(), m)

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Eva")
	assert.Contains(t, dir.users, int64(7))
	assert.NotContains(t, dir.users, int64(8))
}
