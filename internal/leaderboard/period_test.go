package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	for input, want := range map[string]Period{
		"":        PeriodAllTime,
		"all":     PeriodAllTime,
		"alltime": PeriodAllTime,
		"weekly":  PeriodWeekly,
		"week":    PeriodWeekly,
		"monthly": PeriodMonthly,
		"month":   PeriodMonthly,
	} {
		got, err := ParsePeriod(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParsePeriod("yearly")
	assert.Error(t, err)
}

func TestPeriodSince(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.AddDate(0, 0, -7), PeriodWeekly.since(now))
	assert.Equal(t, now.AddDate(0, -1, 0), PeriodMonthly.since(now))
	assert.True(t, PeriodAllTime.since(now).IsZero())
}
