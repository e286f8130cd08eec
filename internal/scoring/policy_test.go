package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForPoints(t *testing.T) {
	cases := []struct {
		points int
		level  int
	}{
		{0, 1},
		{50, 1},
		{99, 1},
		{100, 2},
		{299, 2},
		{300, 3},
		{1000, 5},
		{4499, 9},
		{4500, 10},
		{999999, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelForPoints(tc.points), "points=%d", tc.points)
	}
}

func TestRewardPolicyPoints(t *testing.T) {
	policy := RewardPolicy{RewardPoints: 50}
	assert.Equal(t, 50, policy.Points(true))
	assert.Equal(t, 0, policy.Points(false))
}
