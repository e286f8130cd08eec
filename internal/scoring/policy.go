package scoring

// levelThresholds maps cumulative points to levels 1..10. The table is
// monotone: once points cross a threshold the level never goes back down,
// because points never decrease in the normal flow.
var levelThresholds = []int{100, 300, 600, 1000, 1500, 2100, 2800, 3600, 4500}

// LevelForPoints returns the level for a cumulative point total.
func LevelForPoints(points int) int {
	for i, threshold := range levelThresholds {
		if points < threshold {
			return i + 1
		}
	}
	return len(levelThresholds) + 1
}

// RewardPolicy is the flat reward: a fixed number of points for a correct
// answer, zero otherwise. No partial credit, no speed bonus, no penalties.
type RewardPolicy struct {
	RewardPoints int
}

// Points returns the award for one answer.
func (p RewardPolicy) Points(correct bool) int {
	if correct {
		return p.RewardPoints
	}
	return 0
}
