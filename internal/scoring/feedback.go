package scoring

import (
	"fmt"
	"strings"

	"github.com/quizrally/backend/internal/models"
)

// FeedbackMessage builds the HTML confirmation sent to the chat after an
// answer is reconciled.
func FeedbackMessage(user *models.User, res Result) string {
	var b strings.Builder
	if res.IsCorrect {
		fmt.Fprintf(&b, "✅ <b>Correct, %s!</b> +%d points\n", displayName(user), res.PointsAwarded)
	} else {
		fmt.Fprintf(&b, "❌ <b>Not this time, %s.</b>\n", displayName(user))
	}
	fmt.Fprintf(&b, "🏆 Total: <b>%d</b> | Level: <b>%d</b>", res.NewTotal, res.Level)
	if res.Streak > 1 {
		fmt.Fprintf(&b, " | 🔥 Streak: <b>%d</b>", res.Streak)
	}
	return b.String()
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
