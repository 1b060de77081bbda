package scheduler

import (
	"fmt"
	"strings"

	"brandquiz-bot/internal/domain"
	"brandquiz-bot/internal/i18n"
)

var medals = []string{"🥇", "🥈", "🥉"}

// renderWeeklyPost formats the group leaderboard post. Group chats get the
// default language.
func renderWeeklyPost(rows []domain.LeaderboardRow, displayName func(int64) string) string {
	if len(rows) == 0 {
		return i18n.Text(i18n.LeaderboardEmpty, domain.DefaultLanguage)
	}
	var b strings.Builder
	b.WriteString(i18n.Text(i18n.LeaderboardTitle, domain.DefaultLanguage))
	for i, row := range rows {
		b.WriteString("\n")
		if i < len(medals) {
			b.WriteString(medals[i])
		} else {
			fmt.Fprintf(&b, "%d.", i+1)
		}
		fmt.Fprintf(&b, " %s — %d", displayName(row.TelegramID), row.Points)
	}
	return b.String()
}
