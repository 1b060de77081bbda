package telegram

import (
	"fmt"
	"strings"

	"brandquiz-bot/internal/domain"
	"brandquiz-bot/internal/i18n"
)

var medals = []string{"🥇", "🥈", "🥉"}

// renderCard formats a question for delivery. The header is
// language-neutral; choices travel in the inline keyboard, not the
// message body.
func renderCard(card domain.QuestionCard) string {
	return fmt.Sprintf("<b>Q%d/%d.</b> %s", card.Number, card.Total, card.Prompt)
}

// renderFeedback formats the verdict line plus the explanation, if any.
func renderFeedback(fb domain.AnswerFeedback, lang domain.Language) string {
	var b strings.Builder
	if fb.Correct {
		b.WriteString(i18n.Text(i18n.Right, lang))
	} else {
		b.WriteString(i18n.Text(i18n.Wrong, lang))
	}
	if fb.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(i18n.Text(i18n.Explanation, lang))
		b.WriteString(" ")
		b.WriteString(fb.Explanation)
	}
	return b.String()
}

func renderSummary(s domain.SessionSummary, lang domain.Language) string {
	return fmt.Sprintf(i18n.Text(i18n.SessionEnd, lang), s.Score, s.Total, s.Percent())
}

func renderStats(stats domain.LifetimeStats, lang domain.Language) string {
	return fmt.Sprintf(i18n.Text(i18n.StatsHeader, lang), stats.Attempts, stats.Points)
}

// renderLeaderboard formats ranked rows with medals for the top three.
// displayName resolves a Telegram id to something printable.
func renderLeaderboard(rows []domain.LeaderboardRow, lang domain.Language, displayName func(int64) string) string {
	if len(rows) == 0 {
		return i18n.Text(i18n.LeaderboardEmpty, lang)
	}
	var b strings.Builder
	b.WriteString(i18n.Text(i18n.LeaderboardTitle, lang))
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
