package telegram

import (
	"errors"
	"strings"

	"brandquiz-bot/internal/domain"
)

const addQuestionUsage = "Format error. Send as:\n/addq TOPIC|Q_RU|Q_UZ|A_RU*A_UZ*1;A_RU*A_UZ*0;...|EXP_RU|EXP_UZ"

var errBadQuestionFormat = errors.New("bad question format")

// parseQuestionPayload parses the compact /addq argument:
//
//	TOPIC|Q_RU|Q_UZ|A1_RU*A1_UZ*1;A2_RU*A2_UZ*0;...|EXP_RU|EXP_UZ
//
// Exactly one choice must carry the correct flag.
func parseQuestionPayload(payload string) (topicName string, q domain.Question, err error) {
	parts := strings.Split(payload, "|")
	if len(parts) != 6 {
		return "", domain.Question{}, errBadQuestionFormat
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	topicName = parts[0]
	q.TextRU = parts[1]
	q.TextUZ = parts[2]
	q.ExplanationRU = parts[4]
	q.ExplanationUZ = parts[5]
	if topicName == "" || q.TextRU == "" {
		return "", domain.Question{}, errBadQuestionFormat
	}

	correct := 0
	for _, spec := range strings.Split(parts[3], ";") {
		fields := strings.Split(spec, "*")
		if len(fields) != 3 {
			return "", domain.Question{}, errBadQuestionFormat
		}
		choice := domain.Choice{
			TextRU:  strings.TrimSpace(fields[0]),
			TextUZ:  strings.TrimSpace(fields[1]),
			Correct: strings.TrimSpace(fields[2]) == "1",
		}
		if choice.TextRU == "" {
			return "", domain.Question{}, errBadQuestionFormat
		}
		if choice.Correct {
			correct++
		}
		q.Choices = append(q.Choices, choice)
	}
	if len(q.Choices) < 2 || correct != 1 {
		return "", domain.Question{}, errBadQuestionFormat
	}
	return topicName, q, nil
}
