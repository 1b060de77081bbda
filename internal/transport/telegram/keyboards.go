package telegram

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"brandquiz-bot/internal/domain"
)

// Callback data prefixes. Answer payloads carry both the question and the
// choice so stale taps can be told apart from the current question.
const (
	cbLangPrefix   = "lang:"
	cbTopicPrefix  = "topic:"
	cbAnswerPrefix = "ans:"
)

func languageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇷🇺 Русский", cbLangPrefix+string(domain.LangRU)),
			tgbotapi.NewInlineKeyboardButtonData("🇺🇿 O‘zbekcha", cbLangPrefix+string(domain.LangUZ)),
		),
	)
}

func topicKeyboard(topics []domain.Topic) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎲 MIX", cbTopicPrefix+strconv.FormatInt(domain.MixedTopicID, 10)),
		),
	}
	for _, t := range topics {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t.Name, cbTopicPrefix+strconv.FormatInt(t.ID, 10)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func answerKeyboard(card domain.QuestionCard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(card.Choices))
	for _, choice := range card.Choices {
		data := fmt.Sprintf("%s%d:%d", cbAnswerPrefix, card.QuestionID, choice.ID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(choice.Label, data),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
