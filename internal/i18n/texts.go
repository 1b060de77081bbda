// Package i18n holds the RU/UZ message table for user-facing bot text.
package i18n

import "brandquiz-bot/internal/domain"

// Key names a translatable message.
type Key string

const (
	ChooseLang       Key = "choose_lang"
	Welcome          Key = "welcome"
	PickTopic        Key = "pick_topic"
	NoQuestions      Key = "no_questions"
	SessionEnd       Key = "session_end"
	Right            Key = "right"
	Wrong            Key = "wrong"
	Explanation      Key = "explanation"
	DailyOn          Key = "daily_on"
	DailyOff         Key = "daily_off"
	DailyNudge       Key = "daily_nudge"
	StatsHeader      Key = "stats_header"
	LeaderboardTitle Key = "leaderboard_title"
	LeaderboardEmpty Key = "leaderboard_empty"
	SessionLost      Key = "session_lost"
)

var texts = map[Key]map[domain.Language]string{
	ChooseLang: {
		domain.LangRU: "Выберите язык / Tilni tanlang:",
		domain.LangUZ: "Tilni tanlang / Выберите язык:",
	},
	Welcome: {
		domain.LangRU: "Привет! Это обучающий бот. Выберите /test чтобы начать тест, /leaderboard — рейтинг, /stats — моя статистика.",
		domain.LangUZ: "Salom! Bu o‘quv bot. Testni boshlash uchun /test, reyting — /leaderboard, mening statistikam — /stats.",
	},
	PickTopic: {
		domain.LangRU: "Выберите бренд или MIX:",
		domain.LangUZ: "Brend yoki MIX ni tanlang:",
	},
	NoQuestions: {
		domain.LangRU: "Пока нет вопросов для этого бренда.",
		domain.LangUZ: "Hozircha bu brend uchun savollar yo‘q.",
	},
	SessionEnd: {
		domain.LangRU: "Тест окончен! Ваш результат: <b>%d/%d</b> (верных %d%%).",
		domain.LangUZ: "Test tugadi! Natijangiz: <b>%d/%d</b> (to‘g‘ri %d%%).",
	},
	Right: {
		domain.LangRU: "Верно ✅",
		domain.LangUZ: "To‘g‘ri ✅",
	},
	Wrong: {
		domain.LangRU: "Неверно ❌",
		domain.LangUZ: "Noto‘g‘ri ❌",
	},
	Explanation: {
		domain.LangRU: "Пояснение:",
		domain.LangUZ: "Izoh:",
	},
	DailyOn: {
		domain.LangRU: "Ежедневные 5 вопросов включены.",
		domain.LangUZ: "Har kuni 5 savol yoqildi.",
	},
	DailyOff: {
		domain.LangRU: "Ежедневные 5 вопросов отключены.",
		domain.LangUZ: "Har kuni 5 savol o‘chirildi.",
	},
	DailyNudge: {
		domain.LangRU: "🔔 5 быстрых вопросов! Нажмите /test и выберите MIX.",
		domain.LangUZ: "🔔 5 ta tezkor savol! /test ni bosing va MIX ni tanlang.",
	},
	StatsHeader: {
		domain.LangRU: "📊 Тестов: %d\n✨ Очков: %d",
		domain.LangUZ: "📊 Testlar: %d\n✨ Ochkolar: %d",
	},
	LeaderboardTitle: {
		domain.LangRU: "🏆 Рейтинг недели",
		domain.LangUZ: "🏆 Hafta reytingi",
	},
	LeaderboardEmpty: {
		domain.LangRU: "🏆 Пока нет результатов за эту неделю.",
		domain.LangUZ: "🏆 Bu hafta uchun hali natijalar yo‘q.",
	},
	SessionLost: {
		domain.LangRU: "Активного теста нет. Нажмите /test, чтобы начать.",
		domain.LangUZ: "Faol test yo‘q. Boshlash uchun /test ni bosing.",
	},
}

// Text returns the message for the given language, falling back to Russian.
func Text(k Key, lang domain.Language) string {
	byLang, ok := texts[k]
	if !ok {
		return string(k)
	}
	if s, ok := byLang[lang]; ok {
		return s
	}
	return byLang[domain.DefaultLanguage]
}
