package cli

import (
	"context"

	"brandquiz-bot/internal/domain"
)

// contentWriter is implemented by both the Postgres content store and the
// in-memory static catalog.
type contentWriter interface {
	CreateTopic(ctx context.Context, name string) (domain.Topic, error)
	CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
}

type seedChoice struct {
	ru      string
	uz      string
	correct bool
}

type seedQuestion struct {
	topic   string
	ru      string
	uz      string
	expRU   string
	expUZ   string
	choices []seedChoice
}

// seedContent loads the starter question bank into the given store. Existing
// topics are reused, so reseeding only appends questions.
func seedContent(ctx context.Context, store contentWriter) (int, error) {
	seeded := 0
	for _, sq := range sampleQuestions() {
		topic, err := store.CreateTopic(ctx, sq.topic)
		if err != nil {
			return seeded, err
		}
		q := domain.Question{
			TopicID:       topic.ID,
			TextRU:        sq.ru,
			TextUZ:        sq.uz,
			ExplanationRU: sq.expRU,
			ExplanationUZ: sq.expUZ,
			Difficulty:    1,
		}
		for _, c := range sq.choices {
			q.Choices = append(q.Choices, domain.Choice{
				TextRU:  c.ru,
				TextUZ:  c.uz,
				Correct: c.correct,
			})
		}
		if _, err := store.CreateQuestion(ctx, q); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}

func sampleQuestions() []seedQuestion {
	return []seedQuestion{
		{
			topic: "Swatch",
			ru:    "Из какой страны бренд Swatch?",
			uz:    "Swatch brendi qaysi davlatdan?",
			expRU: "Swatch — швейцарский бренд, основан в 1983 году.",
			expUZ: "Swatch — Shveytsariya brendi, 1983-yilda asos solingan.",
			choices: []seedChoice{
				{ru: "Швейцария", uz: "Shveytsariya", correct: true},
				{ru: "Германия", uz: "Germaniya"},
				{ru: "Япония", uz: "Yaponiya"},
				{ru: "Франция", uz: "Fransiya"},
			},
		},
		{
			topic: "Swatch",
			ru:    "Какой материал часто используется в корпусах Swatch?",
			uz:    "Swatch korpuslarida qaysi material ko‘p ishlatiladi?",
			expRU: "Фирменный материал — биокерамика и пластик.",
			expUZ: "Brendning asosiy materiali — biokeramika va plastik.",
			choices: []seedChoice{
				{ru: "Биокерамика", uz: "Biokeramika", correct: true},
				{ru: "Золото", uz: "Oltin"},
				{ru: "Титан", uz: "Titan"},
				{ru: "Бронза", uz: "Bronza"},
			},
		},
		{
			topic: "Montblanc",
			ru:    "Чем знаменит бренд Montblanc прежде всего?",
			uz:    "Montblanc brendi eng avvalo nima bilan mashhur?",
			expRU: "Montblanc начинал с пишущих инструментов.",
			expUZ: "Montblanc yozuv qurollaridan boshlagan.",
			choices: []seedChoice{
				{ru: "Пишущие инструменты", uz: "Yozuv qurollari", correct: true},
				{ru: "Парфюмерия", uz: "Parfyumeriya"},
				{ru: "Обувь", uz: "Poyabzal"},
				{ru: "Очки", uz: "Ko‘zoynaklar"},
			},
		},
		{
			topic: "Montblanc",
			ru:    "Что символизирует звезда Montblanc?",
			uz:    "Montblanc yulduzi nimani anglatadi?",
			expRU: "Звезда — снежная вершина Монблана.",
			expUZ: "Yulduz — Monblan cho‘qqisidagi qor belgisi.",
			choices: []seedChoice{
				{ru: "Снежную вершину Монблана", uz: "Monblan qorli cho‘qqisini", correct: true},
				{ru: "Морскую звезду", uz: "Dengiz yulduzini"},
				{ru: "Компас", uz: "Kompasni"},
				{ru: "Цветок", uz: "Gulni"},
			},
		},
		{
			topic: "Сервис",
			ru:    "Что означает сапфировое стекло?",
			uz:    "Safir oynasi nimani anglatadi?",
			expRU: "Сапфир — высокая твердость.",
			expUZ: "Safir — juda qattiq material.",
			choices: []seedChoice{
				{ru: "Синтетический сапфир", uz: "Sun’iy safir", correct: true},
				{ru: "Пластик", uz: "Plastik"},
				{ru: "Органическое стекло", uz: "Organik shisha"},
				{ru: "Песчаное стекло", uz: "Qumli shisha"},
			},
		},
		{
			topic: "Сервис",
			ru:    "Что важно при консультации клиента?",
			uz:    "Mijoz bilan maslahatda eng muhim nima?",
			expRU: "Клиент-центричность — главное.",
			expUZ: "Mijoz ehtiyojini tushunish muhim.",
			choices: []seedChoice{
				{ru: "Выявить потребности", uz: "Ehtiyojni aniqlash", correct: true},
				{ru: "Сразу показывать топ", uz: "Darhol eng qimmatni ko‘rsatish"},
				{ru: "Ждать молча", uz: "Jim kutish"},
				{ru: "Начать со скидки", uz: "Darhol chegirma taklif"},
			},
		},
	}
}
