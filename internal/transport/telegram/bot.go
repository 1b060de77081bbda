package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"brandquiz-bot/internal/domain"
	"brandquiz-bot/internal/i18n"
)

// QuizEngine drives quiz sessions.
type QuizEngine interface {
	StartSession(ctx context.Context, telegramID, topicID int64, count int) (domain.QuestionCard, error)
	CurrentQuestion(ctx context.Context, telegramID int64) (domain.QuestionCard, error)
	SubmitAnswer(ctx context.Context, telegramID, questionID, choiceID int64) (domain.AnswerFeedback, *domain.QuestionCard, *domain.SessionSummary, error)
}

// TopicSource lists the catalog topics for the /test keyboard.
type TopicSource interface {
	Topics(ctx context.Context) ([]domain.Topic, error)
}

// StatsSource serves /leaderboard and /stats.
type StatsSource interface {
	WeeklyLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardRow, error)
	Lifetime(ctx context.Context, telegramID int64) (domain.LifetimeStats, error)
}

// Registry manages user profiles and preferences.
type Registry interface {
	EnsureUser(ctx context.Context, telegramID int64) (domain.User, error)
	User(ctx context.Context, telegramID int64) (domain.User, error)
	SetLanguage(ctx context.Context, telegramID int64, lang domain.Language) error
	SetDailyEnabled(ctx context.Context, telegramID int64, enabled bool) error
	AllUserIDs(ctx context.Context) ([]int64, error)
}

// GroupDirectory manages chats bound for weekly leaderboard posts.
type GroupDirectory interface {
	BindGroup(ctx context.Context, chatID int64, title string) (domain.Group, error)
	SetWeeklyEnabled(ctx context.Context, chatID int64, enabled bool) error
}

// ContentAdmin accepts new catalog content from admin commands.
type ContentAdmin interface {
	CreateTopic(ctx context.Context, name string) (domain.Topic, error)
	CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error)
}

// Config holds transport-level settings.
type Config struct {
	QuestionCount int
	AdminIDs      []int64
}

// Deps are the application services the bot dispatches to.
type Deps struct {
	Engine   QuizEngine
	Topics   TopicSource
	Stats    StatsSource
	Registry Registry
	Groups   GroupDirectory
	Content  ContentAdmin
}

// Bot is the Telegram long-polling transport. Updates are handled
// sequentially, which serializes each user's turns without extra locking.
type Bot struct {
	api           *tgbotapi.BotAPI
	log           *logrus.Logger
	engine        QuizEngine
	topics        TopicSource
	stats         StatsSource
	registry      Registry
	groups        GroupDirectory
	content       ContentAdmin
	admins        map[int64]bool
	questionCount int
}

func New(api *tgbotapi.BotAPI, log *logrus.Logger, cfg Config, deps Deps) *Bot {
	admins := make(map[int64]bool, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = true
	}
	return &Bot{
		api:           api,
		log:           log,
		engine:        deps.Engine,
		topics:        deps.Topics,
		stats:         deps.Stats,
		registry:      deps.Registry,
		groups:        deps.Groups,
		content:       deps.Content,
		admins:        admins,
		questionCount: cfg.QuestionCount,
	}
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	b.log.WithField("account", b.api.Self.UserName).Info("telegram bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	lang := b.userLang(ctx, userID)

	switch msg.Command() {
	case "start":
		if _, err := b.registry.EnsureUser(ctx, userID); err != nil {
			b.reportError(chatID, "ensure user", err)
			return
		}
		out := tgbotapi.NewMessage(chatID, i18n.Text(i18n.ChooseLang, lang))
		out.ReplyMarkup = languageKeyboard()
		b.send(out)

	case "test":
		topics, err := b.topics.Topics(ctx)
		if err != nil {
			b.reportError(chatID, "list topics", err)
			return
		}
		out := tgbotapi.NewMessage(chatID, i18n.Text(i18n.PickTopic, lang))
		out.ReplyMarkup = topicKeyboard(topics)
		b.send(out)

	case "leaderboard":
		rows, err := b.stats.WeeklyLeaderboard(ctx, 0)
		if err != nil {
			b.reportError(chatID, "leaderboard", err)
			return
		}
		b.sendHTML(chatID, renderLeaderboard(rows, lang, b.DisplayName))

	case "stats":
		if _, err := b.registry.EnsureUser(ctx, userID); err != nil {
			b.reportError(chatID, "ensure user", err)
			return
		}
		stats, err := b.stats.Lifetime(ctx, userID)
		if err != nil {
			b.reportError(chatID, "stats", err)
			return
		}
		b.sendHTML(chatID, renderStats(stats, lang))

	case "daily_on", "daily_off":
		enabled := msg.Command() == "daily_on"
		if _, err := b.registry.EnsureUser(ctx, userID); err != nil {
			b.reportError(chatID, "ensure user", err)
			return
		}
		if err := b.registry.SetDailyEnabled(ctx, userID, enabled); err != nil {
			b.reportError(chatID, "set daily", err)
			return
		}
		key := i18n.DailyOff
		if enabled {
			key = i18n.DailyOn
		}
		b.sendHTML(chatID, i18n.Text(key, lang))

	case "bindgroup":
		if !b.requireAdmin(chatID, userID) {
			return
		}
		if !msg.Chat.IsGroup() && !msg.Chat.IsSuperGroup() {
			b.sendHTML(chatID, "Run /bindgroup inside the target group.")
			return
		}
		if _, err := b.groups.BindGroup(ctx, chatID, msg.Chat.Title); err != nil {
			b.reportError(chatID, "bind group", err)
			return
		}
		b.sendHTML(chatID, "Group bound for weekly leaderboard posts.")

	case "weekly_on", "weekly_off":
		if !b.requireAdmin(chatID, userID) {
			return
		}
		enabled := msg.Command() == "weekly_on"
		if err := b.groups.SetWeeklyEnabled(ctx, chatID, enabled); err != nil {
			if errors.Is(err, domain.ErrGroupNotFound) {
				b.sendHTML(chatID, "Group not bound. Run /bindgroup first.")
				return
			}
			b.reportError(chatID, "set weekly", err)
			return
		}
		b.sendHTML(chatID, fmt.Sprintf("Weekly posts enabled: %v", enabled))

	case "addtopic":
		if !b.requireAdmin(chatID, userID) {
			return
		}
		name := strings.TrimSpace(msg.CommandArguments())
		if name == "" {
			b.sendHTML(chatID, "Usage: /addtopic NAME")
			return
		}
		topic, err := b.content.CreateTopic(ctx, name)
		if err != nil {
			b.reportError(chatID, "add topic", err)
			return
		}
		b.sendHTML(chatID, fmt.Sprintf("Topic added: %s (id %d)", topic.Name, topic.ID))

	case "addq":
		if !b.requireAdmin(chatID, userID) {
			return
		}
		b.handleAddQuestion(ctx, chatID, msg.CommandArguments())

	case "listtopics":
		if !b.requireAdmin(chatID, userID) {
			return
		}
		topics, err := b.topics.Topics(ctx)
		if err != nil {
			b.reportError(chatID, "list topics", err)
			return
		}
		if len(topics) == 0 {
			b.sendHTML(chatID, "No topics")
			return
		}
		lines := make([]string, 0, len(topics))
		for _, t := range topics {
			lines = append(lines, fmt.Sprintf("%d: %s", t.ID, t.Name))
		}
		b.sendHTML(chatID, strings.Join(lines, "\n"))

	case "broadcast":
		if !b.requireAdmin(chatID, userID) {
			return
		}
		text := strings.TrimSpace(msg.CommandArguments())
		if text == "" {
			b.sendHTML(chatID, "Usage: /broadcast TEXT")
			return
		}
		ids, err := b.registry.AllUserIDs(ctx)
		if err != nil {
			b.reportError(chatID, "broadcast", err)
			return
		}
		sent := 0
		for _, id := range ids {
			if err := b.SendText(id, text); err == nil {
				sent++
			}
		}
		b.sendHTML(chatID, fmt.Sprintf("Broadcast sent to %d users", sent))
	}
}

func (b *Bot) handleAddQuestion(ctx context.Context, chatID int64, payload string) {
	topicName, question, err := parseQuestionPayload(payload)
	if err != nil {
		b.sendHTML(chatID, addQuestionUsage)
		return
	}
	topic, err := b.content.CreateTopic(ctx, topicName)
	if err != nil {
		b.reportError(chatID, "resolve topic", err)
		return
	}
	question.TopicID = topic.ID
	if _, err := b.content.CreateQuestion(ctx, question); err != nil {
		b.reportError(chatID, "add question", err)
		return
	}
	b.sendHTML(chatID, fmt.Sprintf("Question added to %s", topic.Name))
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	userID := cq.From.ID
	chatID := cq.Message.Chat.ID
	data := cq.Data

	switch {
	case strings.HasPrefix(data, cbLangPrefix):
		lang := domain.Language(strings.TrimPrefix(data, cbLangPrefix))
		if lang != domain.LangRU && lang != domain.LangUZ {
			b.ack(cq)
			return
		}
		if _, err := b.registry.EnsureUser(ctx, userID); err != nil {
			b.ack(cq)
			b.reportError(chatID, "ensure user", err)
			return
		}
		if err := b.registry.SetLanguage(ctx, userID, lang); err != nil {
			b.ack(cq)
			b.reportError(chatID, "set language", err)
			return
		}
		b.ack(cq)
		b.sendHTML(chatID, i18n.Text(i18n.Welcome, lang))

	case strings.HasPrefix(data, cbTopicPrefix):
		topicID, err := strconv.ParseInt(strings.TrimPrefix(data, cbTopicPrefix), 10, 64)
		if err != nil {
			b.ack(cq)
			return
		}
		b.ack(cq)
		b.startQuiz(ctx, chatID, userID, topicID)

	case strings.HasPrefix(data, cbAnswerPrefix):
		parts := strings.Split(strings.TrimPrefix(data, cbAnswerPrefix), ":")
		if len(parts) != 2 {
			b.ack(cq)
			return
		}
		questionID, err1 := strconv.ParseInt(parts[0], 10, 64)
		choiceID, err2 := strconv.ParseInt(parts[1], 10, 64)
		if err1 != nil || err2 != nil {
			b.ack(cq)
			return
		}
		b.ack(cq)
		b.submitAnswer(ctx, chatID, userID, questionID, choiceID)

	default:
		b.ack(cq)
	}
}

func (b *Bot) startQuiz(ctx context.Context, chatID, userID, topicID int64) {
	lang := b.userLang(ctx, userID)
	card, err := b.engine.StartSession(ctx, userID, topicID, b.questionCount)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCatalog) {
			b.sendHTML(chatID, i18n.Text(i18n.NoQuestions, lang))
			return
		}
		b.reportError(chatID, "start session", err)
		return
	}
	b.sendCard(chatID, card)
}

func (b *Bot) submitAnswer(ctx context.Context, chatID, userID, questionID, choiceID int64) {
	lang := b.userLang(ctx, userID)
	feedback, next, summary, err := b.engine.SubmitAnswer(ctx, userID, questionID, choiceID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStaleAnswer), errors.Is(err, domain.ErrInvalidChoice):
			// A tap on an already-answered question. Ignore.
			return
		case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionExhausted):
			b.sendHTML(chatID, i18n.Text(i18n.SessionLost, lang))
			return
		default:
			b.reportError(chatID, "submit answer", err)
			return
		}
	}

	b.sendHTML(chatID, renderFeedback(feedback, lang))
	switch {
	case summary != nil:
		b.sendHTML(chatID, renderSummary(*summary, lang))
	case next != nil:
		b.sendCard(chatID, *next)
	}
}

func (b *Bot) sendCard(chatID int64, card domain.QuestionCard) {
	out := tgbotapi.NewMessage(chatID, renderCard(card))
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyMarkup = answerKeyboard(card)
	b.send(out)
}

// SendText delivers a plain HTML message, for the scheduler and broadcasts.
func (b *Bot) SendText(chatID int64, text string) error {
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(out)
	return err
}

// DisplayName resolves a Telegram id to a printable name, falling back to the
// raw id when the chat cannot be fetched.
func (b *Bot) DisplayName(telegramID int64) string {
	chat, err := b.api.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: telegramID},
	})
	if err != nil {
		return strconv.FormatInt(telegramID, 10)
	}
	if chat.UserName != "" {
		return "@" + chat.UserName
	}
	if chat.FirstName != "" {
		return chat.FirstName
	}
	return strconv.FormatInt(telegramID, 10)
}

func (b *Bot) userLang(ctx context.Context, telegramID int64) domain.Language {
	user, err := b.registry.User(ctx, telegramID)
	if err != nil {
		return domain.DefaultLanguage
	}
	return user.Lang
}

func (b *Bot) requireAdmin(chatID, userID int64) bool {
	if b.admins[userID] {
		return true
	}
	b.sendHTML(chatID, "Admins only.")
	return false
}

func (b *Bot) ack(cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.log.WithError(err).Debug("callback ack failed")
	}
}

func (b *Bot) sendHTML(chatID int64, text string) {
	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeHTML
	b.send(out)
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).WithField("chat_id", msg.ChatID).Error("send message failed")
	}
}

func (b *Bot) reportError(chatID int64, op string, err error) {
	b.log.WithError(err).WithField("chat_id", chatID).Errorf("%s failed", op)
	b.sendHTML(chatID, "Something went wrong, try again later.")
}
