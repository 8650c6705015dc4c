// Package notify delivers lead alerts, daily summaries and error reports to
// the operator via Telegram.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/domain"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
	"github.com/Susa-Sek/se-handwerk/internal/store"
)

// Notifier sends HTML-formatted messages to the configured chat.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    logger.Logger
}

// New creates the notifier. A missing token is not fatal: the agent keeps
// scoring and persisting, it just cannot alert anyone.
func New(cfg config.TelegramConfig, log logger.Logger) (*Notifier, error) {
	if cfg.Token == "" {
		log.Warn("telegram token not configured, notifications disabled")
		return &Notifier{chatID: cfg.ChatID, log: log}, nil
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}

	log.Info("telegram bot connected", logger.String("username", bot.Self.UserName))
	return &Notifier{bot: bot, chatID: cfg.ChatID, log: log}, nil
}

// Enabled reports whether a bot connection exists.
func (n *Notifier) Enabled() bool {
	return n.bot != nil
}

// SendLead notifies the operator about one relevant lead, with inline
// buttons for the usual follow-up actions.
func (n *Notifier) SendLead(res domain.ScoredResult) error {
	if !n.Enabled() {
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatLead(res))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = leadKeyboard(res)

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send lead notification: %w", err)
	}

	n.log.Info("lead notification sent", logger.String("title", res.Listing.Title))
	return nil
}

// SendDailySummary sends the end-of-day digest.
func (n *Notifier) SendDailySummary(stats store.DayStats, top []store.StoredListing) error {
	if !n.Enabled() {
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatDailySummary(stats, top))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send daily summary: %w", err)
	}

	n.log.Info("daily summary sent")
	return nil
}

// SendError reports an agent failure to the operator.
func (n *Notifier) SendError(text string) error {
	if !n.Enabled() {
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID,
		"⚠️ <b>SE Handwerk Agent - Fehler</b>\n\n"+text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send error notification: %w", err)
	}
	return nil
}

// SendText sends a plain HTML message, used for decision prompts and test
// messages.
func (n *Notifier) SendText(text string) error {
	if !n.Enabled() {
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func leadKeyboard(res domain.ScoredResult) tgbotapi.InlineKeyboardMarkup {
	hash := res.Listing.URLHash()
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Antwort kopieren", "copy:"+hash),
			tgbotapi.NewInlineKeyboardButtonData("📋 Details", "details:"+hash),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Überspringen", "skip:"+hash),
			tgbotapi.NewInlineKeyboardButtonURL("🔗 Öffnen", res.Listing.URL),
		),
	)
}
