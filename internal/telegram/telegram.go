package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pkg/errors"

	"WooFeedSync/internal/config"
	"WooFeedSync/pkg/logging"
)

// Sender is the part of *tgbotapi.BotAPI the reporter uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Reporter posts run summaries to one chat. The zero value drops messages.
type Reporter struct {
	bot    Sender
	chatID int64
}

func NewReporter(bot Sender, chatID int64) *Reporter {
	return &Reporter{bot: bot, chatID: chatID}
}

// NewFromConfig connects the bot when reports are enabled and a token is set.
func NewFromConfig(cfg *config.Config) (*Reporter, error) {
	if cfg.TELEGRAM.Report == 0 || cfg.TELEGRAM.BotToken == "" || cfg.TELEGRAM.ChatID == 0 {
		return &Reporter{}, nil
	}
	bot, err := tgbotapi.NewBotAPI(cfg.TELEGRAM.BotToken)
	if err != nil {
		return &Reporter{}, errors.Wrap(err, "failed in tgbotapi.NewBotAPI")
	}
	return NewReporter(bot, cfg.TELEGRAM.ChatID), nil
}

func (r *Reporter) Enabled() bool {
	return r != nil && r.bot != nil
}

func (r *Reporter) SendMessage(text string) error {
	if !r.Enabled() {
		return nil
	}
	if _, err := r.bot.Send(tgbotapi.NewMessage(r.chatID, text)); err != nil {
		return errors.Wrap(err, "failed in bot.Send")
	}
	return nil
}

// SendMessageWithLogError logs instead of returning the error.
func (r *Reporter) SendMessageWithLogError(text string) {
	if err := r.SendMessage(text); err != nil {
		logging.GetLogger().Errorf("failed telegram.SendMessage(), error: %v", err)
	}
}
