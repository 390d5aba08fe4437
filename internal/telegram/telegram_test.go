package telegram

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooFeedSync/internal/config"
)

type botMock struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (b *botMock) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		b.sent = append(b.sent, m)
	}
	return tgbotapi.Message{}, b.err
}

func TestReporter_SendMessage(t *testing.T) {
	bot := &botMock{}
	r := NewReporter(bot, 42)
	require.NoError(t, r.SendMessage("done"))
	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(42), bot.sent[0].ChatID)
	assert.Equal(t, "done", bot.sent[0].Text)

	bot.err = errors.New("boom")
	assert.Error(t, r.SendMessage("again"))
	r.SendMessageWithLogError("logged")
	assert.Len(t, bot.sent, 3)
}

func TestReporter_Disabled(t *testing.T) {
	r, err := NewFromConfig(config.Default())
	require.NoError(t, err)
	assert.False(t, r.Enabled())
	assert.NoError(t, r.SendMessage("dropped"))

	var nilReporter *Reporter
	assert.NoError(t, nilReporter.SendMessage("dropped"))
}
