// Package notification provides implementations for various notification services
package notification

import (
	"fmt"
	"time"

	"github.com/raykavin/fibflow/core"
	tb "gopkg.in/tucnak/telebot.v2"
)

const pollingTimeout = 10 * time.Second

// Telegram broadcasts run notifications and trade events to a chat.
// It implements core.NotifierWithStart.
type Telegram struct {
	client *tb.Bot
	chat   *tb.Chat
	log    core.Logger
}

// NewTelegram creates and initializes a new Telegram service
func NewTelegram(token string, chatID int64, log core.Logger) (core.NotifierWithStart, error) {
	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     token,
		Poller:    &tb.LongPoller{Timeout: pollingTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Telegram{
		client: client,
		chat:   &tb.Chat{ID: chatID},
		log:    log,
	}, nil
}

// Start begins the client receive loop
func (t *Telegram) Start() {
	go t.client.Start()
	t.log.Info("Telegram notifier started")
}

// Notify sends a plain message to the configured chat
func (t *Telegram) Notify(text string) {
	if _, err := t.client.Send(t.chat, text); err != nil {
		t.log.WithError(err).Error("telegram/notify")
	}
}

// OnEvent formats and sends a trade event
func (t *Telegram) OnEvent(event core.TradeEvent) {
	message := fmt.Sprintf(
		"*%s* %s %s\nQuantity: %f\nPrice: %f\nLevel: %s",
		event.Action,
		event.Side,
		event.Symbol,
		event.Quantity,
		event.Price,
		event.FibLevel,
	)
	t.Notify(message)
}

// OnError sends an error notification
func (t *Telegram) OnError(err error) {
	t.Notify(fmt.Sprintf("🛑 ERROR\n%v", err))
}
