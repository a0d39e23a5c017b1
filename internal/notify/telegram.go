// Package notify informs front-desk staff about reservation and
// payment activity over Telegram.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/Seiiyes/HotelReservation/internal/events"
)

// TelegramNotifier sends event summaries to a fixed set of staff chats.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
	logger  zerolog.Logger
}

// NewTelegramNotifier authenticates the bot and binds the staff chats.
func NewTelegramNotifier(token string, chatIDs []int64, logger zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	logger.Info().Str("bot", bot.Self.UserName).Int("chats", len(chatIDs)).Msg("Telegram notifier ready")
	return &TelegramNotifier{bot: bot, chatIDs: chatIDs, logger: logger}, nil
}

// Subscribe wires the notifier onto the event bus. Sends run in their
// own goroutine so Telegram latency never blocks a request.
func (n *TelegramNotifier) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.TypeReservationCreated, n.handle)
	bus.Subscribe(events.TypePaymentSettled, n.handle)
	bus.Subscribe(events.TypePaymentDeleted, n.handle)
}

func (n *TelegramNotifier) handle(event events.Event) {
	text := formatEvent(event)
	if text == "" {
		return
	}
	go n.broadcast(text)
}

func (n *TelegramNotifier) broadcast(text string) {
	for _, chatID := range n.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := n.bot.Send(msg); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("telegram send failed")
		}
	}
}

func formatEvent(event events.Event) string {
	switch event.Type {
	case events.TypeReservationCreated:
		r, ok := event.Payload.(events.ReservationEvent)
		if !ok {
			return ""
		}
		return fmt.Sprintf("New reservation #%d: room %d, %s to %s",
			r.ReservationID, r.RoomID, r.CheckIn, r.CheckOut)
	case events.TypePaymentSettled:
		p, ok := event.Payload.(events.PaymentEvent)
		if !ok {
			return ""
		}
		return fmt.Sprintf("Payment of %d COP (%s) settled on reservation #%d, balance %d",
			p.Amount, p.Method, p.ReservationID, p.Balance)
	case events.TypePaymentDeleted:
		p, ok := event.Payload.(events.PaymentEvent)
		if !ok {
			return ""
		}
		return fmt.Sprintf("Payment of %d COP on reservation #%d was deleted, balance back to %d",
			p.Amount, p.ReservationID, p.Balance)
	}
	return ""
}
