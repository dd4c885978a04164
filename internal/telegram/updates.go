package telegram

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// webAppEnvelope picks out message.web_app_data, which tgbotapi.Update does
// not model.
type webAppEnvelope struct {
	Message *struct {
		WebAppData *struct {
			Data       string `json:"data"`
			ButtonText string `json:"button_text"`
		} `json:"web_app_data"`
	} `json:"message"`
}

// HandleUpdate decodes one webhook body and reacts to it.
func (b *Bot) HandleUpdate(body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("decode update: %w", err)
	}
	var envelope webAppEnvelope
	_ = json.Unmarshal(body, &envelope)

	switch {
	case update.PreCheckoutQuery != nil:
		return b.answerPreCheckout(update.PreCheckoutQuery)
	case update.Message != nil:
		msg := update.Message
		if envelope.Message != nil && envelope.Message.WebAppData != nil {
			b.log.Info("received web app data", zap.Int64("chat_id", msg.Chat.ID), zap.String("data", envelope.Message.WebAppData.Data))
			return b.SendMessage(msg.Chat.ID, WebAppDataAck)
		}
		if msg.SuccessfulPayment != nil {
			b.log.Info("payment successful",
				zap.Int64("chat_id", msg.Chat.ID),
				zap.String("payload", msg.SuccessfulPayment.InvoicePayload),
				zap.Int("amount", msg.SuccessfulPayment.TotalAmount))
			return b.SendMessage(msg.Chat.ID, PaymentThanks)
		}
		if msg.IsCommand() && msg.Command() == "start" {
			return b.sendStartButton(msg.Chat.ID)
		}
		if msg.Text != "" && !msg.IsCommand() {
			return b.SendMessage(msg.Chat.ID, UsageHint)
		}
	}
	return nil
}

func (b *Bot) answerPreCheckout(q *tgbotapi.PreCheckoutQuery) error {
	cfg := tgbotapi.PreCheckoutConfig{PreCheckoutQueryID: q.ID, OK: true}
	if q.InvoicePayload != b.opts.InvoicePayload {
		cfg.OK = false
		cfg.ErrorMessage = PaymentRejected
		b.log.Warn("rejecting pre-checkout query", zap.String("payload", q.InvoicePayload))
	}
	if _, err := b.api.Request(cfg); err != nil {
		return fmt.Errorf("answer pre-checkout query: %w", err)
	}
	return nil
}
