package telegram

import (
	"AI-Content-Creator-Backend/internal/logging"
	"AI-Content-Creator-Backend/internal/model"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	StartButtonText = "🚀 ابدأ مشروعًا جديدًا"
	StartGreeting   = "مرحبًا بك في منشئ المحتوى الذكي! اضغط على الزر أدناه لبدء إنشاء مطوية أو بحث جديد."
	UsageHint       = "أنا بوت لإنشاء المحتوى. يرجى استخدام زر \"ابدأ مشروعًا جديدًا\" لبدء العمل."
	WebAppDataAck   = "تم استلام بياناتك. جاري معالجة طلبك..."
	PaymentThanks   = "شكراً لك! تم الدفع بنجاح. يمكنك الآن إنشاء محتوى مميز."
	PaymentRejected = "حدث خطأ في عملية الدفع."
	WebhookPath     = "/telegram-webhook"
)

type Options struct {
	WebAppURL      string
	ProviderToken  string
	InvoicePayload string
}

// Bot implements service.Messenger and handles webhook updates.
type Bot struct {
	api  *tgbotapi.BotAPI
	opts Options
	log  *zap.Logger
}

func NewBot(token string, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return newBot(api, opts), nil
}

// NewBotWithEndpoint talks to a non-default Bot API server. endpoint is a
// format string like tgbotapi.APIEndpoint.
func NewBotWithEndpoint(token, endpoint string, client *http.Client, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return newBot(api, opts), nil
}

func newBot(api *tgbotapi.BotAPI, opts Options) *Bot {
	b := &Bot{api: api, opts: opts, log: logging.Named("telegram")}
	b.log.Info("telegram bot authorized", zap.String("username", api.Self.UserName))
	return b
}

// SetWebhook points Telegram at {web_app_url}/telegram-webhook.
func (b *Bot) SetWebhook() error {
	if b.opts.WebAppURL == "" {
		return fmt.Errorf("web app url is not configured")
	}
	url := strings.TrimRight(b.opts.WebAppURL, "/") + WebhookPath
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	b.log.Info("telegram webhook set", zap.String("url", url))
	return nil
}

func invoiceParams(chatID *int64, providerToken string, invoice model.Invoice) (tgbotapi.Params, error) {
	prices, err := json.Marshal([]tgbotapi.LabeledPrice{{Label: invoice.Label, Amount: invoice.Price}})
	if err != nil {
		return nil, fmt.Errorf("marshal prices: %w", err)
	}
	// tip fields are left out entirely; Telegram rejects the empty values the
	// library's InvoiceConfig would send.
	params := tgbotapi.Params{
		"title":          invoice.Title,
		"description":    invoice.Description,
		"payload":        invoice.Payload,
		"provider_token": providerToken,
		"currency":       invoice.Currency,
		"prices":         string(prices),
	}
	if chatID != nil {
		params["chat_id"] = strconv.FormatInt(*chatID, 10)
		params["start_parameter"] = invoice.StartParameter
	}
	return params, nil
}

func (b *Bot) SendInvoice(chatID int64, invoice model.Invoice) error {
	params, err := invoiceParams(&chatID, b.opts.ProviderToken, invoice)
	if err != nil {
		return err
	}
	if _, err := b.api.MakeRequest("sendInvoice", params); err != nil {
		return fmt.Errorf("send invoice: %w", err)
	}
	b.log.Info("invoice sent", zap.Int64("chat_id", chatID), zap.Int("amount", invoice.Price), zap.String("currency", invoice.Currency))
	return nil
}

// CreateInvoiceLink returns a link the Mini App can open with openInvoice.
func (b *Bot) CreateInvoiceLink(invoice model.Invoice) (string, error) {
	params, err := invoiceParams(nil, b.opts.ProviderToken, invoice)
	if err != nil {
		return "", err
	}
	resp, err := b.api.MakeRequest("createInvoiceLink", params)
	if err != nil {
		return "", fmt.Errorf("create invoice link: %w", err)
	}
	var link string
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return "", fmt.Errorf("decode invoice link: %w", err)
	}
	return link, nil
}

func (b *Bot) SendDocument(chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	if _, err := b.api.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

func (b *Bot) SendMessage(chatID int64, text string) error {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

type webAppInfo struct {
	URL string `json:"url"`
}

type webAppButton struct {
	Text   string     `json:"text"`
	WebApp webAppInfo `json:"web_app"`
}

type webAppKeyboard struct {
	InlineKeyboard [][]webAppButton `json:"inline_keyboard"`
}

func (b *Bot) sendStartButton(chatID int64) error {
	if b.opts.WebAppURL == "" {
		return b.SendMessage(chatID, StartGreeting)
	}
	markup, err := json.Marshal(webAppKeyboard{
		InlineKeyboard: [][]webAppButton{{{Text: StartButtonText, WebApp: webAppInfo{URL: b.opts.WebAppURL}}}},
	})
	if err != nil {
		return err
	}
	_, err = b.api.MakeRequest("sendMessage", tgbotapi.Params{
		"chat_id":      strconv.FormatInt(chatID, 10),
		"text":         StartGreeting,
		"reply_markup": string(markup),
	})
	return err
}
