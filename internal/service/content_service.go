package service

import (
	"AI-Content-Creator-Backend/internal/logging"
	"AI-Content-Creator-Backend/internal/metrics"
	"AI-Content-Creator-Backend/internal/model"
	"AI-Content-Creator-Backend/internal/repository"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DocumentCaption   = "المحتوى المطلوب جاهز!"
	DeliveryApology   = "عذراً، حدث خطأ أثناء إرسال ملف PDF. يرجى المحاولة مرة أخرى."
	invoiceStartParam = "premium_content"
)

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type DocumentRenderer interface {
	Render(content string, free bool) ([]byte, error)
}

// Messenger delivers results and invoices to a Telegram chat.
type Messenger interface {
	SendInvoice(chatID int64, invoice model.Invoice) error
	CreateInvoiceLink(invoice model.Invoice) (string, error)
	SendDocument(chatID int64, name string, data []byte, caption string) error
	SendMessage(chatID int64, text string) error
}

type ContentOptions struct {
	FreePerDay      int
	PaymentsEnabled bool
	InvoiceTitle    string
	InvoicePayload  string
	Currency        string
	Price           int
}

// GenerateOutcome is a request that did not fail: either the document was
// produced, or the user was asked to pay first.
type GenerateOutcome struct {
	PaymentRequired bool
	InvoiceURL      string
	FromCache       bool
	Document        []byte
}

type ContentService struct {
	usage     repository.UsageStore
	cache     repository.ContentCache
	ai        Generator
	renderer  DocumentRenderer
	messenger Messenger
	opts      ContentOptions
	group     singleflight.Group
	log       *zap.Logger
}

// NewContentService wires the generation flow. messenger may be nil when no
// bot token is configured; documents are then only returned, not delivered.
func NewContentService(usage repository.UsageStore, cache repository.ContentCache, ai Generator, renderer DocumentRenderer, messenger Messenger, opts ContentOptions) *ContentService {
	if opts.FreePerDay < 0 {
		opts.FreePerDay = 0
	}
	return &ContentService{
		usage:     usage,
		cache:     cache,
		ai:        ai,
		renderer:  renderer,
		messenger: messenger,
		opts:      opts,
		log:       logging.Named("content"),
	}
}

func (s *ContentService) Generate(ctx context.Context, req *model.ContentRequest) (*GenerateOutcome, error) {
	userID := idValue(req.TelegramUserID)
	chatID := idValue(req.TelegramChatID)

	if userID != 0 {
		outcome, err := s.checkQuota(ctx, req, userID, chatID)
		if err != nil || outcome != nil {
			return outcome, err
		}
	}

	prompt := BuildPrompt(req)
	s.log.Info("generated prompt", zap.String("prompt", prompt))

	content, fromCache, err := s.content(ctx, prompt)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("ai_error").Inc()
		return nil, err
	}

	free := req.ContentLength == model.BriefLength
	doc, err := s.renderer.Render(content, free)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("render_error").Inc()
		return nil, err
	}

	if chatID != 0 && s.messenger != nil {
		name := fmt.Sprintf("content_%s.pdf", uuid.NewString())
		if err := s.messenger.SendDocument(chatID, name, doc, DocumentCaption); err != nil {
			s.log.Error("failed to send document", zap.Int64("chat_id", chatID), zap.Error(err))
			if msgErr := s.messenger.SendMessage(chatID, DeliveryApology); msgErr != nil {
				s.log.Error("failed to send apology", zap.Int64("chat_id", chatID), zap.Error(msgErr))
			}
			metrics.GenerationTotal.WithLabelValues("delivery_error").Inc()
			return nil, fmt.Errorf("%w: %v", ErrDelivery, err)
		}
		s.log.Info("document sent", zap.Int64("chat_id", chatID), zap.String("file", name))
	}

	metrics.GenerationTotal.WithLabelValues("success").Inc()
	return &GenerateOutcome{FromCache: fromCache, Document: doc}, nil
}

// checkQuota returns a non-nil outcome when the request must be paid for.
// Requests that pass are counted against the user's daily quota.
func (s *ContentService) checkQuota(ctx context.Context, req *model.ContentRequest, userID, chatID int64) (*GenerateOutcome, error) {
	count, err := s.usage.DailyRequests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if req.ContentLength != model.BriefLength && count >= s.opts.FreePerDay {
		if !s.opts.PaymentsEnabled || s.messenger == nil || chatID == 0 {
			metrics.GenerationTotal.WithLabelValues("payment_unavailable").Inc()
			return nil, ErrPaymentRequired
		}
		invoice := s.invoiceFor(req)
		if err := s.messenger.SendInvoice(chatID, invoice); err != nil {
			return nil, errors.Wrap(err, "send invoice")
		}
		link, err := s.messenger.CreateInvoiceLink(invoice)
		if err != nil {
			s.log.Warn("invoice sent but link creation failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		s.log.Info("payment required", zap.Int64("user_id", userID), zap.Int("daily_requests", count))
		metrics.GenerationTotal.WithLabelValues("payment_required").Inc()
		return &GenerateOutcome{PaymentRequired: true, InvoiceURL: link}, nil
	}

	if err := s.usage.IncrementDailyRequests(ctx, userID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil, nil
}

func (s *ContentService) invoiceFor(req *model.ContentRequest) model.Invoice {
	return model.Invoice{
		Title:          s.opts.InvoiceTitle,
		Description:    fmt.Sprintf("الحصول على محتوى %s حول %s", req.ContentLength, req.MainTopic),
		Payload:        s.opts.InvoicePayload,
		Currency:       s.opts.Currency,
		Label:          s.opts.InvoiceTitle,
		Price:          s.opts.Price,
		StartParameter: invoiceStartParam,
	}
}

type generated struct {
	content   string
	fromCache bool
}

// content serves the prompt from cache or generates it. Concurrent misses for
// the same prompt share a single AI call.
func (s *ContentService) content(ctx context.Context, prompt string) (string, bool, error) {
	key := PromptKey(prompt)
	// The flight outlives the caller that started it.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		cached, ok, err := s.cache.Get(flightCtx, key)
		if err != nil {
			s.log.Warn("cache read failed", zap.Error(err))
		}
		if ok {
			metrics.CacheTotal.WithLabelValues("hit").Inc()
			s.log.Info("content served from cache")
			return generated{content: cached, fromCache: true}, nil
		}
		metrics.CacheTotal.WithLabelValues("miss").Inc()

		content, err := s.ai.Generate(flightCtx, prompt)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(flightCtx, key, content); err != nil {
			s.log.Warn("cache write failed", zap.Error(err))
		}
		s.log.Info("content generated and cached")
		return generated{content: content}, nil
	})
	if err != nil {
		return "", false, err
	}
	g := v.(generated)
	return g.content, g.fromCache, nil
}

func idValue(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
