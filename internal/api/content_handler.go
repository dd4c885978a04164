package api

import (
	"AI-Content-Creator-Backend/internal/auth"
	"AI-Content-Creator-Backend/internal/logging"
	"AI-Content-Creator-Backend/internal/model"
	"AI-Content-Creator-Backend/internal/service"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	MsgSuccess            = "تم توليد المحتوى وإرساله بنجاح!"
	MsgPaymentRequired    = "يرجى إتمام عملية الدفع للحصول على المحتوى المميز."
	MsgPaymentUnavailable = "هذه الميزة تتطلب دفعاً. يرجى ترقية اشتراكك أو استخدام المحتوى الموجز المجاني."
	MsgAIServicePrefix    = "خطأ في خدمة الذكاء الاصطناعي: "
	MsgRenderFailed       = "حدث خطأ أثناء توليد ملف PDF."
	MsgDeliveryFailed     = "حدث خطأ أثناء إرسال ملف PDF إلى تليجرام."
	MsgUnexpected         = "حدث خطأ غير متوقع أثناء توليد المحتوى."
	MsgUserMismatch       = "معرف المستخدم لا يطابق بيانات تليجرام."
	HealthMessage         = "AI Content Creator is running!"
)

type ContentGenerator interface {
	Generate(ctx context.Context, req *model.ContentRequest) (*service.GenerateOutcome, error)
}

type ContentHandler struct {
	generator ContentGenerator
	log       *zap.Logger
}

func NewContentHandler(generator ContentGenerator) *ContentHandler {
	return &ContentHandler{generator: generator, log: logging.Named("api")}
}

func (h *ContentHandler) handleGenerateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPaymentRequired):
		c.JSON(http.StatusPaymentRequired, model.ContentResponse{Detail: MsgPaymentUnavailable})
	case errors.Is(err, service.ErrAIService):
		c.JSON(http.StatusInternalServerError, model.ContentResponse{Detail: MsgAIServicePrefix + strings.TrimPrefix(err.Error(), service.ErrAIService.Error()+": ")})
	case errors.Is(err, service.ErrRender):
		c.JSON(http.StatusInternalServerError, model.ContentResponse{Detail: MsgRenderFailed})
	case errors.Is(err, service.ErrDelivery):
		c.JSON(http.StatusInternalServerError, model.ContentResponse{Detail: MsgDeliveryFailed})
	default:
		h.log.Error("content generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ContentResponse{Detail: MsgUnexpected})
	}
}

// GenerateContentHandler serves POST /generate-content.
func (h *ContentHandler) GenerateContentHandler(c *gin.Context) {
	var req model.ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, model.ContentResponse{Detail: validationDetail(err)})
		return
	}

	if verified, ok := auth.VerifiedUserID(c); ok {
		if req.TelegramUserID != nil && *req.TelegramUserID != verified {
			c.JSON(http.StatusUnauthorized, model.ContentResponse{Detail: MsgUserMismatch})
			return
		}
		req.TelegramUserID = &verified
	}

	h.log.Info("received content request",
		zap.String("content_type", req.ContentType),
		zap.String("content_length", req.ContentLength),
		zap.Int("custom_fields", len(req.CustomFields)))

	outcome, err := h.generator.Generate(c.Request.Context(), &req)
	if err != nil {
		h.handleGenerateError(c, err)
		return
	}
	if outcome.PaymentRequired {
		c.JSON(http.StatusPaymentRequired, model.ContentResponse{
			Status:      model.StatusPaymentRequired,
			Message:     MsgPaymentRequired,
			InvoiceSent: true,
			InvoiceURL:  outcome.InvoiceURL,
		})
		return
	}
	c.JSON(http.StatusOK, model.ContentResponse{Status: model.StatusSuccess, Message: MsgSuccess})
}

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": HealthMessage})
}

func OptionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, model.Options())
}
