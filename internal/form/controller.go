package form

import (
	"AI-Content-Creator-Backend/internal/client"
	"AI-Content-Creator-Backend/internal/logging"
	"AI-Content-Creator-Backend/internal/model"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	MsgFieldRequired     = "يرجى إدخال اسم الحقل وقيمته قبل الإضافة."
	MsgSending           = "جاري إرسال طلبك..."
	MsgSuccess           = "تم إرسال طلبك بنجاح! تحقق من بوت تليجرام الخاص بك للحصول على المحتوى."
	MsgPaymentRequired   = "يرجى إتمام عملية الدفع في تليجرام للحصول على المحتوى المميز."
	MsgConnectionFailed  = "حدث خطأ في الاتصال بالخادم. يرجى المحاولة مرة أخرى."
	MsgInProgress        = "طلبك قيد الإرسال، يرجى الانتظار."
	MsgInvalidIdentifier = "تعذر قراءة معرف تليجرام. يرجى فتح النموذج من داخل تليجرام."
	ErrorPrefix          = "خطأ: "
	DefaultSubmitTimeout = 60 * time.Second
	DefaultCloseDelay    = 2000 * time.Millisecond
	fieldChatID          = "telegram_chat_id"
	fieldUserID          = "telegram_user_id"
)

// Submitter sends an assembled request. A non-nil error means no response arrived.
type Submitter interface {
	GenerateContent(ctx context.Context, payload *model.ContentRequest) (*client.GenerateResult, error)
}

type Tone string

const (
	ToneNone    Tone = ""
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneError   Tone = "error"
)

// Status is the text shown under the form.
type Status struct {
	Text string
	Tone Tone
}

type Outcome string

const (
	OutcomeSuccess         Outcome = model.StatusSuccess
	OutcomePaymentRequired Outcome = model.StatusPaymentRequired
	OutcomeError           Outcome = "error"
)

type Result struct {
	Status     Outcome
	Message    string
	InvoiceURL string
	Err        error
}

type Options struct {
	SubmitTimeout time.Duration
	CloseDelay    time.Duration
	Render        func([]model.CustomField)
}

type OptionFn func(*Options)

func WithSubmitTimeout(d time.Duration) OptionFn {
	return func(o *Options) { o.SubmitTimeout = d }
}

// WithCloseDelay sets how long the success message stays before the host closes.
func WithCloseDelay(d time.Duration) OptionFn {
	return func(o *Options) { o.CloseDelay = d }
}

func WithRenderer(render func([]model.CustomField)) OptionFn {
	return func(o *Options) { o.Render = render }
}

// Controller owns the state of one content form. It is safe for use from
// several goroutines; at most one Submit is in flight at a time.
type Controller struct {
	submitter Submitter
	host      Host
	opts      Options
	log       *zap.Logger

	mu            sync.Mutex
	mainTopic     string
	contentType   string
	contentLength string
	style         model.StyleOptions
	chatIDInput   string
	userIDInput   string
	draftLabel    string
	draftValue    string
	fields        []model.CustomField
	status        Status
	submitting    bool
	cancel        context.CancelFunc
}

func NewController(submitter Submitter, host Host, fns ...OptionFn) *Controller {
	opts := Options{
		SubmitTimeout: DefaultSubmitTimeout,
		CloseDelay:    DefaultCloseDelay,
	}
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = DefaultSubmitTimeout
	}
	if opts.CloseDelay < 0 {
		opts.CloseDelay = DefaultCloseDelay
	}

	c := &Controller{
		submitter: submitter,
		host:      host,
		opts:      opts,
		log:       logging.Named("form"),
	}
	if host != nil {
		if id, ok := host.Identity(); ok {
			if id.UserID != nil {
				c.userIDInput = strconv.FormatInt(*id.UserID, 10)
			}
			if id.ChatID != nil {
				c.chatIDInput = strconv.FormatInt(*id.ChatID, 10)
			}
		}
	}
	return c
}

func (c *Controller) SetMainTopic(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mainTopic = v
}

func (c *Controller) SetContentType(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contentType = v
}

func (c *Controller) SetContentLength(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contentLength = v
}

func (c *Controller) SetStyleOptions(v model.StyleOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.style = v
}

// SetTelegramChatID sets the raw chat id input; it is parsed at BuildRequest.
func (c *Controller) SetTelegramChatID(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chatIDInput = v
}

func (c *Controller) SetTelegramUserID(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userIDInput = v
}

// SetDraft fills the two "new custom field" inputs.
func (c *Controller) SetDraft(label, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draftLabel, c.draftValue = label, value
}

func (c *Controller) Draft() (label, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draftLabel, c.draftValue
}

func (c *Controller) Fields() []model.CustomField {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.fields)
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// AddDraftField adds the current draft inputs as a custom field.
func (c *Controller) AddDraftField() error {
	label, value := c.Draft()
	return c.AddCustomField(label, value)
}

// AddCustomField appends a trimmed label/value pair. Blank input leaves the
// field list untouched and sets a validation status instead.
func (c *Controller) AddCustomField(label, value string) error {
	label = strings.TrimSpace(label)
	value = strings.TrimSpace(value)

	c.mu.Lock()
	if label == "" || value == "" {
		c.status = Status{Text: MsgFieldRequired, Tone: ToneError}
		c.mu.Unlock()
		return ErrEmptyCustomField
	}
	c.fields = append(c.fields, model.CustomField{Label: label, Value: value})
	c.draftLabel, c.draftValue = "", ""
	c.status = Status{}
	snapshot := slices.Clone(c.fields)
	c.mu.Unlock()

	c.render(snapshot)
	return nil
}

// RemoveCustomField removes the entry at index; later entries shift down.
// A stale index changes nothing and returns ErrFieldIndexOutOfRange.
func (c *Controller) RemoveCustomField(index int) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.fields) {
		c.mu.Unlock()
		return ErrFieldIndexOutOfRange
	}
	c.fields = slices.Delete(c.fields, index, index+1)
	snapshot := slices.Clone(c.fields)
	c.mu.Unlock()

	c.render(snapshot)
	return nil
}

// BuildRequest assembles the request from the current state. Identifiers that
// do not parse are left nil and reported through an *InvalidIdentifierError.
func (c *Controller) BuildRequest() (model.ContentRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buildRequestLocked()
}

func (c *Controller) buildRequestLocked() (model.ContentRequest, error) {
	customFields := make(map[string]string, len(c.fields))
	for _, f := range c.fields {
		customFields[f.Label] = f.Value
	}

	chatID, chatErr := parseIdentifier(fieldChatID, c.chatIDInput)
	userID, userErr := parseIdentifier(fieldUserID, c.userIDInput)

	req := model.ContentRequest{
		MainTopic:      c.mainTopic,
		ContentType:    c.contentType,
		ContentLength:  c.contentLength,
		StyleOptions:   c.style,
		CustomFields:   customFields,
		TelegramChatID: chatID,
		TelegramUserID: userID,
	}
	return req, errors.Join(chatErr, userErr)
}

func parseIdentifier(field, input string) (*int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil {
		return nil, &InvalidIdentifierError{Field: field, Input: input, Err: err}
	}
	return &v, nil
}

// Submit sends the current form and reports how it went. It never returns an
// error; failures are carried in Result.Err and reflected in Status.
func (c *Controller) Submit(ctx context.Context) Result {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return Result{Status: OutcomeError, Message: MsgInProgress, Err: ErrSubmissionInProgress}
	}
	req, err := c.buildRequestLocked()
	if err != nil {
		res := Result{Status: OutcomeError, Message: ErrorPrefix + MsgInvalidIdentifier, Err: err}
		c.status = Status{Text: res.Message, Tone: ToneError}
		c.mu.Unlock()
		c.log.Warn("refusing to submit", zap.Error(err))
		return res
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.SubmitTimeout)
	c.submitting = true
	c.cancel = cancel
	c.status = Status{Text: MsgSending, Tone: ToneInfo}
	c.mu.Unlock()

	c.log.Info("submitting content request",
		zap.String("content_type", req.ContentType),
		zap.String("content_length", req.ContentLength),
		zap.Strings("custom_fields", slices.Sorted(maps.Keys(req.CustomFields))))

	resp, err := c.submitter.GenerateContent(ctx, &req)
	cancel()
	res := classify(resp, err)

	c.mu.Lock()
	c.submitting = false
	c.cancel = nil
	c.status = Status{Text: res.Message, Tone: toneFor(res.Status)}
	c.mu.Unlock()

	switch res.Status {
	case OutcomeSuccess:
		if c.host != nil {
			time.AfterFunc(c.opts.CloseDelay, c.host.Close)
		}
	case OutcomePaymentRequired:
		if res.InvoiceURL != "" && c.host != nil {
			c.host.OpenPayment(res.InvoiceURL)
		}
	default:
		c.log.Warn("submission failed", zap.Error(res.Err))
	}
	return res
}

// Cancel aborts the in-flight submission, if any.
func (c *Controller) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func classify(resp *client.GenerateResult, err error) Result {
	if err != nil || resp == nil {
		switch {
		case err == nil:
			err = ErrTransport
		case !errors.Is(err, ErrTransport):
			err = fmt.Errorf("%w: %w", ErrTransport, err)
		}
		return Result{Status: OutcomeError, Message: MsgConnectionFailed, Err: err}
	}

	body := resp.Body
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	switch {
	case ok && body != nil && body.Status == model.StatusSuccess:
		return Result{Status: OutcomeSuccess, Message: MsgSuccess}
	case resp.StatusCode == 402 && body != nil && body.InvoiceSent:
		return Result{Status: OutcomePaymentRequired, Message: MsgPaymentRequired, InvoiceURL: body.InvoiceURL}
	}

	detail := fmt.Sprintf("HTTP %d", resp.StatusCode)
	if body != nil {
		if body.Detail != "" {
			detail = body.Detail
		} else if body.Message != "" {
			detail = body.Message
		}
	}
	return Result{
		Status:  OutcomeError,
		Message: ErrorPrefix + detail,
		Err:     &ResponseError{StatusCode: resp.StatusCode, Detail: detail},
	}
}

func toneFor(o Outcome) Tone {
	switch o {
	case OutcomeSuccess:
		return ToneSuccess
	case OutcomePaymentRequired:
		return ToneWarning
	default:
		return ToneError
	}
}

func (c *Controller) render(fields []model.CustomField) {
	if c.opts.Render != nil {
		c.opts.Render(fields)
	}
}
