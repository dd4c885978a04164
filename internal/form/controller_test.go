package form

import (
	"AI-Content-Creator-Backend/internal/client"
	"AI-Content-Creator-Backend/internal/model"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeHost struct {
	mu       sync.Mutex
	identity *Identity
	closed   chan struct{}
	payments []string
}

func newFakeHost() *fakeHost {
	return &fakeHost{closed: make(chan struct{}, 1)}
}

func (h *fakeHost) Identity() (Identity, bool) {
	if h.identity == nil {
		return Identity{}, false
	}
	return *h.identity, true
}

func (h *fakeHost) Close() {
	h.closed <- struct{}{}
}

func (h *fakeHost) OpenPayment(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.payments = append(h.payments, url)
}

func (h *fakeHost) openedPayments() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.payments...)
}

type submitFunc func(ctx context.Context, payload *model.ContentRequest) (*client.GenerateResult, error)

func (f submitFunc) GenerateContent(ctx context.Context, payload *model.ContentRequest) (*client.GenerateResult, error) {
	return f(ctx, payload)
}

func int64Ptr(v int64) *int64 { return &v }

func newIdentifiedController(t *testing.T, submitter Submitter, host Host, fns ...OptionFn) *Controller {
	t.Helper()
	c := NewController(submitter, host, fns...)
	c.SetTelegramChatID("1001")
	c.SetTelegramUserID("2002")
	c.SetMainTopic("الماء")
	c.SetContentType("مطوية")
	c.SetContentLength("مختصر")
	return c
}

// jsonServer answers every request with status and body, recording the last request body.
func jsonServer(t *testing.T, status int, body string, captured *[]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/generate-content" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content-type, got %q", ct)
		}
		if captured != nil {
			*captured, _ = io.ReadAll(r.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewController_PrefillsIdentityFromHost(t *testing.T) {
	host := newFakeHost()
	host.identity = &Identity{UserID: int64Ptr(42), ChatID: int64Ptr(-100)}
	c := NewController(nil, host)

	req, err := c.BuildRequest()
	if err != nil {
		t.Fatalf("expected identifiers to parse, got %v", err)
	}
	if *req.TelegramUserID != 42 || *req.TelegramChatID != -100 {
		t.Fatalf("unexpected identifiers: user=%d chat=%d", *req.TelegramUserID, *req.TelegramChatID)
	}
}

func TestAddCustomField_BlankInputNeverMutates(t *testing.T) {
	cases := []struct {
		name, label, value string
	}{
		{"empty label", "", "value"},
		{"empty value", "label", ""},
		{"whitespace label", "  \t", "value"},
		{"whitespace value", "label", "\n "},
		{"both blank", " ", " "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			renders := 0
			c := NewController(nil, nil, WithRenderer(func([]model.CustomField) { renders++ }))
			if err := c.AddCustomField("kept", "yes"); err != nil {
				t.Fatalf("seed add failed: %v", err)
			}
			before := c.Fields()

			err := c.AddCustomField(tc.label, tc.value)
			if !errors.Is(err, ErrEmptyCustomField) {
				t.Fatalf("expected ErrEmptyCustomField, got %v", err)
			}
			if diff := cmp.Diff(before, c.Fields()); diff != "" {
				t.Fatalf("fields mutated (-before +after):\n%s", diff)
			}
			if renders != 1 {
				t.Fatalf("expected no re-render on rejected add, got %d renders", renders)
			}
			if got := c.Status(); got.Text != MsgFieldRequired || got.Tone != ToneError {
				t.Fatalf("unexpected status %#v", got)
			}
		})
	}
}

func TestAddDraftField_TrimsClearsDraftAndStatus(t *testing.T) {
	var rendered []model.CustomField
	c := NewController(nil, nil, WithRenderer(func(f []model.CustomField) { rendered = f }))

	_ = c.AddCustomField("", "")
	c.SetDraft("  الصف ", " الثالث  ")
	if err := c.AddDraftField(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []model.CustomField{{Label: "الصف", Value: "الثالث"}}
	if diff := cmp.Diff(want, c.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, rendered); diff != "" {
		t.Fatalf("render hook mismatch (-want +got):\n%s", diff)
	}
	if label, value := c.Draft(); label != "" || value != "" {
		t.Fatalf("expected draft cleared, got %q/%q", label, value)
	}
	if got := c.Status(); got != (Status{}) {
		t.Fatalf("expected validation status cleared, got %#v", got)
	}
}

func TestBuildRequest_LastWriteWinsAcrossAddAndRemove(t *testing.T) {
	type op struct {
		remove       bool
		index        int
		label, value string
	}
	ops := []op{
		{label: "a", value: "1"},
		{label: "b", value: "2"},
		{label: "a", value: "3"},
		{label: "c", value: "4"},
		{remove: true, index: 2},
		{label: "b", value: "5"},
		{remove: true, index: 0},
		{label: "c", value: "6"},
	}

	c := NewController(nil, nil)
	var replay []struct{ label, value string }
	for _, o := range ops {
		if o.remove {
			if err := c.RemoveCustomField(o.index); err != nil {
				t.Fatalf("remove(%d) failed: %v", o.index, err)
			}
			replay = append(replay[:o.index], replay[o.index+1:]...)
			continue
		}
		if err := c.AddCustomField(o.label, o.value); err != nil {
			t.Fatalf("add(%q) failed: %v", o.label, err)
		}
		replay = append(replay, struct{ label, value string }{o.label, o.value})
	}

	want := map[string]string{}
	for _, e := range replay {
		want[e.label] = e.value
	}
	req, _ := c.BuildRequest()
	if diff := cmp.Diff(want, req.CustomFields); diff != "" {
		t.Fatalf("custom fields mismatch (-want +got):\n%s", diff)
	}
	if req.CustomFields["b"] != "5" || req.CustomFields["c"] != "6" {
		t.Fatalf("expected later writes to win, got %#v", req.CustomFields)
	}
}

func TestBuildRequest_IsPure(t *testing.T) {
	c := newIdentifiedController(t, nil, nil)
	c.SetStyleOptions(model.StyleOptions{UseEmoji: true, DiscussionQuestions: true})
	_ = c.AddCustomField("x", "1")
	_ = c.AddCustomField("y", "2")

	first, err1 := c.BuildRequest()
	second, err2 := c.BuildRequest()
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("BuildRequest not pure (-first +second):\n%s", diff)
	}
	if len(c.Fields()) != 2 {
		t.Fatalf("BuildRequest mutated the field list")
	}
}

func TestBuildRequest_InvalidIdentifiers(t *testing.T) {
	c := NewController(nil, nil)
	c.SetTelegramChatID("12x")
	c.SetTelegramUserID("")

	req, err := c.BuildRequest()
	if !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
	var idErr *InvalidIdentifierError
	if !errors.As(err, &idErr) || idErr.Field != fieldChatID {
		t.Fatalf("expected chat id error first, got %#v", idErr)
	}
	if req.TelegramChatID != nil || req.TelegramUserID != nil {
		t.Fatalf("expected nil identifiers, got %v %v", req.TelegramChatID, req.TelegramUserID)
	}
}

func TestRemoveCustomField_IndexSemantics(t *testing.T) {
	c := NewController(nil, nil)
	for _, l := range []string{"a", "b", "c"} {
		_ = c.AddCustomField(l, l+"-value")
	}

	if err := c.RemoveCustomField(0); err != nil {
		t.Fatalf("first remove failed: %v", err)
	}
	if err := c.RemoveCustomField(0); err != nil {
		t.Fatalf("second remove failed: %v", err)
	}
	want := []model.CustomField{{Label: "c", Value: "c-value"}}
	if diff := cmp.Diff(want, c.Fields()); diff != "" {
		t.Fatalf("expected two distinct entries removed (-want +got):\n%s", diff)
	}

	if err := c.RemoveCustomField(1); !errors.Is(err, ErrFieldIndexOutOfRange) {
		t.Fatalf("expected stale index to be rejected, got %v", err)
	}
	if err := c.RemoveCustomField(-1); !errors.Is(err, ErrFieldIndexOutOfRange) {
		t.Fatalf("expected negative index to be rejected, got %v", err)
	}
	if diff := cmp.Diff(want, c.Fields()); diff != "" {
		t.Fatalf("stale remove mutated fields (-want +got):\n%s", diff)
	}
}

func TestSubmit_SendsCustomFieldsAsMapping(t *testing.T) {
	var captured []byte
	srv := jsonServer(t, http.StatusOK, `{"status":"success","message":"ok"}`, &captured)
	c := NewController(client.NewContentApiClient(srv.URL, 5), nil)
	c.SetTelegramChatID("1001")
	c.SetTelegramUserID("2002")
	c.SetMainTopic("x")
	c.SetContentType("مطوية")
	c.SetContentLength("مختصر")
	if err := c.AddCustomField("الصف", "الثالث"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	res := c.Submit(context.Background())
	if res.Status != OutcomeSuccess {
		t.Fatalf("expected success, got %#v", res)
	}

	var body map[string]any
	if err := json.Unmarshal(captured, &body); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"الصف": "الثالث"}, body["customFields"]); diff != "" {
		t.Fatalf("customFields mismatch (-want +got):\n%s", diff)
	}
	if body["mainTopic"] != "x" || body["contentType"] != "مطوية" || body["contentLength"] != "مختصر" {
		t.Fatalf("unexpected static fields: %v", body)
	}
	if _, ok := body["outputType"]; ok {
		t.Fatalf("outputType must not be sent")
	}
	if body["telegram_chat_id"] != float64(1001) || body["telegram_user_id"] != float64(2002) {
		t.Fatalf("unexpected identifiers: %v / %v", body["telegram_chat_id"], body["telegram_user_id"])
	}
	style, ok := body["styleOptions"].(map[string]any)
	if !ok || len(style) != 5 {
		t.Fatalf("expected 5 style flags, got %v", body["styleOptions"])
	}
}

func TestSubmit_SuccessClosesHostAfterDelay(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"status":"success"}`, nil)
	host := newFakeHost()
	c := newIdentifiedController(t, client.NewContentApiClient(srv.URL, 5), host, WithCloseDelay(20*time.Millisecond))

	res := c.Submit(context.Background())
	if res.Status != OutcomeSuccess || res.Err != nil {
		t.Fatalf("expected success, got %#v", res)
	}
	if got := c.Status(); got.Text != MsgSuccess || got.Tone != ToneSuccess {
		t.Fatalf("unexpected status %#v", got)
	}

	select {
	case <-host.closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("host was not closed after success")
	}
}

func TestSubmit_PaymentRequiredOpensInvoice(t *testing.T) {
	srv := jsonServer(t, http.StatusPaymentRequired, `{"status":"payment_required","invoice_sent":true,"invoice_url":"https://pay/1"}`, nil)
	host := newFakeHost()
	c := newIdentifiedController(t, client.NewContentApiClient(srv.URL, 5), host)

	res := c.Submit(context.Background())
	if res.Status != OutcomePaymentRequired {
		t.Fatalf("expected payment_required, got %#v", res)
	}
	if res.InvoiceURL != "https://pay/1" {
		t.Fatalf("unexpected invoice url %q", res.InvoiceURL)
	}
	if diff := cmp.Diff([]string{"https://pay/1"}, host.openedPayments()); diff != "" {
		t.Fatalf("payment calls mismatch (-want +got):\n%s", diff)
	}
	if got := c.Status(); got.Text != MsgPaymentRequired || got.Tone != ToneWarning {
		t.Fatalf("unexpected status %#v", got)
	}
}

func TestSubmit_PaymentRequiredWithoutInvoiceIsError(t *testing.T) {
	srv := jsonServer(t, http.StatusPaymentRequired, `{"detail":"هذه الميزة تتطلب دفعاً"}`, nil)
	host := newFakeHost()
	c := newIdentifiedController(t, client.NewContentApiClient(srv.URL, 5), host)

	res := c.Submit(context.Background())
	if res.Status != OutcomeError {
		t.Fatalf("expected error, got %#v", res)
	}
	if !strings.Contains(res.Message, "هذه الميزة تتطلب دفعاً") {
		t.Fatalf("expected detail in message, got %q", res.Message)
	}
	if len(host.openedPayments()) != 0 {
		t.Fatalf("payment flow must not open without an invoice")
	}
}

func TestSubmit_ErrorDetailIsShown(t *testing.T) {
	srv := jsonServer(t, http.StatusInternalServerError, `{"detail":"quota exceeded"}`, nil)
	c := newIdentifiedController(t, client.NewContentApiClient(srv.URL, 5), nil)

	res := c.Submit(context.Background())
	if res.Status != OutcomeError {
		t.Fatalf("expected error, got %#v", res)
	}
	if !strings.Contains(c.Status().Text, "quota exceeded") {
		t.Fatalf("expected status to include detail, got %q", c.Status().Text)
	}
	var respErr *ResponseError
	if !errors.As(res.Err, &respErr) || respErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected ResponseError with 500, got %v", res.Err)
	}
}

func TestSubmit_ErrorFallbacks(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message when no detail", http.StatusBadRequest, `{"message":"bad topic"}`, ErrorPrefix + "bad topic"},
		{"non-JSON body", http.StatusBadGateway, `<html>bad gateway</html>`, ErrorPrefix + "HTTP 502"},
		{"OK with unexpected shape", http.StatusOK, `{"status":"queued"}`, ErrorPrefix + "HTTP 200"},
		{"OK with non-JSON body", http.StatusOK, `ok`, ErrorPrefix + "HTTP 200"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := jsonServer(t, tc.status, tc.body, nil)
			c := newIdentifiedController(t, client.NewContentApiClient(srv.URL, 5), nil)

			res := c.Submit(context.Background())
			if res.Status != OutcomeError || res.Message != tc.want {
				t.Fatalf("expected error %q, got %#v", tc.want, res)
			}
		})
	}
}

func TestSubmit_OfflineIsConnectivityFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newIdentifiedController(t, client.NewContentApiClient(url, 5), newFakeHost())
	res := c.Submit(context.Background())

	if res.Status != OutcomeError || res.Message != MsgConnectionFailed {
		t.Fatalf("expected connectivity failure, got %#v", res)
	}
	if !errors.Is(res.Err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", res.Err)
	}
	if c.Submitting() {
		t.Fatalf("controller stuck in submitting state")
	}
}

func TestSubmit_TimeoutIsConnectivityFailure(t *testing.T) {
	blocking := submitFunc(func(ctx context.Context, _ *model.ContentRequest) (*client.GenerateResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	c := newIdentifiedController(t, blocking, nil, WithSubmitTimeout(20*time.Millisecond))

	res := c.Submit(context.Background())
	if res.Message != MsgConnectionFailed || !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Fatalf("expected timeout as connectivity failure, got %#v", res)
	}
	if !errors.Is(res.Err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", res.Err)
	}
}

func TestSubmit_RejectsConcurrentSubmissionAndCancels(t *testing.T) {
	started := make(chan struct{})
	var calls int
	var mu sync.Mutex
	blocking := submitFunc(func(ctx context.Context, _ *model.ContentRequest) (*client.GenerateResult, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	})
	c := newIdentifiedController(t, blocking, nil)

	done := make(chan Result, 1)
	go func() { done <- c.Submit(context.Background()) }()
	<-started

	if !c.Submitting() {
		t.Fatalf("expected in-flight submission")
	}
	if got := c.Status(); got.Text != MsgSending || got.Tone != ToneInfo {
		t.Fatalf("unexpected in-flight status %#v", got)
	}
	second := c.Submit(context.Background())
	if !errors.Is(second.Err, ErrSubmissionInProgress) {
		t.Fatalf("expected ErrSubmissionInProgress, got %#v", second)
	}

	c.Cancel()
	select {
	case res := <-done:
		if !errors.Is(res.Err, context.Canceled) {
			t.Fatalf("expected cancelled submission, got %#v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("cancel did not release the submission")
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Fatalf("expected exactly one network call, got %d", calls)
	}
}

func TestSubmit_SnapshotsStateBeforeSending(t *testing.T) {
	release := make(chan struct{})
	got := make(chan *model.ContentRequest, 1)
	var c *Controller
	submitter := submitFunc(func(ctx context.Context, payload *model.ContentRequest) (*client.GenerateResult, error) {
		c.SetMainTopic("changed")
		_ = c.AddCustomField("late", "edit")
		<-release
		got <- payload
		return &client.GenerateResult{StatusCode: http.StatusOK, Body: &model.ContentResponse{Status: model.StatusSuccess}}, nil
	})
	c = newIdentifiedController(t, submitter, nil)

	go func() { close(release) }()
	c.Submit(context.Background())

	payload := <-got
	if payload.MainTopic != "الماء" || len(payload.CustomFields) != 0 {
		t.Fatalf("in-flight edits leaked into payload: %#v", payload)
	}
}

func TestSubmit_InvalidIdentifierSkipsNetwork(t *testing.T) {
	called := false
	submitter := submitFunc(func(context.Context, *model.ContentRequest) (*client.GenerateResult, error) {
		called = true
		return nil, nil
	})
	c := NewController(submitter, nil)
	c.SetTelegramChatID("not-a-number")
	c.SetTelegramUserID("7")

	res := c.Submit(context.Background())
	if called {
		t.Fatalf("submitter must not be called with invalid identifiers")
	}
	if res.Status != OutcomeError || !errors.Is(res.Err, ErrInvalidIdentifier) {
		t.Fatalf("expected invalid identifier error, got %#v", res)
	}
	if c.Status().Tone != ToneError {
		t.Fatalf("expected error tone, got %#v", c.Status())
	}
}
