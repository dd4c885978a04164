package client

import (
	"AI-Content-Creator-Backend/internal/logging"
	"AI-Content-Creator-Backend/internal/model"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

const generatePath = "/generate-content"

// ErrTransport marks failures where no HTTP response was received.
var ErrTransport = errors.New("content api unreachable")

// GenerateResult is a received HTTP response. Body is nil when the payload
// was not a JSON object.
type GenerateResult struct {
	StatusCode int
	Body       *model.ContentResponse
}

type ContentApiClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewContentApiClient(baseURL string, timeoutSec int) *ContentApiClient {
	return &ContentApiClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
	}
}

// GenerateContent posts the request and returns whatever the server answered.
// Any returned error wraps ErrTransport.
func (c *ContentApiClient) GenerateContent(ctx context.Context, payload *model.ContentRequest) (*GenerateResult, error) {
	log := logging.Named("content-client")

	payloadBytes, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+generatePath, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log.Debug("sending request", zap.ByteString("body", payloadBytes))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			log.Warn("request timed out", zap.Duration("timeout", c.HTTPClient.Timeout))
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	result := &GenerateResult{StatusCode: resp.StatusCode}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("failed to read response body", zap.Int("status", resp.StatusCode), zap.Error(err))
		return result, nil
	}

	var body model.ContentResponse
	if err := sonic.Unmarshal(bodyBytes, &body); err != nil {
		log.Warn("response body is not JSON", zap.Int("status", resp.StatusCode), zap.ByteString("body", bodyBytes))
		return result, nil
	}
	result.Body = &body
	log.Debug("received response", zap.Int("status", resp.StatusCode), zap.String("result_status", body.Status))
	return result, nil
}

// FetchOptions loads the dropdown catalogs from GET /options.
func (c *ContentApiClient) FetchOptions(ctx context.Context) (*model.OptionsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/options", nil)
	if err != nil {
		return nil, fmt.Errorf("build options request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("options API returned status: %s", resp.Status)
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read options response: %w", err)
	}
	var options model.OptionsResponse
	if err := sonic.Unmarshal(bodyBytes, &options); err != nil {
		return nil, fmt.Errorf("decode options response: %w", err)
	}
	return &options, nil
}
