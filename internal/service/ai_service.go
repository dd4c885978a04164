package service

import (
	"AI-Content-Creator-Backend/internal/logging"
	"AI-Content-Creator-Backend/internal/metrics"
	"AI-Content-Creator-Backend/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/parnurzeal/gorequest"
	"go.uber.org/zap"
)

type AIService struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

func NewAIService(baseURL, apiKey, model string, timeoutSec int, temperature float64, maxTokens int) *AIService {
	return &AIService{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIKey:      apiKey,
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Timeout:     time.Duration(timeoutSec) * time.Second,
	}
}

// Generate sends one chat completion and returns the trimmed reply. gorequest
// has no context support, so ctx is only checked before the call; the
// configured Timeout bounds the request itself.
func (s *AIService) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	log := logging.Named("ai")

	payload := model.AIChatRequest{
		Model:       s.Model,
		Messages:    []model.Message{{Role: "user", Content: prompt}},
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	}

	log.Debug("sending chat completion", zap.String("model", s.Model), zap.Int("prompt_runes", len([]rune(prompt))))
	start := time.Now()
	resp, body, errs := gorequest.New().
		Timeout(s.Timeout).
		Post(s.BaseURL+"/chat/completions").
		Set("Authorization", "Bearer "+s.APIKey).
		Send(payload).
		EndBytes()
	metrics.AIRequestDuration.Observe(time.Since(start).Seconds())

	if len(errs) > 0 {
		log.Error("chat completion request failed", zap.Errors("errors", errs))
		return "", fmt.Errorf("%w: %v", ErrAIService, errs[0])
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr model.AIErrorResponse
		msg := resp.Status
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		log.Error("chat completion returned error status", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return "", fmt.Errorf("%w: %s", ErrAIService, msg)
	}

	var aiResponse model.AIChatResponse
	if err := json.Unmarshal(body, &aiResponse); err != nil {
		log.Error("failed to decode chat completion", zap.ByteString("body", body), zap.Error(err))
		return "", fmt.Errorf("%w: decode response: %v", ErrAIService, err)
	}
	if len(aiResponse.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", ErrAIService)
	}

	content := strings.TrimSpace(aiResponse.Choices[0].Message.Content)
	log.Debug("received chat completion", zap.Int("content_runes", len([]rune(content))))
	return content, nil
}
