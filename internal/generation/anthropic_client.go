package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sirupsen/logrus"
)

const anthropicVersion = "2023-06-01"

// AnthropicClient handles communication with an Anthropic-compatible messages API
type AnthropicClient struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	breaker    *gobreaker.CircuitBreaker
}

type anthropicMessageRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicMessageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAnthropicClient creates a new Anthropic-compatible API client
func NewAnthropicClient(baseURL string) *AnthropicClient {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	settings := gobreaker.Settings{
		Name:        "anthropic-provider",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logrus.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &AnthropicClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		tracer:  otel.Tracer("anthropic-client"),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// SetBaseURL sets the base URL for testing purposes
func (c *AnthropicClient) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// Complete executes a single message completion and returns the generated text
func (c *AnthropicClient) Complete(ctx context.Context, apiKey, model, prompt string, maxTokens int, temperature float64) (string, error) {
	ctx, span := c.tracer.Start(ctx, "anthropic.complete")
	defer span.End()

	span.SetAttributes(
		attribute.String("model", model),
		attribute.Int("max_tokens", maxTokens),
	)

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.completeInternal(ctx, apiKey, model, prompt, maxTokens, temperature)
	})

	if err != nil {
		span.RecordError(err)
		return "", err
	}

	return result.(string), nil
}

// completeInternal performs the actual HTTP request
func (c *AnthropicClient) completeInternal(ctx context.Context, apiKey, model, prompt string, maxTokens int, temperature float64) (string, error) {
	reqBody := anthropicMessageRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/messages", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("anthropic returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return "", fmt.Errorf("anthropic returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var msgResp anthropicMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if msgResp.Error != nil {
		return "", fmt.Errorf("anthropic error (%s): %s", msgResp.Error.Type, msgResp.Error.Message)
	}

	var text string
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("anthropic returned an empty completion for model %s", model)
	}

	return text, nil
}

// Healthy checks whether the provider endpoint is reachable
func (c *AnthropicClient) Healthy(ctx context.Context) bool {
	_, span := c.tracer.Start(ctx, "anthropic.health_check")
	defer span.End()

	if c.breaker.State() == gobreaker.StateOpen {
		span.SetAttributes(attribute.Bool("healthy", false), attribute.String("reason", "circuit_breaker_open"))
		return false
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/messages", nil)
	if err != nil {
		span.RecordError(err)
		return false
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		return false
	}
	defer resp.Body.Close()

	// Any HTTP response proves reachability; auth errors are reported per call
	healthy := resp.StatusCode < http.StatusInternalServerError
	span.SetAttributes(attribute.Bool("healthy", healthy))

	return healthy
}
