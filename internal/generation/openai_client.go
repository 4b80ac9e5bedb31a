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

// OpenAIClient handles communication with an OpenAI-compatible chat API
type OpenAIClient struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	breaker    *gobreaker.CircuitBreaker
}

// openAIChatRequest is the wire format for a chat completion request
type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewOpenAIClient creates a new OpenAI-compatible API client
func NewOpenAIClient(baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	settings := gobreaker.Settings{
		Name:        "openai-provider",
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

	return &OpenAIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		tracer:  otel.Tracer("openai-client"),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// SetBaseURL sets the base URL for testing purposes
func (c *OpenAIClient) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// Complete executes a single chat completion and returns the generated text
func (c *OpenAIClient) Complete(ctx context.Context, apiKey, model, prompt string, maxTokens int, temperature float64) (string, error) {
	ctx, span := c.tracer.Start(ctx, "openai.complete")
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
func (c *OpenAIClient) completeInternal(ctx context.Context, apiKey, model, prompt string, maxTokens int, temperature float64) (string, error) {
	reqBody := openAIChatRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("openai returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResp openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("openai error (%s): %s", chatResp.Error.Type, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai returned an empty completion for model %s", model)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// Healthy checks whether the provider endpoint is reachable
func (c *OpenAIClient) Healthy(ctx context.Context) bool {
	_, span := c.tracer.Start(ctx, "openai.health_check")
	defer span.End()

	if c.breaker.State() == gobreaker.StateOpen {
		span.SetAttributes(attribute.Bool("healthy", false), attribute.String("reason", "circuit_breaker_open"))
		return false
	}

	url := fmt.Sprintf("%s/v1/models", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
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

	// 401 still proves the endpoint is up; the key is validated per call
	healthy := resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusUnauthorized
	span.SetAttributes(attribute.Bool("healthy", healthy))

	return healthy
}
