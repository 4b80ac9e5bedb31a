package generation

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stratten/Collaborative-LLM-Refinement/internal/credentials"
	"github.com/stratten/Collaborative-LLM-Refinement/internal/registry"
)

// outputBudgetReservation is the fraction of a model's token budget that must
// remain free for output. Input estimated above 70% of the budget is rejected.
const outputBudgetReservation = 0.7

// Options overrides the per-model generation defaults for a single call
type Options struct {
	MaxTokens   int
	Temperature *float64
}

// ProviderClient is the external text-generation capability for one provider
// family.
type ProviderClient interface {
	Complete(ctx context.Context, apiKey, model, prompt string, maxTokens int, temperature float64) (string, error)
	Healthy(ctx context.Context) bool
}

// Service invokes the external generation capability for a model id and
// prompt, resolving per-model defaults and enforcing the input-length guard.
// Stateless per call.
type Service struct {
	registry *registry.Registry
	creds    *credentials.Store
	clients  map[registry.Provider]ProviderClient
}

// NewService creates a generation service with the default provider clients
func NewService(reg *registry.Registry, creds *credentials.Store, openaiBaseURL, anthropicBaseURL string) *Service {
	return &Service{
		registry: reg,
		creds:    creds,
		clients: map[registry.Provider]ProviderClient{
			registry.ProviderOpenAI:    NewOpenAIClient(openaiBaseURL),
			registry.ProviderAnthropic: NewAnthropicClient(anthropicBaseURL),
		},
	}
}

// SetProviderClient replaces the client for a provider, for testing purposes
func (s *Service) SetProviderClient(provider registry.Provider, client ProviderClient) {
	s.clients[provider] = client
}

// EstimateTokens approximates the token count of a prompt as ceil(len/4).
// This is deliberately rough; a real tokenizer may be substituted as long as
// the 70% reservation rule is preserved.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// Generate invokes the model's provider with the prompt and returns the
// generated text. Empty provider responses are errors, never empty strings.
func (s *Service) Generate(ctx context.Context, modelID, prompt string, opts *Options) (string, error) {
	model, ok := s.registry.ByID(modelID)
	if !ok {
		return "", &UnknownModelError{ModelID: modelID}
	}

	apiKey, ok := s.creds.KeyFor(model.Provider)
	if !ok {
		return "", &ProviderUnavailableError{Provider: model.Provider}
	}

	maxTokens := model.MaxOutputTokens
	temperature := model.Temperature
	if opts != nil {
		if opts.MaxTokens > 0 {
			maxTokens = opts.MaxTokens
		}
		if opts.Temperature != nil {
			temperature = *opts.Temperature
		}
	}

	budget := int(float64(maxTokens) * outputBudgetReservation)
	if estimated := EstimateTokens(prompt); estimated > budget {
		return "", &PromptTooLongError{
			ModelID:         modelID,
			EstimatedTokens: estimated,
			BudgetTokens:    budget,
		}
	}

	client, ok := s.clients[model.Provider]
	if !ok {
		return "", &ProviderUnavailableError{Provider: model.Provider}
	}

	start := time.Now()
	text, err := client.Complete(ctx, apiKey, modelID, prompt, maxTokens, temperature)
	if err != nil {
		return "", &ProviderCallError{ModelID: modelID, Err: err}
	}

	logrus.WithFields(logrus.Fields{
		"model":      modelID,
		"provider":   model.Provider,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Debug("Generation call completed")

	return text, nil
}

// AvailableModels returns the models whose provider has a configured
// credential, in catalog order.
func (s *Service) AvailableModels() []registry.ModelDescriptor {
	var out []registry.ModelDescriptor
	for _, m := range s.registry.ListModels() {
		if s.creds.Configured(m.Provider) {
			out = append(out, m)
		}
	}
	return out
}

// ProviderHealthy reports whether the provider's endpoint is reachable
func (s *Service) ProviderHealthy(ctx context.Context, provider registry.Provider) bool {
	client, ok := s.clients[provider]
	if !ok {
		return false
	}
	return client.Healthy(ctx)
}
