package generation

import (
	"fmt"

	"github.com/stratten/Collaborative-LLM-Refinement/internal/registry"
)

// UnknownModelError indicates a generation request named a model that is not
// in the registry.
type UnknownModelError struct {
	ModelID string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model: %s", e.ModelID)
}

// ProviderUnavailableError indicates no credential is configured for the
// provider that serves the requested model.
type ProviderUnavailableError struct {
	Provider registry.Provider
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("no credential configured for provider %s", e.Provider)
}

// PromptTooLongError indicates the prompt would leave less than 30%% of the
// model's token budget for output.
type PromptTooLongError struct {
	ModelID         string
	EstimatedTokens int
	BudgetTokens    int
}

func (e *PromptTooLongError) Error() string {
	return fmt.Sprintf("prompt too long for model %s: estimated %d tokens exceeds budget of %d",
		e.ModelID, e.EstimatedTokens, e.BudgetTokens)
}

// ProviderCallError wraps any failure from the external generation capability,
// including empty responses. Calls are not retried at this layer.
type ProviderCallError struct {
	ModelID string
	Err     error
}

func (e *ProviderCallError) Error() string {
	return fmt.Sprintf("generation call failed for model %s: %v", e.ModelID, e.Err)
}

func (e *ProviderCallError) Unwrap() error {
	return e.Err
}
