package registry

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Provider identifies which API family a model belongs to
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Tier is a coarse capability ranking used for default ordering and tie-breaks
type Tier string

const (
	TierPremium  Tier = "premium"
	TierAdvanced Tier = "advanced"
	TierStandard Tier = "standard"
)

// Capability tags describe what a model is good at
const (
	CapabilityCreative      = "creative"
	CapabilityAnalytical    = "analytical"
	CapabilityPrecise       = "precise"
	CapabilityComprehensive = "comprehensive"
	CapabilityDetailed      = "detailed"
	CapabilityStructured    = "structured"
)

// ModelDescriptor describes one model in the catalog. Descriptors are defined
// at process start and never mutated.
type ModelDescriptor struct {
	ID              string   `yaml:"id" json:"id"`
	Provider        Provider `yaml:"provider" json:"provider"`
	Capabilities    []string `yaml:"capabilities" json:"capabilities"`
	Tier            Tier     `yaml:"tier" json:"tier"`
	MaxOutputTokens int      `yaml:"max_output_tokens" json:"max_output_tokens"`
	Temperature     float64  `yaml:"temperature" json:"temperature"`
}

// HasCapability reports whether the model carries the given capability tag
func (m ModelDescriptor) HasCapability(capability string) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// tierRank maps tiers to their sort order: premium before advanced before standard
func tierRank(t Tier) int {
	switch t {
	case TierPremium:
		return 0
	case TierAdvanced:
		return 1
	default:
		return 2
	}
}

// Registry is the read-only model catalog. Safe for concurrent reads after
// construction.
type Registry struct {
	models []ModelDescriptor
	byID   map[string]ModelDescriptor
}

// defaultCatalog is the built-in five-entry model table. Concrete identifiers
// are configuration; deployments can override them with a catalog file.
var defaultCatalog = []ModelDescriptor{
	{
		ID:              "gpt-4o",
		Provider:        ProviderOpenAI,
		Capabilities:    []string{CapabilityAnalytical, CapabilityComprehensive, CapabilityCreative},
		Tier:            TierPremium,
		MaxOutputTokens: 16384,
		Temperature:     0.7,
	},
	{
		ID:              "gpt-4-turbo",
		Provider:        ProviderOpenAI,
		Capabilities:    []string{CapabilityAnalytical, CapabilityStructured},
		Tier:            TierAdvanced,
		MaxOutputTokens: 4096,
		Temperature:     0.7,
	},
	{
		ID:              "gpt-4o-mini",
		Provider:        ProviderOpenAI,
		Capabilities:    []string{CapabilityPrecise, CapabilityStructured},
		Tier:            TierStandard,
		MaxOutputTokens: 16384,
		Temperature:     0.7,
	},
	{
		ID:              "claude-opus-4-1",
		Provider:        ProviderAnthropic,
		Capabilities:    []string{CapabilityCreative, CapabilityComprehensive, CapabilityDetailed},
		Tier:            TierPremium,
		MaxOutputTokens: 32000,
		Temperature:     0.7,
	},
	{
		ID:              "claude-sonnet-4-5",
		Provider:        ProviderAnthropic,
		Capabilities:    []string{CapabilityAnalytical, CapabilityPrecise, CapabilityDetailed},
		Tier:            TierAdvanced,
		MaxOutputTokens: 64000,
		Temperature:     0.7,
	},
}

// New creates a registry from the built-in default catalog
func New() *Registry {
	return newFromModels(defaultCatalog)
}

// NewFromFile creates a registry from a YAML catalog file
func NewFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model catalog: %w", err)
	}

	var catalog struct {
		Models []ModelDescriptor `yaml:"models"`
	}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse model catalog: %w", err)
	}
	if len(catalog.Models) == 0 {
		return nil, fmt.Errorf("model catalog %s contains no models", path)
	}

	return newFromModels(catalog.Models), nil
}

func newFromModels(models []ModelDescriptor) *Registry {
	byID := make(map[string]ModelDescriptor, len(models))
	copied := make([]ModelDescriptor, len(models))
	copy(copied, models)
	for _, m := range copied {
		byID[m.ID] = m
	}
	return &Registry{models: copied, byID: byID}
}

// ListModels returns all models in catalog order
func (r *Registry) ListModels() []ModelDescriptor {
	out := make([]ModelDescriptor, len(r.models))
	copy(out, r.models)
	return out
}

// ByID looks up a model descriptor by its identifier
func (r *Registry) ByID(id string) (ModelDescriptor, bool) {
	m, ok := r.byID[id]
	return m, ok
}

// ModelsForProvider returns all models of the given provider family in catalog order
func (r *Registry) ModelsForProvider(provider Provider) []ModelDescriptor {
	var out []ModelDescriptor
	for _, m := range r.models {
		if m.Provider == provider {
			out = append(out, m)
		}
	}
	return out
}

// SortByTier orders models premium first, then advanced, then standard. The
// sort is stable so catalog order breaks ties.
func SortByTier(models []ModelDescriptor) []ModelDescriptor {
	out := make([]ModelDescriptor, len(models))
	copy(out, models)
	sort.SliceStable(out, func(i, j int) bool {
		return tierRank(out[i].Tier) < tierRank(out[j].Tier)
	})
	return out
}
