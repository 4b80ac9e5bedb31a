package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultCatalog(t *testing.T) {
	reg := New()

	models := reg.ListModels()
	require.Len(t, models, 5)

	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{"gpt-4o", "gpt-4-turbo", "gpt-4o-mini", "claude-opus-4-1", "claude-sonnet-4-5"}, ids)
}

func TestByID(t *testing.T) {
	reg := New()

	m, ok := reg.ByID("claude-opus-4-1")
	require.True(t, ok)
	assert.Equal(t, ProviderAnthropic, m.Provider)
	assert.Equal(t, TierPremium, m.Tier)
	assert.Equal(t, 32000, m.MaxOutputTokens)

	_, ok = reg.ByID("gpt-99")
	assert.False(t, ok)
}

func TestModelsForProvider(t *testing.T) {
	reg := New()

	openai := reg.ModelsForProvider(ProviderOpenAI)
	require.Len(t, openai, 3)
	for _, m := range openai {
		assert.Equal(t, ProviderOpenAI, m.Provider)
	}

	anthropic := reg.ModelsForProvider(ProviderAnthropic)
	assert.Len(t, anthropic, 2)
}

func TestHasCapability(t *testing.T) {
	m := ModelDescriptor{Capabilities: []string{CapabilityCreative, CapabilityDetailed}}

	assert.True(t, m.HasCapability(CapabilityCreative))
	assert.True(t, m.HasCapability(CapabilityDetailed))
	assert.False(t, m.HasCapability(CapabilityAnalytical))
}

func TestSortByTier(t *testing.T) {
	models := []ModelDescriptor{
		{ID: "std-1", Tier: TierStandard},
		{ID: "adv-1", Tier: TierAdvanced},
		{ID: "prem-1", Tier: TierPremium},
		{ID: "prem-2", Tier: TierPremium},
		{ID: "adv-2", Tier: TierAdvanced},
	}

	sorted := SortByTier(models)

	ids := make([]string, len(sorted))
	for i, m := range sorted {
		ids[i] = m.ID
	}
	// stable: catalog order breaks ties within a tier
	assert.Equal(t, []string{"prem-1", "prem-2", "adv-1", "adv-2", "std-1"}, ids)

	// input untouched
	assert.Equal(t, "std-1", models[0].ID)
}

func TestNewFromFile(t *testing.T) {
	catalog := `models:
  - id: custom-model
    provider: openai
    capabilities: [analytical, precise]
    tier: advanced
    max_output_tokens: 8192
    temperature: 0.5
`
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o644))

	reg, err := NewFromFile(path)
	require.NoError(t, err)

	m, ok := reg.ByID("custom-model")
	require.True(t, ok)
	assert.Equal(t, ProviderOpenAI, m.Provider)
	assert.Equal(t, TierAdvanced, m.Tier)
	assert.Equal(t, 8192, m.MaxOutputTokens)
	assert.Equal(t, 0.5, m.Temperature)
	assert.True(t, m.HasCapability(CapabilityPrecise))
}

func TestNewFromFile_Errors(t *testing.T) {
	_, err := NewFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("models: []\n"), 0o644))
	_, err = NewFromFile(empty)
	assert.ErrorContains(t, err, "contains no models")
}
