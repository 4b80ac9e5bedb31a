package credentials

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/stratten/Collaborative-LLM-Refinement/internal/registry"
)

// minKeyLength is the shortest credential string accepted for any provider.
// These are format checks only; keys are not verified against the provider.
const minKeyLength = 20

// Store holds per-provider API credentials in memory. Durable credential
// storage belongs to the embedding application, not this service.
type Store struct {
	mu   sync.RWMutex
	keys map[registry.Provider]string
}

// NewStore creates an empty credential store
func NewStore() *Store {
	return &Store{
		keys: make(map[registry.Provider]string),
	}
}

// validKeyFormat checks the shape of a credential string for a provider
func validKeyFormat(provider registry.Provider, key string) bool {
	key = strings.TrimSpace(key)
	if len(key) < minKeyLength {
		return false
	}
	switch provider {
	case registry.ProviderOpenAI:
		return strings.HasPrefix(key, "sk-") && !strings.HasPrefix(key, "sk-ant-")
	case registry.ProviderAnthropic:
		return strings.HasPrefix(key, "sk-ant-")
	default:
		return false
	}
}

// Set validates and stores credentials for the given providers. It returns the
// providers whose credentials were accepted; malformed entries are skipped.
func (s *Store) Set(keys map[registry.Provider]string) []registry.Provider {
	s.mu.Lock()
	defer s.mu.Unlock()

	var accepted []registry.Provider
	for provider, key := range keys {
		if !validKeyFormat(provider, key) {
			logrus.WithField("provider", provider).Warn("Rejected malformed provider credential")
			continue
		}
		s.keys[provider] = strings.TrimSpace(key)
		accepted = append(accepted, provider)
	}
	return accepted
}

// KeyFor returns the stored credential for a provider
func (s *Store) KeyFor(provider registry.Provider) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[provider]
	return key, ok
}

// Configured reports whether a credential is stored for the provider
func (s *Store) Configured(provider registry.Provider) bool {
	_, ok := s.KeyFor(provider)
	return ok
}

// ConfiguredProviders lists all providers with stored credentials
func (s *Store) ConfiguredProviders() []registry.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]registry.Provider, 0, len(s.keys))
	for provider := range s.keys {
		out = append(out, provider)
	}
	return out
}
