package providers

import (
	"fmt"
	"strings"

	"studydesk/internal/config"
)

type NamedProvider struct {
	Ref      ProviderRef
	Provider StudyProvider
}

type Manager struct {
	providers []NamedProvider
}

func NewManager(cfg config.Config) (*Manager, error) {
	refs := ParseProviderList(cfg.Providers)
	m := &Manager{}
	for _, ref := range refs {
		p, err := buildProvider(ref)
		if err != nil {
			return nil, err
		}
		m.providers = append(m.providers, NamedProvider{Ref: ref, Provider: p})
	}
	if len(m.providers) == 0 {
		m.providers = []NamedProvider{{Ref: ProviderRef{Raw: "mock", Name: "mock"}, Provider: NewMockProvider()}}
	}
	return m, nil
}

// Primary returns the first configured provider.
func (m *Manager) Primary() (StudyProvider, ProviderRef) {
	return m.providers[0].Provider, m.providers[0].Ref
}

func (m *Manager) ByName(name string) (StudyProvider, ProviderRef, bool) {
	target := strings.ToLower(strings.TrimSpace(name))
	if target == "" {
		return nil, ProviderRef{}, false
	}
	for i := range m.providers {
		if strings.ToLower(m.providers[i].Ref.Name) == target {
			return m.providers[i].Provider, m.providers[i].Ref, true
		}
	}
	return nil, ProviderRef{}, false
}

func (m *Manager) Count() int {
	return len(m.providers)
}

func buildProvider(ref ProviderRef) (StudyProvider, error) {
	switch strings.ToLower(ref.Name) {
	case "mock":
		return NewMockProvider(), nil
	case "gemini":
		return NewGeminiProvider(ref.Model), nil
	case "openai":
		return NewOpenAIProvider(ref.Model), nil
	case "ollama":
		return NewOllamaProvider(ref.Model), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", ref.Name)
	}
}
