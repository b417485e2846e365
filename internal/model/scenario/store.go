package scenario

import "errors"

// ErrUnknownScenario is returned when a tag does not match any seeded scenario.
var ErrUnknownScenario = errors.New("unknown scenario")

// Store exposes scenario retrieval for HTTP handlers and the chat gateway.
type Store interface {
	List() []Scenario
	FindByID(id string) (Scenario, bool)
	SystemPrompt(id string) (string, error)
}

// MemoryStore implements Store with an in-memory slice; the catalog is fixed
// for the process lifetime.
type MemoryStore struct {
	items []Scenario
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied scenarios.
func NewMemoryStore(items []Scenario) *MemoryStore {
	return &MemoryStore{items: append([]Scenario(nil), items...)}
}

// List returns the predefined scenario list.
func (s *MemoryStore) List() []Scenario {
	return append([]Scenario(nil), s.items...)
}

// FindByID looks up a scenario by tag.
func (s *MemoryStore) FindByID(id string) (Scenario, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Scenario{}, false
}

// SystemPrompt resolves the fixed instruction string for a scenario tag.
func (s *MemoryStore) SystemPrompt(id string) (string, error) {
	item, ok := s.FindByID(id)
	if !ok {
		return "", ErrUnknownScenario
	}
	return item.SystemPrompt, nil
}
