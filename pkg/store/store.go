package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/message"
)

// ErrNotFound is returned for an unknown scenario id
var ErrNotFound = errors.New("scenario not found")

// Defaults configures newly created scenarios
type Defaults struct {
	Model       string
	Temperature float64
}

// Store is the ordered scenario collection. Every mutation replaces the affected
// record wholesale, so readers never observe a partially updated scenario.
type Store struct {
	mu           sync.RWMutex
	scenarios    []domain.Scenario
	sessionTotal float64
	defaults     Defaults
	newID        func() string
}

// NewStore creates an empty store
func NewStore(defaults Defaults) *Store {
	// A zero Defaults means the built-in model and temperature
	if defaults == (Defaults{}) {
		defaults = Defaults{Model: domain.DefaultModel, Temperature: domain.DefaultTemperature}
	}
	if defaults.Model == "" {
		defaults.Model = domain.DefaultModel
	}
	return &Store{
		defaults: defaults,
		newID:    uuid.NewString,
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.scenarios {
		if s.scenarios[i].ID == id {
			return i
		}
	}
	return -1
}

// Add appends a new idle scenario. A blank description becomes "Scenario N".
func (s *Store) Add(description string) domain.Scenario {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(description) == "" {
		description = fmt.Sprintf("Scenario %d", len(s.scenarios)+1)
	}
	sc := domain.NewScenario(s.newID(), description)
	sc.Model = s.defaults.Model
	sc.Temperature = s.defaults.Temperature
	s.scenarios = append(s.scenarios, sc)
	return sc.Clone()
}

// Get returns a copy of the scenario
func (s *Store) Get(id string) (domain.Scenario, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.Scenario{}, false
	}
	return s.scenarios[i].Clone(), true
}

// List returns copies of all scenarios in order
func (s *Store) List() []domain.Scenario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Scenario, len(s.scenarios))
	for i := range s.scenarios {
		out[i] = s.scenarios[i].Clone()
	}
	return out
}

// Len returns the number of scenarios
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scenarios)
}

// Update applies fn to a copy of the scenario and stores the copy in its place.
// The id is preserved regardless of what fn does.
func (s *Store) Update(id string, fn func(*domain.Scenario)) (domain.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Scenario{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	next := s.scenarios[i].Clone()
	fn(&next)
	next.ID = id
	s.scenarios[i] = next
	return next.Clone(), nil
}

// Delete removes a scenario
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.scenarios = append(s.scenarios[:i:i], s.scenarios[i+1:]...)
	return true
}

// Duplicate copies a scenario's configuration under a fresh id with cleared run
// state and inserts it directly after the original
func (s *Store) Duplicate(id string) (domain.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Scenario{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	dup := s.scenarios[i].Clone()
	dup.ID = s.newID()
	dup.Description = dup.Description + " (Copy)"
	dup.ClearRun()

	next := make([]domain.Scenario, 0, len(s.scenarios)+1)
	next = append(next, s.scenarios[:i+1]...)
	next = append(next, dup)
	next = append(next, s.scenarios[i+1:]...)
	s.scenarios = next
	return dup.Clone(), nil
}

// Replace swaps the whole collection, as after an import. Run state is cleared and
// missing or repeated ids are replaced with fresh ones.
func (s *Store) Replace(scenarios []domain.Scenario) []domain.Scenario {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(scenarios))
	next := make([]domain.Scenario, 0, len(scenarios))
	for _, sc := range scenarios {
		sc = sc.Clone()
		if strings.TrimSpace(sc.ID) == "" || seen[sc.ID] {
			sc.ID = s.newID()
		}
		seen[sc.ID] = true
		sc.ClearRun()
		next = append(next, sc)
	}
	s.scenarios = next

	out := make([]domain.Scenario, len(next))
	for i := range next {
		out[i] = next[i].Clone()
	}
	return out
}

// ClearResults resets the run state of every scenario and the session total
func (s *Store) ClearResults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.scenarios {
		next := s.scenarios[i].Clone()
		next.ClearRun()
		s.scenarios[i] = next
	}
	s.sessionTotal = 0
}

// AddSessionCost accumulates the cost of a successful run
func (s *Store) AddSessionCost(cost float64) {
	if cost <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionTotal += cost
}

// SessionTotal returns the accumulated cost of the session
func (s *Store) SessionTotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionTotal
}

// SetDescription renames a scenario
func (s *Store) SetDescription(id, description string) (domain.Scenario, error) {
	return s.Update(id, func(sc *domain.Scenario) { sc.Description = description })
}

// SetModel changes the model and resets every message role to user, since the
// previous roles may not exist in the new provider's vocabulary
func (s *Store) SetModel(id, model string) (domain.Scenario, error) {
	return s.Update(id, func(sc *domain.Scenario) {
		if sc.Model == model {
			return
		}
		sc.Model = model
		for i := range sc.Messages {
			sc.Messages[i].Role = message.RoleUser
		}
	})
}

// SetTemperature clamps the value into [0, 2]
func (s *Store) SetTemperature(id string, temperature float64) (domain.Scenario, error) {
	temperature = ClampTemperature(temperature)
	return s.Update(id, func(sc *domain.Scenario) { sc.Temperature = temperature })
}

// ClampTemperature limits a temperature to the 0 to 2 range every provider accepts
func ClampTemperature(temperature float64) float64 {
	switch {
	case temperature < 0:
		return 0
	case temperature > 2:
		return 2
	}
	return temperature
}

// AddMessage appends a message to a scenario
func (s *Store) AddMessage(id string, role message.Role, content string) (domain.Scenario, error) {
	return s.Update(id, func(sc *domain.Scenario) {
		sc.Messages = append(sc.Messages, message.NewMessage(role, content))
	})
}

// UpdateMessage replaces the message at index
func (s *Store) UpdateMessage(id string, index int, role message.Role, content string) (domain.Scenario, error) {
	var outOfRange bool
	sc, err := s.Update(id, func(sc *domain.Scenario) {
		if index < 0 || index >= len(sc.Messages) {
			outOfRange = true
			return
		}
		sc.Messages[index] = message.NewMessage(role, content)
	})
	if err != nil {
		return sc, err
	}
	if outOfRange {
		return sc, fmt.Errorf("message index %d out of range", index)
	}
	return sc, nil
}

// RemoveMessage deletes the message at index. The last remaining message cannot be removed.
func (s *Store) RemoveMessage(id string, index int) (domain.Scenario, error) {
	var reason string
	sc, err := s.Update(id, func(sc *domain.Scenario) {
		switch {
		case index < 0 || index >= len(sc.Messages):
			reason = fmt.Sprintf("message index %d out of range", index)
		case len(sc.Messages) == 1:
			reason = "a scenario must keep at least one message"
		default:
			sc.Messages = append(sc.Messages[:index:index], sc.Messages[index+1:]...)
		}
	})
	if err != nil {
		return sc, err
	}
	if reason != "" {
		return sc, errors.New(reason)
	}
	return sc, nil
}
