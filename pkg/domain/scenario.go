package domain

import (
	"time"

	"github.com/fpt/go-promptlab/pkg/message"
)

// Defaults applied to freshly created scenarios
const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.2
)

// RunState is the transient dispatch state of a scenario
type RunState string

const (
	StateIdle      RunState = "idle"
	StatePending   RunState = "pending"
	StateSucceeded RunState = "succeeded"
	StateFailed    RunState = "failed"
	StateCancelled RunState = "cancelled"
)

// IsSettled reports whether the state is a terminal state of a run
func (s RunState) IsSettled() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

// Scenario is one user-authored prompt configuration plus its run/response state
type Scenario struct {
	ID          string
	Description string
	Model       string
	Temperature float64
	Messages    []message.Message

	State   RunState
	Result  *Result
	Error   string
	Latency time.Duration
	Cost    *Cost
}

// NewScenario creates an idle scenario with a single empty user message
func NewScenario(id, description string) Scenario {
	return Scenario{
		ID:          id,
		Description: description,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		Messages:    []message.Message{message.NewMessage(message.RoleUser, "")},
		State:       StateIdle,
	}
}

// Clone returns a deep copy of the scenario. Result and Cost are shared
// because they are never mutated after creation.
func (s Scenario) Clone() Scenario {
	out := s
	out.Messages = message.Clone(s.Messages)
	return out
}

// ClearRun resets all transient run state
func (s *Scenario) ClearRun() {
	s.State = StateIdle
	s.Result = nil
	s.Error = ""
	s.Latency = 0
	s.Cost = nil
}

// DispatchableMessages returns the messages that would be sent to a provider
func (s Scenario) DispatchableMessages() []message.Message {
	return message.FilterBlank(s.Messages)
}
