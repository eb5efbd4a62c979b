package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/logger"
	"github.com/fpt/go-promptlab/pkg/message"
	"github.com/fpt/go-promptlab/pkg/pricing"
	"github.com/fpt/go-promptlab/pkg/provider"
	"github.com/fpt/go-promptlab/pkg/store"
)

// Event reports a scenario state transition made by the coordinator
type Event struct {
	ScenarioID string
	State      domain.RunState
	Scenario   domain.Scenario
	// Err is set for failed runs and for scenarios RunAll skipped
	Err error
}

type runToken struct {
	ctx     context.Context
	cancel  context.CancelFunc
	started time.Time
	// model is the model the run was dispatched with; the stored scenario may change meanwhile
	model string
}

type outcome struct {
	result *domain.Result
	err    error
}

// Coordinator dispatches scenarios to provider clients and merges results back into the store.
// At most one run per scenario is live; a completion is applied only while its token is still
// the one registered for the scenario.
type Coordinator struct {
	registry    *provider.Registry
	clients     map[string]domain.ProviderClient
	calculator  *pricing.Calculator
	store       *store.Store
	credentials domain.CredentialLookup
	logger      *logger.Logger

	mu        sync.Mutex
	tokens    map[string]*runToken
	listeners []func(Event)
	wg        sync.WaitGroup
}

// NewCoordinator wires the dispatch dependencies together
func NewCoordinator(
	registry *provider.Registry,
	clients map[string]domain.ProviderClient,
	calculator *pricing.Calculator,
	st *store.Store,
	credentials domain.CredentialLookup,
) *Coordinator {
	if calculator == nil {
		calculator = pricing.NewCalculatorWithTable(registry, nil, "")
	}
	return &Coordinator{
		registry:    registry,
		clients:     clients,
		calculator:  calculator,
		store:       st,
		credentials: credentials,
		logger:      logger.NewComponentLogger("dispatch"),
		tokens:      make(map[string]*runToken),
	}
}

// Subscribe registers a listener for state transitions. Listeners are called
// outside the coordinator's locks, possibly from several goroutines.
func (c *Coordinator) Subscribe(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Coordinator) emit(listeners []func(Event), ev Event) {
	for _, fn := range listeners {
		fn(ev)
	}
}

func (c *Coordinator) snapshotListeners() []func(Event) {
	out := make([]func(Event), len(c.listeners))
	copy(out, c.listeners)
	return out
}

// RunOne dispatches a single scenario. Local validation failures return a
// *domain.ValidationError and leave the scenario unchanged.
func (c *Coordinator) RunOne(ctx context.Context, id string) error {
	sc, ok := c.store.Get(id)
	if !ok {
		return &domain.ValidationError{Message: fmt.Sprintf("unknown scenario: %s", id)}
	}
	if len(sc.DispatchableMessages()) == 0 {
		return domain.NewNoMessagesError()
	}
	if missing := c.registry.MissingCredentials([]domain.Scenario{sc}, c.credentials); len(missing) > 0 {
		return domain.NewMissingCredentialsError(missing)
	}

	c.start(ctx, sc)
	return nil
}

// RunAll checks credentials for every scenario first; if any provider lacks a key
// nothing is dispatched and one combined error names all of them.
func (c *Coordinator) RunAll(ctx context.Context) error {
	scenarios := c.store.List()
	if missing := c.registry.MissingCredentials(scenarios, c.credentials); len(missing) > 0 {
		return domain.NewMissingCredentialsError(missing)
	}

	// start supersedes live runs silently; only runs that are not restarted are cancelled
	var skipped []Event
	for _, sc := range scenarios {
		if len(sc.DispatchableMessages()) == 0 {
			c.CancelOne(sc.ID)
			if current, ok := c.store.Get(sc.ID); ok {
				sc = current
			}
			skipped = append(skipped, Event{ScenarioID: sc.ID, State: sc.State, Scenario: sc, Err: domain.NewNoMessagesError()})
			continue
		}
		c.start(ctx, sc)
	}

	if len(skipped) > 0 {
		c.mu.Lock()
		listeners := c.snapshotListeners()
		c.mu.Unlock()
		for _, ev := range skipped {
			c.logger.WithScenario(ev.ScenarioID).Debug("skipped scenario without messages")
			c.emit(listeners, ev)
		}
	}
	return nil
}

// RunWhere dispatches every scenario accepted by match, returning how many were started
// and the validation errors of those that were not
func (c *Coordinator) RunWhere(ctx context.Context, match func(domain.Scenario) bool) (int, []error) {
	started := 0
	var errs []error
	for _, sc := range c.store.List() {
		if !match(sc) {
			continue
		}
		if err := c.RunOne(ctx, sc.ID); err != nil {
			errs = append(errs, errors.Wrapf(err, "%s", sc.Description))
			continue
		}
		started++
	}
	return started, errs
}

func (c *Coordinator) start(ctx context.Context, sc domain.Scenario) {
	c.mu.Lock()
	if prev, ok := c.tokens[sc.ID]; ok {
		// Superseded: the previous completion will find its token gone and be discarded
		prev.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	tok := &runToken{ctx: runCtx, cancel: cancel, started: time.Now()}
	c.tokens[sc.ID] = tok

	pending, err := c.store.Update(sc.ID, func(s *domain.Scenario) {
		s.ClearRun()
		s.State = domain.StatePending
	})
	if err != nil {
		delete(c.tokens, sc.ID)
		cancel()
		c.mu.Unlock()
		return
	}
	tok.model = pending.Model
	c.wg.Add(1)
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	c.logger.WithScenario(sc.ID).WithProvider(c.providerID(sc.Model), sc.Model).DebugWithIcon("🚀", "run started")
	c.emit(listeners, Event{ScenarioID: sc.ID, State: domain.StatePending, Scenario: pending})

	go c.run(tok, pending)
}

func (c *Coordinator) providerID(model string) string {
	if p, ok := c.registry.ResolveProviderForModel(model); ok {
		return p.ID
	}
	return "unknown"
}

func (c *Coordinator) run(tok *runToken, sc domain.Scenario) {
	defer c.wg.Done()

	p, ok := c.registry.ResolveProviderForModel(sc.Model)
	if !ok {
		c.settle(sc.ID, tok, outcome{err: fmt.Errorf("unknown provider for model %s", sc.Model)})
		return
	}
	client, ok := c.clients[p.ID]
	if !ok {
		c.settle(sc.ID, tok, outcome{err: fmt.Errorf("no client configured for provider %s", p.Name)})
		return
	}
	credential := c.credentials.Credential(p.ID)

	// Buffered so an abandoned call never blocks its goroutine
	done := make(chan outcome, 1)
	go func() {
		res, err := client.Execute(tok.ctx, sc, credential)
		done <- outcome{result: res, err: err}
	}()

	select {
	case out := <-done:
		c.settle(sc.ID, tok, out)
	case <-tok.ctx.Done():
		c.settle(sc.ID, tok, outcome{err: domain.ErrCancelled})
	}
}

func (c *Coordinator) settle(id string, tok *runToken, out outcome) {
	c.mu.Lock()
	if c.tokens[id] != tok {
		c.mu.Unlock()
		c.logger.WithScenario(id).Debug("discarded stale completion")
		return
	}
	delete(c.tokens, id)

	cancelled := errors.Is(out.err, domain.ErrCancelled) || (out.err != nil && tok.ctx.Err() != nil)
	tok.cancel()
	latency := time.Since(tok.started)

	var cost *domain.Cost
	updated, err := c.store.Update(id, func(s *domain.Scenario) {
		s.Latency = latency
		switch {
		case out.err == nil:
			s.State = domain.StateSucceeded
			s.Result = out.result
			s.Error = ""
			if usage, ok := resultUsage(out.result); ok {
				computed := c.calculator.ComputeCost(tok.model, usage)
				cost = &computed
				s.Cost = cost
			}
		case cancelled:
			s.State = domain.StateCancelled
			s.Error = ""
		default:
			s.State = domain.StateFailed
			s.Error = out.err.Error()
		}
	})
	if err == nil && cost != nil {
		c.store.AddSessionCost(cost.TotalCost)
	}
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	if err != nil {
		// Scenario was deleted while in flight
		return
	}

	log := c.logger.WithScenario(id)
	switch updated.State {
	case domain.StateSucceeded:
		log.DebugWithIcon("✅", "run succeeded", "latency", latency)
	case domain.StateFailed:
		log.WarnWithIcon("❌", "run failed", "error", updated.Error)
	case domain.StateCancelled:
		log.DebugWithIcon("🛑", "run cancelled")
	}

	ev := Event{ScenarioID: id, State: updated.State, Scenario: updated}
	if updated.State == domain.StateFailed {
		ev.Err = out.err
	}
	c.emit(listeners, ev)
}

// resultUsage prefers the typed usage and falls back to the raw provider payload
func resultUsage(res *domain.Result) (message.TokenUsage, bool) {
	if res == nil {
		return message.TokenUsage{}, false
	}
	if res.Usage != nil {
		return *res.Usage, true
	}
	return pricing.UsageFromRaw(res.Raw)
}

// CancelOne aborts the in-flight run of a scenario. Settled scenarios are untouched.
func (c *Coordinator) CancelOne(id string) bool {
	c.mu.Lock()
	ev, ok := c.cancelLocked(id)
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	if ok {
		c.emit(listeners, ev)
	}
	return ok
}

// CancelAll aborts every in-flight run and returns how many were cancelled
func (c *Coordinator) CancelAll() int {
	c.mu.Lock()
	var events []Event
	for id := range c.tokens {
		if ev, ok := c.cancelLocked(id); ok {
			events = append(events, ev)
		}
	}
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	for _, ev := range events {
		c.emit(listeners, ev)
	}
	return len(events)
}

func (c *Coordinator) cancelLocked(id string) (Event, bool) {
	tok, ok := c.tokens[id]
	if !ok {
		return Event{}, false
	}
	delete(c.tokens, id)
	tok.cancel()
	latency := time.Since(tok.started)

	updated, err := c.store.Update(id, func(s *domain.Scenario) {
		if s.State != domain.StatePending {
			return
		}
		s.State = domain.StateCancelled
		s.Error = ""
		s.Latency = latency
	})
	if err != nil {
		return Event{}, false
	}
	c.logger.WithScenario(id).DebugWithIcon("🛑", "run cancelled")
	return Event{ScenarioID: id, State: updated.State, Scenario: updated}, true
}

// InFlight returns the number of scenarios with a live run
func (c *Coordinator) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tokens)
}

// Wait blocks until every launched run has settled or been discarded
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
