package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/fpt/go-promptlab/internal/infra"
	"github.com/fpt/go-promptlab/internal/scenarios"
	"github.com/fpt/go-promptlab/pkg/dispatch"
	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/logger"
	"github.com/fpt/go-promptlab/pkg/message"
	"github.com/fpt/go-promptlab/pkg/provider"
	"github.com/fpt/go-promptlab/pkg/store"
)

// SessionOptions holds the collaborators a Session drives
type SessionOptions struct {
	Registry    *provider.Registry
	Store       *store.Store
	Coordinator *dispatch.Coordinator
	Credentials *domain.Credentials
	Defaults    store.Defaults
	ExportDir   string
	Out         io.Writer
	// Interactive enables promptui selectors for commands called without arguments
	Interactive bool
	Color       bool
}

// Session is the REPL's view of the scenario workspace: it tracks the selected
// scenario and turns user commands into store and coordinator calls.
type Session struct {
	registry    *provider.Registry
	store       *store.Store
	coordinator *dispatch.Coordinator
	credentials *domain.Credentials
	defaults    store.Defaults
	exportDir   string
	out         io.Writer
	interactive bool
	color       bool
	logger      *logger.Logger

	mu      sync.Mutex
	current string
}

// NewSession creates a session and subscribes its printer to the coordinator
func NewSession(opts SessionOptions) *Session {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	out = &syncWriter{w: out}

	s := &Session{
		registry:    opts.Registry,
		store:       opts.Store,
		coordinator: opts.Coordinator,
		credentials: opts.Credentials,
		defaults:    opts.Defaults,
		exportDir:   opts.ExportDir,
		out:         out,
		interactive: opts.Interactive,
		color:       opts.Color,
		logger:      logger.NewComponentLogger("session"),
	}
	printer := NewEventPrinter(out, opts.Registry, opts.Color)
	s.coordinator.Subscribe(printer.Handle)

	if list := s.store.List(); len(list) > 0 {
		s.current = list[0].ID
	}
	return s
}

// OutWriter returns the writer all session output goes through
func (s *Session) OutWriter() io.Writer {
	return s.out
}

// Current returns the selected scenario
func (s *Session) Current() (domain.Scenario, bool) {
	s.mu.Lock()
	id := s.current
	s.mu.Unlock()
	if id == "" {
		return domain.Scenario{}, false
	}
	return s.store.Get(id)
}

func (s *Session) selectID(id string) {
	s.mu.Lock()
	s.current = id
	s.mu.Unlock()
}

func (s *Session) currentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Resolve finds a scenario by 1-based list position, exact id or unique id prefix.
// An empty reference means the selected scenario.
func (s *Session) Resolve(ref string) (domain.Scenario, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		sc, ok := s.Current()
		if !ok {
			return domain.Scenario{}, errors.New("no scenario selected")
		}
		return sc, nil
	}

	list := s.store.List()
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(list) {
			return domain.Scenario{}, errors.Errorf("no scenario #%d (have %d)", n, len(list))
		}
		return list[n-1], nil
	}

	var matches []domain.Scenario
	for _, sc := range list {
		if sc.ID == ref {
			return sc, nil
		}
		if strings.HasPrefix(sc.ID, ref) {
			matches = append(matches, sc)
		}
	}
	switch len(matches) {
	case 0:
		return domain.Scenario{}, errors.Errorf("unknown scenario: %s", ref)
	case 1:
		return matches[0], nil
	default:
		return domain.Scenario{}, errors.Errorf("ambiguous scenario id prefix: %s", ref)
	}
}

// Select makes the referenced scenario current
func (s *Session) Select(ref string) (domain.Scenario, error) {
	sc, err := s.Resolve(ref)
	if err != nil {
		return sc, err
	}
	s.selectID(sc.ID)
	return sc, nil
}

// AddScenario creates a scenario with the configured defaults and selects it
func (s *Session) AddScenario(description string) domain.Scenario {
	sc := s.store.Add(description)
	s.selectID(sc.ID)
	return sc
}

// AppendInput adds free text as a user message to the selected scenario. The
// scenario's trailing empty user message is filled instead of adding a new one.
// A scenario is created when none is selected.
func (s *Session) AppendInput(text string) (domain.Scenario, error) {
	sc, ok := s.Current()
	if !ok {
		sc = s.AddScenario("")
	}
	last := len(sc.Messages) - 1
	if last >= 0 && sc.Messages[last].Role == message.RoleUser && sc.Messages[last].IsBlank() {
		return s.store.UpdateMessage(sc.ID, last, message.RoleUser, text)
	}
	return s.store.AddMessage(sc.ID, message.RoleUser, text)
}

// DeleteScenario cancels any live run, removes the scenario and moves the selection
func (s *Session) DeleteScenario(id string) bool {
	s.coordinator.CancelOne(id)
	if !s.store.Delete(id) {
		return false
	}
	if s.currentID() == id {
		next := ""
		if list := s.store.List(); len(list) > 0 {
			next = list[len(list)-1].ID
		}
		s.selectID(next)
	}
	return true
}

// SetModel validates the model against the registry before applying it
func (s *Session) SetModel(id, model string) (domain.Scenario, error) {
	if _, ok := s.registry.ResolveProviderForModel(model); !ok {
		return domain.Scenario{}, errors.Errorf("unknown model: %s", model)
	}
	return s.store.SetModel(id, model)
}

// Filter returns the scenarios matching expression; an empty expression matches all
func (s *Session) Filter(expression string) ([]domain.Scenario, error) {
	list := s.store.List()
	if strings.TrimSpace(expression) == "" {
		return list, nil
	}
	f, err := CompileFilter(expression)
	if err != nil {
		return nil, err
	}
	return f.Select(list, s.registry), nil
}

// RunWhere dispatches every scenario matching expression
func (s *Session) RunWhere(ctx context.Context, expression string) (int, []error, error) {
	f, err := CompileFilter(expression)
	if err != nil {
		return 0, nil, err
	}
	started, errs := s.coordinator.RunWhere(ctx, func(sc domain.Scenario) bool {
		ok, err := f.Match(NewFilterEnv(sc, s.registry))
		return err == nil && ok
	})
	return started, errs, nil
}

// SetCredential stores a provider key for the rest of the session
func (s *Session) SetCredential(providerID, secret string) error {
	if _, ok := s.registry.Provider(providerID); !ok {
		return errors.Errorf("unknown provider: %s", providerID)
	}
	s.credentials.Set(providerID, secret)
	return nil
}

// LoadExamples appends the built-in starter scenarios and returns how many were added
func (s *Session) LoadExamples() (int, error) {
	starters, err := scenarios.LoadBuiltinScenarios()
	if err != nil {
		return 0, err
	}
	var first string
	for _, cfg := range starters {
		sc := s.store.Add(cfg.Description)
		_, err := s.store.Update(sc.ID, func(next *domain.Scenario) {
			if cfg.Model != "" {
				next.Model = cfg.Model
			}
			if cfg.Temperature != nil {
				next.Temperature = *cfg.Temperature
			}
			if len(cfg.Messages) > 0 {
				next.Messages = message.Clone(cfg.Messages)
			}
		})
		if err != nil {
			return 0, errors.Wrapf(err, "failed to load starter %s", cfg.Name)
		}
		if first == "" {
			first = sc.ID
		}
	}
	if first != "" {
		s.selectID(first)
	}
	return len(starters), nil
}

// Import replaces the workspace with the scenarios in path. Live runs are
// cancelled first; on error the workspace is left untouched.
func (s *Session) Import(path string) (int, error) {
	imported, err := infra.ImportFile(path, s.defaults)
	if err != nil {
		return 0, err
	}
	s.coordinator.CancelAll()
	stored := s.store.Replace(imported)

	next := ""
	if len(stored) > 0 {
		next = stored[0].ID
	}
	s.selectID(next)
	s.logger.InfoWithIcon("📥", "imported scenarios", "path", path, "count", len(stored))
	return len(stored), nil
}

// Export writes every scenario to path, or to a dated file in the export directory
func (s *Session) Export(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join(s.exportDir, infra.DefaultExportFilename(time.Now()))
	}
	if err := infra.ExportFile(path, s.store.List()); err != nil {
		return "", err
	}
	return path, nil
}

// WriteResults writes the run state of every scenario as a JSON report
func (s *Session) WriteResults(path string) error {
	report := infra.NewResultsReport(s.store.List(), s.store.SessionTotal())
	return infra.WriteResultsFile(path, report)
}

// ParseRole validates a role name typed by the user
func ParseRole(value string) (message.Role, error) {
	role := message.Role(strings.ToLower(strings.TrimSpace(value)))
	switch role {
	case message.RoleUser, message.RoleAssistant, message.RoleSystem, message.RoleDeveloper, message.RoleModel:
		return role, nil
	}
	return "", fmt.Errorf("unknown role '%s' (use user, assistant, system, developer or model)", value)
}
