package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fpt/go-promptlab/pkg/dispatch"
	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/message"
	"github.com/fpt/go-promptlab/pkg/pricing"
	"github.com/fpt/go-promptlab/pkg/provider"
	"github.com/fpt/go-promptlab/pkg/store"
)

// echoClient answers with the last dispatched message
type echoClient struct {
	mu    sync.Mutex
	calls int
}

func (c *echoClient) Execute(_ context.Context, sc domain.Scenario, _ string) (*domain.Result, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	msgs := sc.DispatchableMessages()
	usage := message.NewTokenUsage(1000, 500, 0)
	return &domain.Result{
		Content: "echo: " + msgs[len(msgs)-1].Content,
		Model:   sc.Model,
		Usage:   &usage,
	}, nil
}

func (c *echoClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type sessionFixture struct {
	session *Session
	store   *store.Store
	coord   *dispatch.Coordinator
	client  *echoClient
	out     *bytes.Buffer
}

func newSessionFixture(t *testing.T, creds map[string]string) *sessionFixture {
	t.Helper()
	registry := provider.Default()
	st := store.NewStore(store.Defaults{})
	client := &echoClient{}
	clients := map[string]domain.ProviderClient{
		provider.OpenAI: client,
		provider.Claude: client,
		provider.Gemini: client,
	}
	credentials := domain.NewCredentials(creds)
	coord := dispatch.NewCoordinator(registry, clients, pricing.NewCalculator(), st, credentials)

	var out bytes.Buffer
	s := NewSession(SessionOptions{
		Registry:    registry,
		Store:       st,
		Coordinator: coord,
		Credentials: credentials,
		Defaults:    store.Defaults{Model: domain.DefaultModel, Temperature: domain.DefaultTemperature},
		ExportDir:   t.TempDir(),
		Out:         &out,
	})
	return &sessionFixture{session: s, store: st, coord: coord, client: client, out: &out}
}

// exec runs one REPL line and returns the output it produced once runs settle
func (f *sessionFixture) exec(t *testing.T, line string) string {
	t.Helper()
	before := f.out.Len()
	if strings.HasPrefix(line, "/") {
		handleSlashCommand(context.Background(), line, f.session)
	} else if _, err := f.session.AppendInput(line); err != nil {
		t.Fatalf("AppendInput(%q): %v", line, err)
	}
	f.coord.Wait()
	return f.out.String()[before:]
}

func TestResolve(t *testing.T) {
	f := newSessionFixture(t, nil)
	a := f.session.AddScenario("first")
	b := f.session.AddScenario("second")

	testCases := []struct {
		name    string
		ref     string
		want    string
		wantErr string
	}{
		{name: "empty uses selection", ref: "", want: b.ID},
		{name: "index", ref: "1", want: a.ID},
		{name: "exact id", ref: b.ID, want: b.ID},
		{name: "prefix", ref: a.ID[:12], want: a.ID},
		{name: "index out of range", ref: "3", wantErr: "no scenario #3"},
		{name: "unknown", ref: "zzz", wantErr: "unknown scenario"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sc, err := f.session.Resolve(tc.ref)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sc.ID != tc.want {
				t.Errorf("resolved %s, expected %s", sc.ID, tc.want)
			}
		})
	}
}

func TestAppendInput_FillsBlankUserMessageFirst(t *testing.T) {
	f := newSessionFixture(t, nil)

	sc, err := f.session.AppendInput("hello")
	if err != nil {
		t.Fatalf("AppendInput: %v", err)
	}
	if len(sc.Messages) != 1 || sc.Messages[0].Content != "hello" {
		t.Fatalf("expected the empty starter message to be filled, got %+v", sc.Messages)
	}

	sc, _ = f.session.AppendInput("again")
	if len(sc.Messages) != 2 || sc.Messages[1].Content != "again" {
		t.Errorf("expected a second user message, got %+v", sc.Messages)
	}
	if f.store.Len() != 1 {
		t.Errorf("plain input should create exactly one scenario, have %d", f.store.Len())
	}
}

func TestRunCommand_PrintsResponseAndCost(t *testing.T) {
	f := newSessionFixture(t, map[string]string{provider.OpenAI: "sk"})
	f.exec(t, "/add greeting")
	f.exec(t, "Say hi")

	out := f.exec(t, "/run")

	for _, want := range []string{"⏳ greeting → gpt-4o-mini", "echo: Say hi", "$0.000450"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if got := f.exec(t, "/cost"); !strings.Contains(got, "$0.000450") {
		t.Errorf("/cost output = %q", got)
	}
}

func TestRunAllCommand_MissingKeyMakesNoCalls(t *testing.T) {
	f := newSessionFixture(t, map[string]string{provider.OpenAI: "sk"})
	f.exec(t, "/add openai")
	f.exec(t, "hi")
	f.exec(t, "/add claude")
	f.exec(t, "/model claude-sonnet-4-20250514")
	f.exec(t, "hi")

	out := f.exec(t, "/run-all")

	if !strings.Contains(out, "missing API key for: Claude") {
		t.Errorf("expected missing key notice, got:\n%s", out)
	}
	if f.client.Calls() != 0 {
		t.Errorf("expected no provider calls, got %d", f.client.Calls())
	}
}

func TestRunWhereCommand(t *testing.T) {
	f := newSessionFixture(t, map[string]string{provider.OpenAI: "sk", provider.Gemini: "g"})
	f.exec(t, "/add a")
	f.exec(t, "one")
	f.exec(t, "/add b")
	f.exec(t, "/model gemini-2.5-flash")
	f.exec(t, "two")

	out := f.exec(t, `/run-where provider == "gemini"`)

	if !strings.Contains(out, "Started 1 run(s)") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if f.client.Calls() != 1 {
		t.Errorf("expected 1 call, got %d", f.client.Calls())
	}

	if out := f.exec(t, "/run-where cost +"); !strings.Contains(out, "failed to compile filter") {
		t.Errorf("expected compile error, got %q", out)
	}
}

func TestModelCommand_ResetsRolesAndRejectsUnknown(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.exec(t, "/add roles")
	f.exec(t, "/msg developer be brief")

	out := f.exec(t, "/model gemini-2.5-pro")
	if !strings.Contains(out, "now uses gemini-2.5-pro") {
		t.Fatalf("unexpected output: %q", out)
	}
	sc, _ := f.session.Current()
	for _, m := range sc.Messages {
		if m.Role != message.RoleUser {
			t.Errorf("role %s not reset to user", m.Role)
		}
	}

	if out := f.exec(t, "/model gpt-9"); !strings.Contains(out, "unknown model: gpt-9") {
		t.Errorf("expected unknown model error, got %q", out)
	}
}

func TestMessageCommands(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.exec(t, "/add msgs")
	f.exec(t, "/model claude-sonnet-4-20250514")

	out := f.exec(t, "/msg system You are terse")
	if !strings.Contains(out, `will be sent as "user" to Claude`) {
		t.Errorf("expected role hint, got %q", out)
	}

	f.exec(t, "/edit 1 user first")
	f.exec(t, "/rmmsg 2")
	sc, _ := f.session.Current()
	if len(sc.Messages) != 1 || sc.Messages[0].Content != "first" {
		t.Errorf("unexpected messages %+v", sc.Messages)
	}

	if out := f.exec(t, "/rmmsg 1"); !strings.Contains(out, "at least one message") {
		t.Errorf("expected last-message guard, got %q", out)
	}
	if out := f.exec(t, "/msg narrator hi"); !strings.Contains(out, "unknown role") {
		t.Errorf("expected role error, got %q", out)
	}
}

func TestShowCommand_DescribesRoleMapping(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.exec(t, "/add detail")
	f.exec(t, "/model gpt-5")
	f.exec(t, "/msg system rules")

	out := f.exec(t, "/show")
	for _, want := range []string{"gpt-5 (OpenAI)", "temperature: n/a", "(empty, not sent)", `will be sent as "developer" to OpenAI`} {
		if !strings.Contains(out, want) {
			t.Errorf("/show output missing %q:\n%s", want, out)
		}
	}
}

func TestDupAndDeleteCommands(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.exec(t, "/add original")

	f.exec(t, "/dup")
	sc, _ := f.session.Current()
	if sc.Description != "original (Copy)" {
		t.Fatalf("duplicate not selected, current = %q", sc.Description)
	}

	f.exec(t, "/delete")
	if f.store.Len() != 1 {
		t.Errorf("expected 1 scenario after delete, have %d", f.store.Len())
	}
	if sc, ok := f.session.Current(); !ok || sc.Description != "original" {
		t.Errorf("selection should move to the remaining scenario, got %+v", sc)
	}
}

func TestExportImportCommands(t *testing.T) {
	f := newSessionFixture(t, nil)
	f.exec(t, "/add kept")
	f.exec(t, "hello")

	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	if out := f.exec(t, "/export "+path); !strings.Contains(out, "Exported to "+path) {
		t.Fatalf("unexpected export output %q", out)
	}

	f.exec(t, "/add extra")
	out := f.exec(t, "/import "+path)
	if !strings.Contains(out, "Imported 1 scenario(s)") {
		t.Fatalf("unexpected import output %q", out)
	}
	sc, ok := f.session.Current()
	if !ok || sc.Description != "kept" || sc.Messages[0].Content != "hello" {
		t.Errorf("imported scenario not selected: %+v", sc)
	}

	if out := f.exec(t, "/import "+filepath.Join(t.TempDir(), "missing.json")); !strings.Contains(out, "Import failed") {
		t.Errorf("expected import failure, got %q", out)
	}
	if f.store.Len() != 1 {
		t.Errorf("failed import must leave the store untouched, have %d", f.store.Len())
	}
}

func TestExamplesCommand(t *testing.T) {
	f := newSessionFixture(t, nil)
	out := f.exec(t, "/examples")
	if !strings.Contains(out, "Added 4 starter scenario(s)") {
		t.Fatalf("unexpected output %q", out)
	}
	list := f.store.List()
	if list[1].Model != "claude-sonnet-4-20250514" {
		t.Errorf("starter model not applied: %s", list[1].Model)
	}
}

func TestKeyCommand(t *testing.T) {
	f := newSessionFixture(t, nil)

	if out := f.exec(t, "/key gemini abc"); !strings.Contains(out, "Key set for gemini") {
		t.Errorf("unexpected output %q", out)
	}
	if !f.session.credentials.Has(provider.Gemini) {
		t.Error("credential was not stored")
	}
	if out := f.exec(t, "/key mistral abc"); !strings.Contains(out, "unknown provider") {
		t.Errorf("expected unknown provider error, got %q", out)
	}
}

func TestUnknownCommandAndQuit(t *testing.T) {
	f := newSessionFixture(t, nil)
	if out := f.exec(t, "/bogus"); !strings.Contains(out, "Unknown command: /bogus") {
		t.Errorf("unexpected output %q", out)
	}
	if !handleSlashCommand(context.Background(), "/quit", f.session) {
		t.Error("/quit should request exit")
	}
}
