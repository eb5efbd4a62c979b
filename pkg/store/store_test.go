package store

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/message"
)

func TestAdd_Defaults(t *testing.T) {
	s := NewStore(Defaults{})

	first := s.Add("")
	second := s.Add("Custom")

	if first.Description != "Scenario 1" {
		t.Errorf("Description = %q, expected %q", first.Description, "Scenario 1")
	}
	if second.Description != "Custom" {
		t.Errorf("Description = %q", second.Description)
	}
	if first.Model != domain.DefaultModel || first.Temperature != domain.DefaultTemperature {
		t.Errorf("unexpected defaults: %s / %v", first.Model, first.Temperature)
	}
	if len(first.Messages) != 1 || first.Messages[0].Role != message.RoleUser || first.Messages[0].Content != "" {
		t.Errorf("expected a single empty user message, got %+v", first.Messages)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Errorf("ids must be unique and non-empty: %q %q", first.ID, second.ID)
	}
}

func TestAdd_ConfiguredDefaults(t *testing.T) {
	s := NewStore(Defaults{Model: "gpt-5", Temperature: 1})
	sc := s.Add("x")
	if sc.Model != "gpt-5" || sc.Temperature != 1 {
		t.Errorf("configured defaults not applied: %s / %v", sc.Model, sc.Temperature)
	}
}

func TestGet_ReturnsCopy(t *testing.T) {
	s := NewStore(Defaults{})
	sc := s.Add("a")

	got, _ := s.Get(sc.ID)
	got.Messages[0].Content = "mutated"

	again, _ := s.Get(sc.ID)
	if again.Messages[0].Content != "" {
		t.Errorf("mutating a returned copy must not affect the store")
	}
}

func TestDuplicate(t *testing.T) {
	s := NewStore(Defaults{})
	a := s.Add("A")
	b := s.Add("B")

	s.Update(a.ID, func(sc *domain.Scenario) {
		sc.Messages[0].Content = "hello"
		sc.State = domain.StateSucceeded
		sc.Result = &domain.Result{Content: "done"}
		sc.Cost = &domain.Cost{TotalCost: 1}
	})

	dup, err := s.Duplicate(a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dup.ID == a.ID {
		t.Error("duplicate must get a fresh id")
	}
	if dup.Description != "A (Copy)" {
		t.Errorf("Description = %q", dup.Description)
	}
	if dup.State != domain.StateIdle || dup.Result != nil || dup.Cost != nil {
		t.Errorf("duplicate must have cleared run state: %+v", dup)
	}
	if dup.Messages[0].Content != "hello" {
		t.Errorf("duplicate should copy messages")
	}

	list := s.List()
	order := []string{a.ID, dup.ID, b.ID}
	for i, id := range order {
		if list[i].ID != id {
			t.Errorf("position %d = %s, expected %s", i, list[i].ID, id)
		}
	}

	if _, err := s.Duplicate("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetModel_ResetsRoles(t *testing.T) {
	s := NewStore(Defaults{})
	sc := s.Add("a")
	s.AddMessage(sc.ID, message.RoleAssistant, "reply")
	s.AddMessage(sc.ID, message.RoleDeveloper, "rules")

	updated, err := s.SetModel(sc.ID, "gemini-2.5-pro")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Model != "gemini-2.5-pro" {
		t.Errorf("Model = %q", updated.Model)
	}
	for i, m := range updated.Messages {
		if m.Role != message.RoleUser {
			t.Errorf("message %d role = %q, expected user", i, m.Role)
		}
	}

	// Setting the same model keeps roles
	s.UpdateMessage(sc.ID, 1, message.RoleModel, "reply")
	same, _ := s.SetModel(sc.ID, "gemini-2.5-pro")
	if same.Messages[1].Role != message.RoleModel {
		t.Errorf("unchanged model must not reset roles")
	}
}

func TestSetTemperature_Clamps(t *testing.T) {
	s := NewStore(Defaults{})
	sc := s.Add("a")

	testCases := []struct {
		input    float64
		expected float64
	}{
		{-1, 0},
		{0.7, 0.7},
		{5, 2},
	}
	for _, tc := range testCases {
		got, _ := s.SetTemperature(sc.ID, tc.input)
		if got.Temperature != tc.expected {
			t.Errorf("SetTemperature(%v) = %v, expected %v", tc.input, got.Temperature, tc.expected)
		}
	}
}

func TestMessageOperations(t *testing.T) {
	s := NewStore(Defaults{})
	sc := s.Add("a")

	if _, err := s.RemoveMessage(sc.ID, 0); err == nil {
		t.Error("removing the last message should fail")
	}

	s.AddMessage(sc.ID, message.RoleAssistant, "two")
	if _, err := s.UpdateMessage(sc.ID, 0, message.RoleSystem, "one"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.UpdateMessage(sc.ID, 9, message.RoleUser, "x"); err == nil {
		t.Error("expected out of range error")
	}

	got, err := s.RemoveMessage(sc.ID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "one" || got.Messages[0].Role != message.RoleSystem {
		t.Errorf("unexpected messages: %+v", got.Messages)
	}
}

func TestReplace_ClearsRunStateAndFixesIDs(t *testing.T) {
	s := NewStore(Defaults{})
	s.Add("old")

	imported := []domain.Scenario{
		{ID: "keep", Description: "one", Model: "gpt-5", State: domain.StateSucceeded, Cost: &domain.Cost{TotalCost: 2}},
		{ID: "", Description: "two", Model: "gpt-4o"},
		{ID: "keep", Description: "three", Model: "gpt-4o"},
	}
	got := s.Replace(imported)

	if s.Len() != 3 {
		t.Fatalf("Len = %d, expected 3", s.Len())
	}
	if got[0].ID != "keep" {
		t.Errorf("existing id should be preserved, got %q", got[0].ID)
	}
	if got[1].ID == "" || got[2].ID == "keep" {
		t.Errorf("missing and duplicate ids must be replaced: %q %q", got[1].ID, got[2].ID)
	}
	if got[0].State != domain.StateIdle || got[0].Cost != nil {
		t.Errorf("run state must be cleared on import: %+v", got[0])
	}
}

func TestDelete(t *testing.T) {
	s := NewStore(Defaults{})
	a := s.Add("a")
	b := s.Add("b")

	if !s.Delete(a.ID) {
		t.Fatal("expected delete to succeed")
	}
	if s.Delete(a.ID) {
		t.Error("second delete should report false")
	}
	list := s.List()
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("unexpected remaining scenarios: %+v", list)
	}
}

func TestSessionTotal(t *testing.T) {
	s := NewStore(Defaults{})
	s.AddSessionCost(0.5)
	s.AddSessionCost(0.25)
	s.AddSessionCost(-1)

	if s.SessionTotal() != 0.75 {
		t.Errorf("SessionTotal = %v, expected 0.75", s.SessionTotal())
	}

	s.ClearResults()
	if s.SessionTotal() != 0 {
		t.Errorf("ClearResults should reset the session total")
	}
}
