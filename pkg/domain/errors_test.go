package domain

import (
	"errors"
	"testing"
)

func TestNewNoMessagesError_IsIndependent(t *testing.T) {
	first := NewNoMessagesError()
	second := NewNoMessagesError()
	if first == second {
		t.Fatal("expected a fresh error per call")
	}

	first.Message = "changed"
	first.MissingProviders = []string{"OpenAI"}
	if second.Message != "at least one message required" || second.MissingProviders != nil {
		t.Errorf("mutating one error leaked into another: %+v", second)
	}
	if got := NewNoMessagesError().Error(); got != "at least one message required" {
		t.Errorf("Error() = %q after mutation", got)
	}
}

func TestNewNoMessagesError_Matching(t *testing.T) {
	var err error = NewNoMessagesError()

	if !errors.Is(err, ErrNoMessages) {
		t.Error("expected errors.Is to match ErrNoMessages")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatal("expected a *ValidationError")
	}
	if errors.Is(NewMissingCredentialsError([]string{"Claude"}), ErrNoMessages) {
		t.Error("missing credential error must not match ErrNoMessages")
	}
}
