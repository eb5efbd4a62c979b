package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCancelled marks a run that was aborted by the user or superseded by a newer run.
// It is not a failure.
var ErrCancelled = errors.New("cancelled")

// ErrNoMessages marks a scenario with nothing left to send after blank messages are filtered.
// It is returned wrapped in a *ValidationError; match it with errors.Is.
var ErrNoMessages = errors.New("at least one message required")

// ValidationError is a local validation failure detected before any network I/O
type ValidationError struct {
	Message string
	// MissingProviders lists provider display names lacking a credential
	MissingProviders []string
	Err              error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewNoMessagesError returns a fresh validation error wrapping ErrNoMessages
func NewNoMessagesError() *ValidationError {
	return &ValidationError{Message: ErrNoMessages.Error(), Err: ErrNoMessages}
}

// NewMissingCredentialsError builds the combined "missing key" notice
func NewMissingCredentialsError(providerNames []string) *ValidationError {
	return &ValidationError{
		Message:          fmt.Sprintf("missing API key for: %s", strings.Join(providerNames, ", ")),
		MissingProviders: providerNames,
	}
}

// ProviderError is a transport, auth, or provider-side rejection
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError wraps an SDK error, keeping the provider's message verbatim
func NewProviderError(provider string, err error) *ProviderError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if msg == "" {
		msg = fmt.Sprintf("%s API request failed", provider)
	}
	return &ProviderError{Provider: provider, Message: msg, Err: err}
}

// WithMessage replaces the message with a more specific one extracted from the provider's error body
func (e *ProviderError) WithMessage(msg string) *ProviderError {
	if strings.TrimSpace(msg) != "" {
		e.Message = msg
	}
	return e
}
