package domain

import (
	"strings"
	"sync"
)

// CredentialLookup resolves the secret for a provider id
type CredentialLookup interface {
	Credential(providerID string) string
}

// Credentials holds one secret per provider for the lifetime of the session.
// It is never persisted.
type Credentials struct {
	mu    sync.RWMutex
	value map[string]string
}

// NewCredentials creates a credential set from an initial map
func NewCredentials(initial map[string]string) *Credentials {
	c := &Credentials{value: make(map[string]string, len(initial))}
	for id, secret := range initial {
		c.value[id] = secret
	}
	return c
}

// Credential returns the trimmed secret for the provider, or "" if absent
func (c *Credentials) Credential(providerID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return strings.TrimSpace(c.value[providerID])
}

// Has reports whether a non-blank secret is present
func (c *Credentials) Has(providerID string) bool {
	return c.Credential(providerID) != ""
}

// Set replaces the secret for a provider; an empty value removes it
func (c *Credentials) Set(providerID, secret string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.TrimSpace(secret) == "" {
		delete(c.value, providerID)
		return
	}
	c.value[providerID] = secret
}
