package provider

import (
	"github.com/fpt/go-promptlab/pkg/domain"
	"github.com/fpt/go-promptlab/pkg/message"
)

// Model is a model offered by a provider
type Model struct {
	ID             string
	Label          string
	SupportedRoles []message.Role
}

// Provider is a static registry entry describing an LLM vendor
type Provider struct {
	ID     string
	Name   string
	Models []Model
	// RoleMapping translates agnostic roles to provider-native ones; absent keys map to themselves
	RoleMapping map[message.Role]message.Role
	// SupportsTemperature reports whether the given model accepts a temperature
	SupportsTemperature func(modelID string) bool
	APIKeyPlaceholder   string
	APIKeyLabel         string
	// DefaultRole is used for roles the provider cannot express
	DefaultRole message.Role
	// EnvVar names the environment variable holding the API key
	EnvVar string
}

// HasModel reports whether the provider lists the model
func (p Provider) HasModel(modelID string) bool {
	_, ok := p.Model(modelID)
	return ok
}

// Model returns the provider's entry for a model id
func (p Provider) Model(modelID string) (Model, bool) {
	for _, m := range p.Models {
		if m.ID == modelID {
			return m, true
		}
	}
	return Model{}, false
}

// ModelGroup is a provider's models for display in a selector
type ModelGroup struct {
	ProviderID string
	Label      string
	Models     []Model
}

// Registry is an ordered, read-only catalog of providers.
// Registration order is the tie-break when two providers list the same model.
type Registry struct {
	providers []Provider
}

// NewRegistry creates a registry with providers in the given order
func NewRegistry(providers ...Provider) *Registry {
	ps := make([]Provider, len(providers))
	copy(ps, providers)
	return &Registry{providers: ps}
}

// Providers returns the registered providers in registration order
func (r *Registry) Providers() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Provider looks up a provider by id
func (r *Registry) Provider(id string) (*Provider, bool) {
	for i := range r.providers {
		if r.providers[i].ID == id {
			p := r.providers[i]
			return &p, true
		}
	}
	return nil, false
}

// ResolveProviderForModel returns the first provider, in registration order, that lists the model
func (r *Registry) ResolveProviderForModel(modelID string) (*Provider, bool) {
	for i := range r.providers {
		if r.providers[i].HasModel(modelID) {
			p := r.providers[i]
			return &p, true
		}
	}
	return nil, false
}

// ListRequiredProviders returns the distinct providers needed to run the scenarios,
// in registration order. Scenarios with unknown models contribute nothing.
func (r *Registry) ListRequiredProviders(scenarios []domain.Scenario) []Provider {
	required := make(map[string]bool)
	for _, s := range scenarios {
		if p, ok := r.ResolveProviderForModel(s.Model); ok {
			required[p.ID] = true
		}
	}

	out := make([]Provider, 0, len(required))
	for _, p := range r.providers {
		if required[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// MissingCredentials returns the display names of required providers without a credential
func (r *Registry) MissingCredentials(scenarios []domain.Scenario, creds domain.CredentialLookup) []string {
	var missing []string
	for _, p := range r.ListRequiredProviders(scenarios) {
		if creds == nil || creds.Credential(p.ID) == "" {
			missing = append(missing, p.Name)
		}
	}
	return missing
}

// ModelSupportsTemperature reports whether the model accepts a temperature.
// Unknown models are assumed to support it.
func (r *Registry) ModelSupportsTemperature(modelID string) bool {
	p, ok := r.ResolveProviderForModel(modelID)
	if !ok || p.SupportsTemperature == nil {
		return true
	}
	return p.SupportsTemperature(modelID)
}

// AvailableRoles returns the roles a model accepts natively
func (r *Registry) AvailableRoles(modelID string) []message.Role {
	p, ok := r.ResolveProviderForModel(modelID)
	if !ok {
		return []message.Role{message.RoleUser, message.RoleAssistant, message.RoleSystem}
	}
	m, _ := p.Model(modelID)
	if len(m.SupportedRoles) == 0 {
		return []message.Role{message.RoleUser}
	}
	roles := make([]message.Role, len(m.SupportedRoles))
	copy(roles, m.SupportedRoles)
	return roles
}

// GroupedModels returns every model grouped by provider
func (r *Registry) GroupedModels() []ModelGroup {
	groups := make([]ModelGroup, 0, len(r.providers))
	for _, p := range r.providers {
		models := make([]Model, len(p.Models))
		copy(models, p.Models)
		groups = append(groups, ModelGroup{ProviderID: p.ID, Label: p.Name, Models: models})
	}
	return groups
}
