package provider

import "github.com/fpt/go-promptlab/pkg/message"

// RoleMappingInfo tells the caller how a role will be sent for a given model
type RoleMappingInfo struct {
	Role         message.Role
	Converted    bool
	ConvertedTo  message.Role
	ProviderName string
}

// MapRole returns the provider-native role for an agnostic role.
// Roles without an explicit mapping, and unknown providers, pass through unchanged.
func (r *Registry) MapRole(role message.Role, providerID string) message.Role {
	p, ok := r.Provider(providerID)
	if !ok {
		return role
	}
	return p.MapRole(role)
}

// MapRole applies the provider's role mapping
func (p Provider) MapRole(role message.Role) message.Role {
	if mapped, ok := p.RoleMapping[role]; ok {
		return mapped
	}
	return role
}

// DescribeRoleMapping reports whether a role is converted when sent to the model's provider
func (r *Registry) DescribeRoleMapping(role message.Role, modelID string) RoleMappingInfo {
	info := RoleMappingInfo{Role: role}
	p, ok := r.ResolveProviderForModel(modelID)
	if !ok {
		return info
	}
	if mapped, ok := p.RoleMapping[role]; ok && mapped != role {
		info.Converted = true
		info.ConvertedTo = mapped
		info.ProviderName = p.Name
	}
	return info
}
