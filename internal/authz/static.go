package authz

import "sync"

// StaticAuthorizer is a config-driven Authorizer: grants are loaded once
// (from the server config or a fixture) and answered from memory. Browse is
// implied by any capability on the project.
type StaticAuthorizer struct {
	mu     sync.RWMutex
	grants map[string]map[string][]Capability // project -> login -> capabilities
}

// NewStaticAuthorizer creates an empty authorizer. Use Grant to add rights.
func NewStaticAuthorizer() *StaticAuthorizer {
	return &StaticAuthorizer{grants: make(map[string]map[string][]Capability)}
}

// Grant gives login the capability on projectKey.
func (a *StaticAuthorizer) Grant(login, projectKey string, cap Capability) {
	a.mu.Lock()
	defer a.mu.Unlock()
	byLogin, ok := a.grants[projectKey]
	if !ok {
		byLogin = make(map[string][]Capability)
		a.grants[projectKey] = byLogin
	}
	byLogin[login] = append(byLogin[login], cap)
}

// CanBrowse implements Authorizer.
func (a *StaticAuthorizer) CanBrowse(actor Actor, projectKey string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.grants[projectKey][actor.Login]) > 0
}

// HasCapability implements Authorizer.
func (a *StaticAuthorizer) HasCapability(actor Actor, projectKey string, cap Capability) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, c := range a.grants[projectKey][actor.Login] {
		if c == cap {
			return true
		}
	}
	return false
}
