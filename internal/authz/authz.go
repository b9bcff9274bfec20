// Package authz defines the authorization boundary of the engine.
//
// The engine never reads a thread-bound session: the acting user is an
// explicit Actor value passed through every call, which keeps concurrent
// per-issue processing safe by construction.
package authz

// Capability is a project-scoped permission level.
type Capability string

// Capability constants
const (
	// CapUser grants browsing issues of a project.
	CapUser Capability = "USER"
	// CapIssueAdmin grants elevated issue administration: changing severity
	// or type, and resolving transitions.
	CapIssueAdmin Capability = "ISSUE_ADMIN"
)

// Actor identifies the user performing a change.
type Actor struct {
	Login string
}

// Anonymous reports whether the actor is unauthenticated.
func (a Actor) Anonymous() bool {
	return a.Login == ""
}

// Authorizer answers project-scoped permission questions for an actor.
type Authorizer interface {
	// CanBrowse reports whether actor may see issues of the project.
	CanBrowse(actor Actor, projectKey string) bool
	// HasCapability reports whether actor holds the capability on the project.
	HasCapability(actor Actor, projectKey string, cap Capability) bool
}
