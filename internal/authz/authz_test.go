package authz

import "testing"

func TestActorAnonymous(t *testing.T) {
	if !(Actor{}).Anonymous() {
		t.Error("empty login should be anonymous")
	}
	if (Actor{Login: "arthur"}).Anonymous() {
		t.Error("named actor should not be anonymous")
	}
}

func TestStaticAuthorizer(t *testing.T) {
	az := NewStaticAuthorizer()
	az.Grant("arthur", "alpha", CapUser)
	az.Grant("admin", "alpha", CapUser)
	az.Grant("admin", "alpha", CapIssueAdmin)

	if !az.CanBrowse(Actor{Login: "arthur"}, "alpha") {
		t.Error("granted user should browse")
	}
	if az.CanBrowse(Actor{Login: "arthur"}, "beta") {
		t.Error("no grant on beta, browse should be refused")
	}
	if az.CanBrowse(Actor{Login: "zaphod"}, "alpha") {
		t.Error("unknown login should not browse")
	}

	if az.HasCapability(Actor{Login: "arthur"}, "alpha", CapIssueAdmin) {
		t.Error("arthur is not an issue admin")
	}
	if !az.HasCapability(Actor{Login: "admin"}, "alpha", CapIssueAdmin) {
		t.Error("admin grant not honored")
	}
}
