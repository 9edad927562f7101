package sdk

import "testing"

func TestLoginRedirectPreservesLocation(t *testing.T) {
	nav := NewMemoryNavigator("/jobtrack/session/42?tab=jobs&sort=desc")
	if !loginRedirect(nav, DefaultLoginPath) {
		t.Fatalf("expected a redirect")
	}
	want := "/login?next=%2Fjobtrack%2Fsession%2F42%3Ftab%3Djobs%26sort%3Ddesc"
	if got := nav.Location(); got != want {
		t.Fatalf("unexpected target %q", got)
	}
	if got := NextFromLocation(nav.Location()); got != "/jobtrack/session/42?tab=jobs&sort=desc" {
		t.Fatalf("next should round-trip, got %q", got)
	}
}

func TestLoginRedirectIsIdempotent(t *testing.T) {
	nav := NewMemoryNavigator("/dashboard")
	loginRedirect(nav, DefaultLoginPath)
	loginRedirect(nav, DefaultLoginPath)
	loginRedirect(nav, DefaultLoginPath)
	if got := nav.Redirects(); len(got) != 1 {
		t.Fatalf("expected one redirect, got %v", got)
	}

	onLogin := NewMemoryNavigator("/login?next=%2Fx")
	if loginRedirect(onLogin, DefaultLoginPath) {
		t.Fatalf("already on the login page")
	}
}

func TestLoginRedirectCustomPath(t *testing.T) {
	nav := NewMemoryNavigator("/")
	loginRedirect(nav, "/auth/sign-in")
	if got := nav.Location(); got != "/auth/sign-in?next=%2F" {
		t.Fatalf("unexpected target %q", got)
	}
}

func TestNextFromLocationRejectsOffsiteTargets(t *testing.T) {
	cases := map[string]string{
		"/login?next=%2Fjobs":                "/jobs",
		"/login?next=https%3A%2F%2Fevil.com": "",
		"/login?next=%2F%2Fevil.com":         "",
		"/login":                             "",
	}
	for in, want := range cases {
		if got := NextFromLocation(in); got != want {
			t.Fatalf("NextFromLocation(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNavigatorWithoutLocation(t *testing.T) {
	if !loginRedirect(NopNavigator{}, DefaultLoginPath) {
		t.Fatalf("an empty location is not the login page")
	}
	if loginRedirect(nil, DefaultLoginPath) {
		t.Fatalf("nil navigator cannot redirect")
	}
}
