package status

import (
	"strings"
	"testing"

	"github.com/freelance-hub/jobhub/internal/session"
)

func TestViewSignedOut(t *testing.T) {
	m := New()
	m.Session = session.Session{}
	m.Width = 160
	v := m.View()
	if !strings.Contains(v, "login") {
		t.Error("signed-out navbar should offer login")
	}
	if strings.Contains(v, "My Posted Jobs") {
		t.Error("private links should be hidden when signed out")
	}
}

func TestViewSignedIn(t *testing.T) {
	m := New()
	m.Session = session.Session{Identity: &session.UserIdentity{Email: "ann@example.com", DisplayName: "Ann"}}
	m.Width = 160
	v := m.View()
	if !strings.Contains(v, "Ann") {
		t.Error("navbar should show the display name")
	}
	if !strings.Contains(v, "My Posted Jobs") {
		t.Error("private links should be shown when signed in")
	}
}

func TestViewResolving(t *testing.T) {
	m := New()
	m.Width = 160
	if !strings.Contains(m.View(), "checking session") {
		t.Error("resolving navbar should show the pending indicator")
	}
}
