package session

import (
	"fmt"
	"strings"
	"testing"
)

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		email    string
		wantTail string
	}{
		{"user@example.com", "@example.com"},
		{"first.last@jobs.io", "@jobs.io"},
	}

	for _, tt := range tests {
		got := RedactEmail(tt.email)
		if !strings.HasSuffix(got, tt.wantTail) {
			t.Errorf("RedactEmail(%q) = %q, want suffix %q", tt.email, got, tt.wantTail)
		}
		if strings.Contains(got, strings.Split(tt.email, "@")[0]) {
			t.Errorf("RedactEmail(%q) = %q leaks the local part", tt.email, got)
		}
	}
}

func TestRedactEmailStable(t *testing.T) {
	if RedactEmail("user@example.com") != RedactEmail("user@example.com") {
		t.Error("RedactEmail should be deterministic")
	}
	if RedactEmail("user@example.com") == RedactEmail("other@example.com") {
		t.Error("different users should redact differently")
	}
}

func TestRedactEmailEdgeCases(t *testing.T) {
	if got := RedactEmail(""); got != "" {
		t.Errorf("RedactEmail(\"\") = %q, want empty", got)
	}
	if got := RedactEmail("no-at-sign"); strings.Contains(got, "no-at-sign") {
		t.Errorf("RedactEmail without @ leaked input: %q", got)
	}
}

func TestIdentityStringRedacts(t *testing.T) {
	id := UserIdentity{Email: "secret@example.com", DisplayName: "Secret"}
	s := fmt.Sprint(id)
	if strings.Contains(s, "secret@") {
		t.Errorf("String() = %q leaks email", s)
	}
}
