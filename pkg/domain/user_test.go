package domain

import "testing"

func stringPtr(s string) *string { return &s }

func TestUser_HasPassword(t *testing.T) {
	tests := []struct {
		name string
		hash *string
		want bool
	}{
		{"nil hash", nil, false},
		{"empty hash", stringPtr(""), false},
		{"set hash", stringPtr("$2a$12$abc"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{PasswordHash: tt.hash}
			if got := u.HasPassword(); got != tt.want {
				t.Errorf("HasPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUser_IsBanned(t *testing.T) {
	for _, status := range []Status{StatusInactive, StatusActive} {
		if (&User{Status: status}).IsBanned() {
			t.Errorf("IsBanned() = true for status %q", status)
		}
	}
	if !(&User{Status: StatusBanned}).IsBanned() {
		t.Error("IsBanned() = false for banned status")
	}
}

func TestSessionUser_IsAdmin(t *testing.T) {
	if (&SessionUser{Role: RoleUser}).IsAdmin() {
		t.Error("IsAdmin() = true for role user")
	}
	if !(&SessionUser{Role: RoleAdmin}).IsAdmin() {
		t.Error("IsAdmin() = false for role admin")
	}
}

func TestErrorMessage(t *testing.T) {
	if got := ErrorMessage(CodeCredentialsSignin); got == "" {
		t.Error("no message for CredentialsSignin")
	}

	// Unknown codes collapse to the generic message rather than leaking
	// the code to the user.
	unknown := ErrorMessage("SomethingNew")
	fallback := ErrorMessage("")
	if unknown != fallback {
		t.Errorf("unknown code message %q differs from fallback %q", unknown, fallback)
	}
}
