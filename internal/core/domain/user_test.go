package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"ADMIN", RoleAdmin, false},
		{"USER", RoleUser, false},
		{"CHECKER", RoleChecker, false},
		{"ENTRY", RoleEntry, false},
		{"admin", "", true},
		{"SUPERADMIN", "", true},
		{"", "", true},
	}
	for _, c := range cases {
		got, err := ParseRole(c.in)
		if c.wantErr {
			if !errors.Is(err, ErrInvalidRole) {
				t.Errorf("ParseRole(%q) err = %v, want ErrInvalidRole", c.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRole(%q) unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseRole(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRoleValid_CoversEveryListedRole(t *testing.T) {
	for _, r := range Roles {
		if !r.Valid() {
			t.Errorf("role %q listed in Roles but not Valid", r)
		}
	}
	if Role("GUEST").Valid() {
		t.Error("unknown role reported as valid")
	}
}

func TestRequireRole(t *testing.T) {
	if err := RequireRole(RoleAdmin, RoleAdmin); err != nil {
		t.Errorf("admin rejected from admin-only operation: %v", err)
	}
	if err := RequireRole(RoleChecker, RoleAdmin, RoleChecker); err != nil {
		t.Errorf("checker rejected despite being allowed: %v", err)
	}
	if err := RequireRole(RoleUser, RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Errorf("RequireRole(USER, ADMIN) err = %v, want ErrForbidden", err)
	}
	if err := RequireRole(RoleEntry); !errors.Is(err, ErrForbidden) {
		t.Errorf("RequireRole with empty allow list err = %v, want ErrForbidden", err)
	}
}

func TestUserJSON_NeverExposesPasswordHash(t *testing.T) {
	u := User{
		Username:     "alice",
		PasswordHash: "$2a$10$secretsecretsecret",
		Role:         RoleAdmin,
		Active:       true,
	}
	raw, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "secret") {
		t.Fatalf("password hash leaked into JSON: %s", raw)
	}
	if !strings.Contains(string(raw), `"username":"alice"`) {
		t.Fatalf("expected username in JSON: %s", raw)
	}
}
