package goauth

import (
	"testing"

	auth "github.com/goliatone/go-auth"
	"github.com/google/uuid"
)

func TestToUserRef(t *testing.T) {
	user := &auth.User{
		ID:       uuid.New(),
		Role:     auth.RoleAdmin,
		Status:   auth.UserStatusActive,
		Username: "tester",
		Email:    "test@example.com",
	}

	ref := toUserRef(user)
	if ref == nil {
		t.Fatalf("expected user to be converted")
	}
	if ref.ID != user.ID || ref.Username != user.Username {
		t.Fatalf("expected id/username to be copied")
	}
	if !ref.Active {
		t.Fatalf("expected active status to map")
	}
	if !ref.Staff {
		t.Fatalf("expected admin role to map to staff")
	}
}

func TestToUserRefInactive(t *testing.T) {
	user := &auth.User{
		ID:       uuid.New(),
		Role:     auth.UserRole("member"),
		Status:   auth.UserStatus("suspended"),
		Username: "dormant",
	}

	ref := toUserRef(user)
	if ref.Active {
		t.Fatalf("expected suspended status to map to inactive")
	}
	if ref.Staff {
		t.Fatalf("expected member role to not be staff")
	}
}

func TestToUserRefNil(t *testing.T) {
	if toUserRef(nil) != nil {
		t.Fatalf("expected nil user to convert to nil ref")
	}
}
