package goauth

import (
	"context"
	"errors"
	"testing"

	auth "github.com/goliatone/go-auth"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"

	"github.com/goliatone/go-avatars/pkg/types"
)

func TestActorFromSessionKeepsRole(t *testing.T) {
	id := uuid.New()
	ctx := auth.WithActorContext(context.Background(), &auth.ActorContext{
		ActorID: id.String(),
		Role:    "admin",
	})
	mc := router.NewMockContext()
	mc.On("Context").Return(ctx)

	ref, err := ActorFromSession("session")(mc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ID != id {
		t.Fatalf("expected actor %s, got %s", id, ref.ID)
	}
	if !ref.IsStaff() {
		t.Fatalf("expected admin session to resolve as staff, got type %q", ref.Type)
	}
}

func TestActorFromSessionMissingSession(t *testing.T) {
	mc := router.NewMockContext()
	mc.On("Context").Return(context.Background())

	_, err := ActorFromSession("session")(mc)
	if !errors.Is(err, types.ErrActorRequired) {
		t.Fatalf("expected ErrActorRequired, got %v", err)
	}
}
