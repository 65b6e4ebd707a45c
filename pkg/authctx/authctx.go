// Package authctx bridges go-auth middleware payloads into the actor
// references consumed by go-avatars commands.
package authctx

import (
	"context"

	auth "github.com/goliatone/go-auth"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"

	"github.com/goliatone/go-avatars/pkg/types"
)

const (
	textCodeActorMissing = "ACTOR_CONTEXT_MISSING"
	textCodeActorInvalid = "ACTOR_CONTEXT_INVALID"
)

// ResolveActor returns the actor stored by go-auth middleware, rebuilding it
// from JWT claims when the context enricher hook was not configured.
func ResolveActor(ctx context.Context) (types.ActorRef, error) {
	if ctx == nil {
		return types.ActorRef{}, errors.New("go-avatars: missing request context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorMissing)
	}

	if actor, ok := auth.ActorFromContext(ctx); ok && actor != nil {
		return actorRef(actor)
	}

	if claims, ok := auth.GetClaims(ctx); ok && claims != nil {
		if actor := auth.ActorContextFromClaims(claims); actor != nil {
			return actorRef(actor)
		}
	}

	return types.ActorRef{}, errors.New("go-avatars: auth actor context not found on request", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(textCodeActorMissing)
}

// ResolveActorFromRouter mirrors ResolveActor for router transports where
// middleware stores actor metadata directly in the router context.
func ResolveActorFromRouter(ctx router.Context) (types.ActorRef, error) {
	if ctx == nil {
		return types.ActorRef{}, errors.New("go-avatars: missing router context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorMissing)
	}

	if actor, ok := auth.ActorFromRouterContext(ctx); ok && actor != nil {
		return actorRef(actor)
	}

	return ResolveActor(ctx.Context())
}

func actorRef(actor *auth.ActorContext) (types.ActorRef, error) {
	if actor == nil || actor.ActorID == "" {
		return types.ActorRef{}, errors.New("go-avatars: actor context missing actor_id", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}

	actorID, err := uuid.Parse(actor.ActorID)
	if err != nil {
		return types.ActorRef{}, errors.Wrap(err, errors.CategoryAuth, "go-avatars: invalid actor_id on auth context").
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}

	ref := types.ActorRef{
		ID:   actorID,
		Type: actor.Role,
	}
	if ref.Type == "" && actor.Subject != "" {
		ref.Type = actor.Subject
	}
	return ref, nil
}
