package goauth

import (
	auth "github.com/goliatone/go-auth"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"

	"github.com/goliatone/go-avatars/pkg/authctx"
	"github.com/goliatone/go-avatars/pkg/types"
)

// ActorFromSession returns a resolver that converts the go-auth session stored
// under contextKey into an actor reference. The actor context placed on the
// request by go-auth middleware is preferred because it carries the role, so
// staff sessions keep their staff type; the raw session is the fallback and
// yields a plain user actor. Missing or malformed sessions surface as
// ErrActorRequired so web handlers can answer with an auth challenge.
func ActorFromSession(contextKey string) func(router.Context) (types.ActorRef, error) {
	return func(c router.Context) (types.ActorRef, error) {
		if ref, err := authctx.ResolveActorFromRouter(c); err == nil {
			return ref, nil
		}
		session, err := auth.GetRouterSession(c, contextKey)
		if err != nil {
			return types.ActorRef{}, types.ErrActorRequired
		}
		actorID, err := uuid.Parse(session.GetUserID())
		if err != nil {
			return types.ActorRef{}, types.ErrActorRequired
		}
		return types.ActorRef{ID: actorID, Type: "user"}, nil
	}
}
