// Package websvc mounts the HTML avatar management routes on a go-router
// server: upload, primary selection, deletion, and the primary redirect
// endpoint. Handlers render the configured templates, re-render them with
// validation messages on bad submissions, and redirect with a flash on
// success.
package websvc

import (
	"context"

	"github.com/goliatone/go-router"
	"github.com/google/uuid"

	"github.com/goliatone/go-avatars/pkg/types"
	"github.com/goliatone/go-avatars/service"
)

// ActorResolver extracts the acting user from the request, typically from the
// host's auth session middleware.
type ActorResolver func(router.Context) (types.ActorRef, error)

// Config wires the web controller.
type Config struct {
	Service   *service.Service
	Directory types.UserDirectory
	Actor     ActorResolver
	Logger    types.Logger
	// NextOverride, when set, wins over any submitted next location.
	NextOverride string
}

// Controller serves the HTML avatar management surface.
type Controller struct {
	svc          *service.Service
	directory    types.UserDirectory
	actor        ActorResolver
	logger       types.Logger
	nextOverride string
}

// NewController builds the web controller. Service and Actor are required.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Service == nil {
		return nil, types.ErrServiceNotReady
	}
	if cfg.Actor == nil {
		return nil, types.ErrActorRequired
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Controller{
		svc:          cfg.Service,
		directory:    cfg.Directory,
		actor:        cfg.Actor,
		logger:       logger,
		nextOverride: cfg.NextOverride,
	}, nil
}

// RegisterRoutes mounts the avatar management routes on the given router
// group. Hosts typically guard this group with their auth middleware; the
// render redirect stays public and goes through RegisterPublicRoutes. The
// for-user variants let staff manage another user's avatars; the policy
// configured on the service decides who may do so.
func RegisterRoutes[T any](r router.Router[T], ctrl *Controller) {
	r.Get("/add", ctrl.RenderAdd())
	r.Post("/add", ctrl.HandleAdd())
	r.Get("/change", ctrl.RenderChange())
	r.Post("/change", ctrl.HandleChange())
	r.Get("/delete", ctrl.RenderDelete())
	r.Post("/delete", ctrl.HandleDelete())

	r.Get("/add_for_user/:username", ctrl.RenderAdd())
	r.Post("/add_for_user/:username", ctrl.HandleAdd())
	r.Get("/change_for_user/:username", ctrl.RenderChange())
	r.Post("/change_for_user/:username", ctrl.HandleChange())
	r.Get("/delete_for_user/:username", ctrl.RenderDelete())
	r.Post("/delete_for_user/:username", ctrl.HandleDelete())
}

// RegisterPublicRoutes mounts the unauthenticated endpoints: the primary
// avatar redirect anyone can hit to display a user's picture.
func RegisterPublicRoutes[T any](r router.Router[T], ctrl *Controller) {
	r.Get("/render_primary/:username/:size", ctrl.RedirectPrimary())
}

// target resolves who the request manages: the actor itself, or the user
// named by the :username param when present.
func (ct *Controller) target(c router.Context, actor types.ActorRef) (types.UserRef, error) {
	username := c.Param("username", "")
	if username == "" {
		return types.UserRef{ID: actor.ID}, nil
	}
	if ct.directory == nil {
		return types.UserRef{}, types.ErrMissingUserDirectory
	}
	user, err := ct.directory.FindByUsername(c.Context(), username)
	if err != nil {
		return types.UserRef{}, err
	}
	if user == nil || !user.Active {
		return types.UserRef{}, types.ErrUserNotFound
	}
	return *user, nil
}

func (ct *Controller) authorize(ctx context.Context, actor types.ActorRef, target types.UserRef) error {
	if actor.ID == uuid.Nil {
		return types.ErrActorRequired
	}
	return ct.svc.ManagePolicy().Authorize(ctx, actor, target)
}

func (ct *Controller) next(c router.Context) string {
	return ResolveNext(
		ct.nextOverride,
		c.FormValue("next"),
		c.Query("next", ""),
		c.Header("Referer"),
		c.Path(),
	)
}
