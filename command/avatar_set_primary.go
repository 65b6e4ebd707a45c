package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-avatars/forms"
	"github.com/goliatone/go-avatars/pkg/types"
)

// AvatarSetPrimaryInput selects which of the user's avatars is primary.
type AvatarSetPrimaryInput struct {
	UserID   uuid.UUID
	Actor    types.ActorRef
	AvatarID uuid.UUID
	Result   *types.Avatar
}

// Type implements gocommand.Message.
func (AvatarSetPrimaryInput) Type() string {
	return "command.avatar.set_primary"
}

// Validate implements gocommand.Message.
func (input AvatarSetPrimaryInput) Validate() error {
	switch {
	case input.UserID == uuid.Nil:
		return ErrUserIDRequired
	case input.Actor.ID == uuid.Nil:
		return ErrActorRequired
	case input.AvatarID == uuid.Nil:
		return ErrAvatarIDRequired
	default:
		return nil
	}
}

// AvatarSetPrimaryCommand promotes one of the user's avatars to primary,
// demoting the rest.
type AvatarSetPrimaryCommand struct {
	repo      types.AvatarRepository
	renderer  types.ThumbnailRenderer
	validator forms.PrimaryChoiceValidator
	settings  types.Settings
	clock     types.Clock
	sink      types.ActivitySink
	hooks     types.Hooks
	logger    types.Logger
}

// AvatarSetPrimaryCommandConfig wires dependencies for the set-primary
// command.
type AvatarSetPrimaryCommandConfig struct {
	Repository types.AvatarRepository
	Thumbnails types.ThumbnailRenderer
	Validator  forms.PrimaryChoiceValidator
	Settings   types.Settings
	Clock      types.Clock
	Activity   types.ActivitySink
	Hooks      types.Hooks
	Logger     types.Logger
}

// NewAvatarSetPrimaryCommand constructs the set-primary handler.
func NewAvatarSetPrimaryCommand(cfg AvatarSetPrimaryCommandConfig) *AvatarSetPrimaryCommand {
	validator := cfg.Validator
	if validator == nil {
		validator = forms.DefaultPrimaryChoiceValidator{}
	}
	return &AvatarSetPrimaryCommand{
		repo:      cfg.Repository,
		renderer:  cfg.Thumbnails,
		validator: validator,
		settings:  cfg.Settings.Normalize(),
		clock:     safeClock(cfg.Clock),
		sink:      safeActivitySink(cfg.Activity),
		hooks:     safeHooks(cfg.Hooks),
		logger:    safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[AvatarSetPrimaryInput] = (*AvatarSetPrimaryCommand)(nil)

// Execute validates the choice against the user's set and flips the primary
// flag atomically.
func (c *AvatarSetPrimaryCommand) Execute(ctx context.Context, input AvatarSetPrimaryInput) error {
	if c.repo == nil {
		return types.ErrMissingAvatarRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	set, err := loadAvatarSet(ctx, c.repo, input.UserID, c.settings.MaxPerUser)
	if err != nil {
		return err
	}
	if err := c.validator.ValidatePrimaryChoice(input.AvatarID, set); err != nil {
		return err
	}

	updated, err := c.repo.SetPrimary(ctx, input.UserID, input.AvatarID, input.Actor.ID)
	if err != nil {
		return err
	}

	if c.renderer != nil {
		if _, err := c.renderer.RenditionURL(ctx, *updated, c.settings.DefaultSize); err != nil {
			c.logger.Error("rendition warmup failed", err, "avatar_id", updated.ID)
		}
	}

	occurred := now(c.clock)
	emitAvatarUpdatedHook(ctx, c.hooks, types.AvatarEvent{
		UserID:     updated.UserID,
		ActorID:    input.Actor.ID,
		Avatar:     *updated,
		OccurredAt: occurred,
	})

	record := types.ActivityRecord{
		UserID:     updated.UserID,
		ActorID:    input.Actor.ID,
		Verb:       "avatar.primary_changed",
		ObjectType: "avatar",
		ObjectID:   updated.ID.String(),
		Channel:    "avatars",
		Data: map[string]any{
			"storage_key": updated.StorageKey,
		},
		OccurredAt: occurred,
	}
	logActivity(ctx, c.sink, record)
	emitActivityHook(ctx, c.hooks, record)

	if input.Result != nil {
		*input.Result = *updated
	}

	return nil
}
