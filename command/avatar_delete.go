package command

import (
	"context"
	"time"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-avatars/forms"
	"github.com/goliatone/go-avatars/pkg/types"
	"github.com/goliatone/go-avatars/thumbnail"
)

// AvatarDeleteInput selects which of the user's avatars to remove.
type AvatarDeleteInput struct {
	UserID    uuid.UUID
	Actor     types.ActorRef
	AvatarIDs []uuid.UUID
}

// Type implements gocommand.Message.
func (AvatarDeleteInput) Type() string {
	return "command.avatar.delete"
}

// Validate implements gocommand.Message.
func (input AvatarDeleteInput) Validate() error {
	switch {
	case input.UserID == uuid.Nil:
		return ErrUserIDRequired
	case input.Actor.ID == uuid.Nil:
		return ErrActorRequired
	case len(input.AvatarIDs) == 0:
		return ErrAvatarIDsRequired
	default:
		return nil
	}
}

// AvatarDeleteCommand removes a batch of the user's avatars, promoting a
// survivor to primary when the current primary is among the deleted.
type AvatarDeleteCommand struct {
	repo      types.AvatarRepository
	files     types.FileStore
	validator forms.DeleteChoicesValidator
	settings  types.Settings
	clock     types.Clock
	sink      types.ActivitySink
	hooks     types.Hooks
	logger    types.Logger
}

// AvatarDeleteCommandConfig wires dependencies for the delete command.
type AvatarDeleteCommandConfig struct {
	Repository types.AvatarRepository
	Files      types.FileStore
	Validator  forms.DeleteChoicesValidator
	Settings   types.Settings
	Clock      types.Clock
	Activity   types.ActivitySink
	Hooks      types.Hooks
	Logger     types.Logger
}

// NewAvatarDeleteCommand constructs the delete handler.
func NewAvatarDeleteCommand(cfg AvatarDeleteCommandConfig) *AvatarDeleteCommand {
	validator := cfg.Validator
	if validator == nil {
		validator = forms.DefaultDeleteChoicesValidator{}
	}
	return &AvatarDeleteCommand{
		repo:      cfg.Repository,
		files:     cfg.Files,
		validator: validator,
		settings:  cfg.Settings.Normalize(),
		clock:     safeClock(cfg.Clock),
		sink:      safeActivitySink(cfg.Activity),
		hooks:     safeHooks(cfg.Hooks),
		logger:    safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[AvatarDeleteInput] = (*AvatarDeleteCommand)(nil)

// Execute validates the choices, fires per-avatar deletion hooks, promotes a
// survivor when needed, then removes records and blobs.
func (c *AvatarDeleteCommand) Execute(ctx context.Context, input AvatarDeleteInput) error {
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
	if err := c.validator.ValidateDeleteChoices(input.AvatarIDs, set); err != nil {
		return err
	}

	deleting := make(map[uuid.UUID]bool, len(input.AvatarIDs))
	for _, id := range input.AvatarIDs {
		deleting[id] = true
	}

	occurred := now(c.clock)
	primaryDeleted := false
	doomed := make([]types.Avatar, 0, len(input.AvatarIDs))
	for _, av := range set.Avatars {
		if !deleting[av.ID] {
			continue
		}
		if av.Primary {
			primaryDeleted = true
		}
		doomed = append(doomed, av)
		emitAvatarDeletedHook(ctx, c.hooks, types.AvatarEvent{
			UserID:     av.UserID,
			ActorID:    input.Actor.ID,
			Avatar:     av,
			OccurredAt: occurred,
		})
	}

	if primaryDeleted {
		if err := c.promoteSurvivor(ctx, input, set, deleting, occurred); err != nil {
			return err
		}
	}

	if err := c.repo.DeleteByIDs(ctx, input.UserID, input.AvatarIDs); err != nil {
		return err
	}

	keys := make([]string, 0, len(doomed)*2)
	for _, av := range doomed {
		keys = append(keys,
			av.StorageKey,
			thumbnail.RenditionKey(av.StorageKey, c.settings.DefaultSize),
		)
	}
	if c.files != nil && len(keys) > 0 {
		if err := c.files.Delete(ctx, keys...); err != nil {
			c.logger.Error("avatar blob cleanup failed", err, "user_id", input.UserID)
		}
	}

	record := types.ActivityRecord{
		UserID:     input.UserID,
		ActorID:    input.Actor.ID,
		Verb:       "avatar.deleted",
		ObjectType: "avatar",
		Channel:    "avatars",
		Data: map[string]any{
			"count":           len(doomed),
			"primary_deleted": primaryDeleted,
		},
		OccurredAt: occurred,
	}
	logActivity(ctx, c.sink, record)
	emitActivityHook(ctx, c.hooks, record)

	return nil
}

// promoteSurvivor makes the first remaining avatar primary so the user is
// never left with unflagged avatars after the batch delete lands.
func (c *AvatarDeleteCommand) promoteSurvivor(ctx context.Context, input AvatarDeleteInput, set types.AvatarSet, deleting map[uuid.UUID]bool, occurred time.Time) error {
	for _, av := range set.Avatars {
		if deleting[av.ID] {
			continue
		}
		promoted, err := c.repo.SetPrimary(ctx, input.UserID, av.ID, input.Actor.ID)
		if err != nil {
			return err
		}
		emitAvatarUpdatedHook(ctx, c.hooks, types.AvatarEvent{
			UserID:     promoted.UserID,
			ActorID:    input.Actor.ID,
			Avatar:     *promoted,
			OccurredAt: occurred,
		})
		return nil
	}
	return nil
}
