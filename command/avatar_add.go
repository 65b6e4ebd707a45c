package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"

	"github.com/goliatone/go-avatars/forms"
	"github.com/goliatone/go-avatars/pkg/types"
)

// AvatarAddInput captures an avatar upload. The new avatar becomes the user's
// primary.
type AvatarAddInput struct {
	UserID uuid.UUID
	Actor  types.ActorRef
	Upload types.Upload
	Result *types.Avatar
}

// Type implements gocommand.Message.
func (AvatarAddInput) Type() string {
	return "command.avatar.add"
}

// Validate implements gocommand.Message.
func (input AvatarAddInput) Validate() error {
	switch {
	case input.UserID == uuid.Nil:
		return ErrUserIDRequired
	case input.Actor.ID == uuid.Nil:
		return ErrActorRequired
	case input.Upload.Open == nil:
		return ErrUploadRequired
	default:
		return nil
	}
}

// AvatarAddCommand stores an uploaded image and records it as the user's
// primary avatar.
type AvatarAddCommand struct {
	repo      types.AvatarRepository
	files     types.FileStore
	validator forms.UploadValidator
	settings  types.Settings
	clock     types.Clock
	idgen     types.IDGenerator
	sink      types.ActivitySink
	hooks     types.Hooks
	logger    types.Logger
	gate      featuregate.FeatureGate
}

// AvatarAddCommandConfig wires dependencies for the add command.
type AvatarAddCommandConfig struct {
	Repository  types.AvatarRepository
	Files       types.FileStore
	Validator   forms.UploadValidator
	Settings    types.Settings
	Clock       types.Clock
	IDGenerator types.IDGenerator
	Activity    types.ActivitySink
	Hooks       types.Hooks
	Logger      types.Logger
	FeatureGate featuregate.FeatureGate
}

// NewAvatarAddCommand constructs the add handler.
func NewAvatarAddCommand(cfg AvatarAddCommandConfig) *AvatarAddCommand {
	validator := cfg.Validator
	if validator == nil {
		validator = forms.DefaultUploadValidator{}
	}
	return &AvatarAddCommand{
		repo:      cfg.Repository,
		files:     cfg.Files,
		validator: validator,
		settings:  cfg.Settings.Normalize(),
		clock:     safeClock(cfg.Clock),
		idgen:     safeIDGenerator(cfg.IDGenerator),
		sink:      safeActivitySink(cfg.Activity),
		hooks:     safeHooks(cfg.Hooks),
		logger:    safeLogger(cfg.Logger),
		gate:      cfg.FeatureGate,
	}
}

var _ gocommand.Commander[AvatarAddInput] = (*AvatarAddCommand)(nil)

// Execute validates the upload, saves the blob, and creates the primary
// avatar record.
func (c *AvatarAddCommand) Execute(ctx context.Context, input AvatarAddInput) error {
	if c.repo == nil {
		return types.ErrMissingAvatarRepository
	}
	if c.files == nil {
		return types.ErrMissingFileStore
	}
	if err := input.Validate(); err != nil {
		return err
	}

	enabled, err := featureEnabled(ctx, c.gate, featureAvatarsUpload, input.UserID)
	if err != nil {
		return err
	}
	if !enabled {
		return ErrUploadDisabled
	}

	current, err := c.repo.CountForUser(ctx, input.UserID)
	if err != nil {
		return err
	}
	if err := c.validator.ValidateUpload(input.Upload, current, c.settings); err != nil {
		return err
	}

	id := c.idgen.UUID()
	key := storageKey(c.settings.StoragePrefix, input.UserID, id, input.Upload)

	src, err := input.Upload.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	if err := c.files.Save(ctx, key, src); err != nil {
		return err
	}

	created, err := c.repo.Create(ctx, types.Avatar{
		ID:          id,
		UserID:      input.UserID,
		StorageKey:  key,
		ContentType: input.Upload.ContentType,
		Primary:     true,
		CreatedBy:   input.Actor.ID,
		UpdatedBy:   input.Actor.ID,
	})
	if err != nil {
		if derr := c.files.Delete(ctx, key); derr != nil {
			c.logger.Error("orphaned avatar blob", derr, "key", key)
		}
		return err
	}

	occurred := now(c.clock)
	emitAvatarUpdatedHook(ctx, c.hooks, types.AvatarEvent{
		UserID:     created.UserID,
		ActorID:    input.Actor.ID,
		Avatar:     *created,
		OccurredAt: occurred,
	})

	record := types.ActivityRecord{
		UserID:     created.UserID,
		ActorID:    input.Actor.ID,
		Verb:       "avatar.uploaded",
		ObjectType: "avatar",
		ObjectID:   created.ID.String(),
		Channel:    "avatars",
		Data: map[string]any{
			"storage_key":  created.StorageKey,
			"content_type": created.ContentType,
			"filename":     input.Upload.Filename,
		},
		OccurredAt: occurred,
	}
	logActivity(ctx, c.sink, record)
	emitActivityHook(ctx, c.hooks, record)

	if input.Result != nil {
		*input.Result = *created
	}

	return nil
}
