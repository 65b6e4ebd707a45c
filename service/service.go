package service

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"

	"github.com/goliatone/go-avatars/command"
	"github.com/goliatone/go-avatars/forms"
	"github.com/goliatone/go-avatars/pkg/types"
	"github.com/goliatone/go-avatars/query"
)

// Service is the entry point for go-avatars. It wires the avatar repository,
// blob store, renderer, hooks, and command/query facades supplied by the host
// application.
type Service struct {
	cfg          Config
	commands     Commands
	queries      Queries
	activityRepo types.ActivityRepository
	policy       types.ManagePolicy
}

// Commands exposes the service command handlers.
type Commands struct {
	AvatarAdd        *command.AvatarAddCommand
	AvatarSetPrimary *command.AvatarSetPrimaryCommand
	AvatarDelete     *command.AvatarDeleteCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	AvatarSet  *query.AvatarSetQuery
	PrimaryURL *query.PrimaryURLQuery
}

// Config captures all required dependencies so callers can provide their own
// instances (bun.DB backed repositories, S3 stores, hooks, etc.).
type Config struct {
	Repository         types.AvatarRepository
	Files              types.FileStore
	Thumbnails         types.ThumbnailRenderer
	Directory          types.UserDirectory
	ActivityRepository types.ActivityRepository
	ActivitySink       types.ActivitySink
	Hooks              types.Hooks
	Clock              types.Clock
	IDGenerator        types.IDGenerator
	Logger             types.Logger
	Settings           types.Settings
	UploadValidator    forms.UploadValidator
	PrimaryValidator   forms.PrimaryChoiceValidator
	DeleteValidator    forms.DeleteChoicesValidator
	ManagePolicy       types.ManagePolicy
	FeatureGate        featuregate.FeatureGate
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)
	actRepo := norm.ActivityRepository
	if actRepo == nil {
		if sinkRepo, ok := norm.ActivitySink.(types.ActivityRepository); ok {
			actRepo = sinkRepo
		}
	}

	s := &Service{
		cfg:          norm,
		activityRepo: actRepo,
		policy:       types.EnsureManagePolicy(norm.ManagePolicy),
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	cfg.Settings = cfg.Settings.Normalize()
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Settings returns the normalized runtime settings.
func (s *Service) Settings() types.Settings {
	return s.cfg.Settings
}

// ManagePolicy exposes the policy used internally so transports can apply the
// same actor checks before invoking commands.
func (s *Service) ManagePolicy() types.ManagePolicy {
	if s == nil {
		return types.EnsureManagePolicy(nil)
	}
	return s.policy
}

// ActivitySink returns the configured sink so transports can emit activity
// records for auxiliary workflows (e.g. CRUD controllers).
func (s *Service) ActivitySink() types.ActivitySink {
	if s == nil {
		return nil
	}
	return s.cfg.ActivitySink
}

// ActivityRepository returns the read side of the activity feed when the
// configured sink provides one.
func (s *Service) ActivityRepository() types.ActivityRepository {
	if s == nil {
		return nil
	}
	return s.activityRepo
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil &&
		s.cfg.Repository != nil &&
		s.cfg.Files != nil &&
		s.cfg.Thumbnails != nil
}

// HealthCheck surfaces missing configuration for upstream transports.
func (s *Service) HealthCheck(ctx context.Context) error {
	if !s.Ready() {
		return types.ErrServiceNotReady
	}
	if s.cfg.Repository == nil {
		return types.ErrMissingAvatarRepository
	}
	if s.cfg.Files == nil {
		return types.ErrMissingFileStore
	}
	if s.cfg.Thumbnails == nil {
		return types.ErrMissingThumbnailRenderer
	}
	return nil
}

func (s *Service) buildCommands() Commands {
	return Commands{
		AvatarAdd: command.NewAvatarAddCommand(command.AvatarAddCommandConfig{
			Repository:  s.cfg.Repository,
			Files:       s.cfg.Files,
			Validator:   s.cfg.UploadValidator,
			Settings:    s.cfg.Settings,
			Clock:       s.cfg.Clock,
			IDGenerator: s.cfg.IDGenerator,
			Activity:    s.cfg.ActivitySink,
			Hooks:       s.cfg.Hooks,
			Logger:      s.cfg.Logger,
			FeatureGate: s.cfg.FeatureGate,
		}),
		AvatarSetPrimary: command.NewAvatarSetPrimaryCommand(command.AvatarSetPrimaryCommandConfig{
			Repository: s.cfg.Repository,
			Thumbnails: s.cfg.Thumbnails,
			Validator:  s.cfg.PrimaryValidator,
			Settings:   s.cfg.Settings,
			Clock:      s.cfg.Clock,
			Activity:   s.cfg.ActivitySink,
			Hooks:      s.cfg.Hooks,
			Logger:     s.cfg.Logger,
		}),
		AvatarDelete: command.NewAvatarDeleteCommand(command.AvatarDeleteCommandConfig{
			Repository: s.cfg.Repository,
			Files:      s.cfg.Files,
			Validator:  s.cfg.DeleteValidator,
			Settings:   s.cfg.Settings,
			Clock:      s.cfg.Clock,
			Activity:   s.cfg.ActivitySink,
			Hooks:      s.cfg.Hooks,
			Logger:     s.cfg.Logger,
		}),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		AvatarSet: query.NewAvatarSetQuery(s.cfg.Repository, s.cfg.Settings),
		PrimaryURL: query.NewPrimaryURLQuery(query.PrimaryURLQueryConfig{
			Repository: s.cfg.Repository,
			Thumbnails: s.cfg.Thumbnails,
			Directory:  s.cfg.Directory,
			Settings:   s.cfg.Settings,
		}),
	}
}
