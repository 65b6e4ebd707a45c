package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-avatars/pkg/types"
)

// PrimaryURLInput resolves the avatar URL for one user, either by ID or by
// username through the host directory.
type PrimaryURLInput struct {
	UserID   uuid.UUID
	Username string
	Size     int
}

// PrimaryURL is the result of resolving a user's primary avatar.
type PrimaryURL struct {
	URL string
	// Fallback is true when the user has no avatars and the default URL was
	// returned.
	Fallback bool
}

// PrimaryURLQuery resolves the rendition URL for a user's primary avatar,
// falling back to the configured default image when the user has none.
type PrimaryURLQuery struct {
	repo      types.AvatarRepository
	renderer  types.ThumbnailRenderer
	directory types.UserDirectory
	settings  types.Settings
}

// PrimaryURLQueryConfig wires dependencies for the primary URL query.
type PrimaryURLQueryConfig struct {
	Repository types.AvatarRepository
	Thumbnails types.ThumbnailRenderer
	Directory  types.UserDirectory
	Settings   types.Settings
}

// NewPrimaryURLQuery constructs the query helper.
func NewPrimaryURLQuery(cfg PrimaryURLQueryConfig) *PrimaryURLQuery {
	return &PrimaryURLQuery{
		repo:      cfg.Repository,
		renderer:  cfg.Thumbnails,
		directory: cfg.Directory,
		settings:  cfg.Settings.Normalize(),
	}
}

var _ gocommand.Querier[PrimaryURLInput, PrimaryURL] = (*PrimaryURLQuery)(nil)

// Query resolves the primary avatar URL at the requested size.
func (q *PrimaryURLQuery) Query(ctx context.Context, input PrimaryURLInput) (PrimaryURL, error) {
	if q.repo == nil {
		return PrimaryURL{}, types.ErrMissingAvatarRepository
	}

	userID := input.UserID
	if userID == uuid.Nil {
		if q.directory == nil {
			return PrimaryURL{}, types.ErrMissingUserDirectory
		}
		user, err := q.directory.FindByUsername(ctx, input.Username)
		if err != nil {
			return PrimaryURL{}, err
		}
		if user == nil {
			return PrimaryURL{}, types.ErrUserNotFound
		}
		userID = user.ID
	}

	primary, err := q.repo.GetPrimary(ctx, userID)
	if err != nil {
		return PrimaryURL{}, err
	}
	if primary == nil {
		return PrimaryURL{URL: q.settings.DefaultURL, Fallback: true}, nil
	}

	if q.renderer == nil {
		return PrimaryURL{}, types.ErrMissingThumbnailRenderer
	}
	size := input.Size
	if size <= 0 {
		size = q.settings.DefaultSize
	}
	url, err := q.renderer.RenditionURL(ctx, *primary, size)
	if err != nil {
		return PrimaryURL{}, err
	}
	return PrimaryURL{URL: url}, nil
}
