package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-avatars/pkg/types"
)

// AvatarSetInput scopes avatar set retrieval to one user.
type AvatarSetInput struct {
	UserID uuid.UUID
	Actor  types.ActorRef
}

// AvatarSetQuery returns the user's primary avatar alongside the capped,
// primary-first listing. With a cap of one only the primary is listed.
type AvatarSetQuery struct {
	repo     types.AvatarRepository
	settings types.Settings
}

// NewAvatarSetQuery constructs the query helper.
func NewAvatarSetQuery(repo types.AvatarRepository, settings types.Settings) *AvatarSetQuery {
	return &AvatarSetQuery{
		repo:     repo,
		settings: settings.Normalize(),
	}
}

var _ gocommand.Querier[AvatarSetInput, types.AvatarSet] = (*AvatarSetQuery)(nil)

// Query assembles the avatar set.
func (q *AvatarSetQuery) Query(ctx context.Context, input AvatarSetInput) (types.AvatarSet, error) {
	if q.repo == nil {
		return types.AvatarSet{}, types.ErrMissingAvatarRepository
	}
	if input.UserID == uuid.Nil {
		return types.AvatarSet{}, types.ErrUserIDRequired
	}

	if q.settings.MaxPerUser == 1 {
		primary, err := q.repo.GetPrimary(ctx, input.UserID)
		if err != nil {
			return types.AvatarSet{}, err
		}
		set := types.AvatarSet{}
		if primary != nil {
			set.Primary = primary
			set.Avatars = []types.Avatar{*primary}
		}
		return set, nil
	}

	avatars, err := q.repo.ListForUser(ctx, input.UserID, q.settings.MaxPerUser)
	if err != nil {
		return types.AvatarSet{}, err
	}
	set := types.AvatarSet{Avatars: avatars}
	for i := range avatars {
		if avatars[i].Primary {
			set.Primary = &avatars[i]
			break
		}
	}
	return set, nil
}
