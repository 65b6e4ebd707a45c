// Package avatarsvc adapts the go-avatars command/query layer to go-crud
// controllers so hosts can expose a read/delete REST surface for avatar
// records. Uploads stay on the multipart web endpoints.
package avatarsvc

import (
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-crud"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"

	"github.com/goliatone/go-avatars/avatar"
	"github.com/goliatone/go-avatars/command"
	"github.com/goliatone/go-avatars/pkg/types"
	"github.com/goliatone/go-avatars/query"
)

// AvatarServiceConfig wires dependencies for the CRUD-backed avatar service.
type AvatarServiceConfig struct {
	Actor      ActorResolver
	Repository types.AvatarRepository
	Policy     types.ManagePolicy
	Settings   types.Settings
	SetQuery   gocommand.Querier[query.AvatarSetInput, types.AvatarSet]
	DeleteCmd  gocommand.Commander[command.AvatarDeleteInput]
}

// AvatarService adapts avatar commands and queries to a go-crud controller.
type AvatarService struct {
	actor     ActorResolver
	repo      types.AvatarRepository
	policy    types.ManagePolicy
	settings  types.Settings
	setQuery  gocommand.Querier[query.AvatarSetInput, types.AvatarSet]
	deleteCmd gocommand.Commander[command.AvatarDeleteInput]
	emitter   ActivityEmitter
	logger    types.Logger
}

// NewAvatarService constructs the adapter.
func NewAvatarService(cfg AvatarServiceConfig, opts ...ServiceOption) *AvatarService {
	options := applyOptions(opts)
	return &AvatarService{
		actor:     cfg.Actor,
		repo:      cfg.Repository,
		policy:    types.EnsureManagePolicy(cfg.Policy),
		settings:  cfg.Settings.Normalize(),
		setQuery:  cfg.SetQuery,
		deleteCmd: cfg.DeleteCmd,
		emitter:   options.emitter,
		logger:    options.logger,
	}
}

var _ crud.Service[*avatar.Record] = (*AvatarService)(nil)

func (s *AvatarService) Create(crud.Context, *avatar.Record) (*avatar.Record, error) {
	return nil, notSupported(crud.OpCreate)
}

func (s *AvatarService) CreateBatch(crud.Context, []*avatar.Record) ([]*avatar.Record, error) {
	return nil, notSupported(crud.OpCreateBatch)
}

func (s *AvatarService) Update(crud.Context, *avatar.Record) (*avatar.Record, error) {
	return nil, notSupported(crud.OpUpdate)
}

func (s *AvatarService) UpdateBatch(crud.Context, []*avatar.Record) ([]*avatar.Record, error) {
	return nil, notSupported(crud.OpUpdateBatch)
}

// Delete removes one avatar through the delete command so hooks, survivor
// promotion, and blob cleanup all run.
func (s *AvatarService) Delete(ctx crud.Context, record *avatar.Record) error {
	if s.deleteCmd == nil {
		return goerrors.New("avatar delete disabled", goerrors.CategoryInternal).WithCode(goerrors.CodeInternal)
	}
	if record == nil || record.ID == uuid.Nil {
		return goerrors.New("invalid avatar id", goerrors.CategoryValidation).WithCode(goerrors.CodeBadRequest)
	}

	actor, target, err := s.resolveTarget(ctx, record.UserID)
	if err != nil {
		return err
	}

	if err := s.deleteCmd.Execute(ctx.UserContext(), command.AvatarDeleteInput{
		UserID:    target.ID,
		Actor:     actor,
		AvatarIDs: []uuid.UUID{record.ID},
	}); err != nil {
		return err
	}
	s.emit(ctx, types.ActivityRecord{
		UserID:     target.ID,
		ActorID:    actor.ID,
		Verb:       "avatar.api_deleted",
		ObjectType: "avatar",
		ObjectID:   record.ID.String(),
		Channel:    "avatars",
	})
	return nil
}

func (s *AvatarService) DeleteBatch(ctx crud.Context, records []*avatar.Record) error {
	for _, record := range records {
		if err := s.Delete(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

// Index lists the caller's avatar set, or another user's when user_id is
// supplied and the policy allows it.
func (s *AvatarService) Index(ctx crud.Context, _ []repository.SelectCriteria) ([]*avatar.Record, int, error) {
	if s.setQuery == nil {
		return nil, 0, goerrors.New("avatar set query unavailable", goerrors.CategoryInternal).WithCode(goerrors.CodeInternal)
	}

	userID := queryUUID(ctx, "user_id")
	actor, target, err := s.resolveTarget(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	set, err := s.setQuery.Query(ctx.UserContext(), query.AvatarSetInput{
		UserID: target.ID,
		Actor:  actor,
	})
	if err != nil {
		return nil, 0, err
	}

	records := make([]*avatar.Record, 0, len(set.Avatars))
	for _, av := range set.Avatars {
		records = append(records, avatar.FromAvatar(av))
	}
	return records, len(records), nil
}

// Show fetches one avatar owned by the caller (or a user the caller manages).
func (s *AvatarService) Show(ctx crud.Context, id string, _ []repository.SelectCriteria) (*avatar.Record, error) {
	if s.repo == nil {
		return nil, goerrors.New("avatar repository missing", goerrors.CategoryInternal).WithCode(goerrors.CodeInternal)
	}
	avatarID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, goerrors.New("invalid avatar id", goerrors.CategoryValidation).WithCode(goerrors.CodeBadRequest)
	}

	userID := queryUUID(ctx, "user_id")
	_, target, err := s.resolveTarget(ctx, userID)
	if err != nil {
		return nil, err
	}

	av, err := s.repo.GetByID(ctx.UserContext(), target.ID, avatarID)
	if err != nil {
		return nil, err
	}
	if av == nil {
		return nil, goerrors.New("avatar not found", goerrors.CategoryNotFound).WithCode(goerrors.CodeNotFound)
	}
	return avatar.FromAvatar(*av), nil
}

// resolveTarget authenticates the caller and authorizes access to the target
// user's avatars. A nil target falls back to the caller itself.
func (s *AvatarService) resolveTarget(ctx crud.Context, userID uuid.UUID) (types.ActorRef, types.UserRef, error) {
	if s.actor == nil {
		return types.ActorRef{}, types.UserRef{}, goerrors.New("actor resolver missing", goerrors.CategoryInternal).WithCode(goerrors.CodeInternal)
	}
	actor, err := s.actor.Resolve(ctx.UserContext())
	if err != nil || actor.ID == uuid.Nil {
		return types.ActorRef{}, types.UserRef{}, goerrors.New("authentication required", goerrors.CategoryAuth).WithCode(goerrors.CodeUnauthorized)
	}

	if userID == uuid.Nil {
		userID = actor.ID
	}
	target := types.UserRef{ID: userID}
	if err := s.policy.Authorize(ctx.UserContext(), actor, target); err != nil {
		return types.ActorRef{}, types.UserRef{}, goerrors.New("avatar access denied", goerrors.CategoryAuthz).WithCode(goerrors.CodeForbidden)
	}
	return actor, target, nil
}

func (s *AvatarService) emit(ctx crud.Context, record types.ActivityRecord) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.Emit(ctx.UserContext(), record); err != nil {
		s.logger.Error("activity emit failed", err, "verb", record.Verb)
	}
}

func queryUUID(ctx crud.Context, key string) uuid.UUID {
	raw := strings.TrimSpace(ctx.Query(key))
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
