package avatar

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-avatars/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed avatar repository. Either DB or
// Repository must be provided; primary-flag mutations run transactionally
// when DB is available.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

type avatarStore interface {
	repository.Repository[*Record]
}

// Repository implements types.AvatarRepository using Bun.
type Repository struct {
	avatarStore
	db    *bun.DB
	clock types.Clock
	idGen types.IDGenerator
}

// NewRepository constructs the default avatar repository.
func NewRepository(cfg RepositoryConfig, options ...RepositoryOption) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("avatar: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Record]{
			NewRecord: func() *Record { return &Record{} },
			GetID: func(rec *Record) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *Record, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
		})
	}

	opts := applyRepositoryOptions(options)
	if opts.CacheEnabled {
		if _, ok := repo.(*repositorycache.CachedRepository[*Record]); !ok {
			cacheCfg := cache.DefaultConfig()
			if opts.CacheConfig != nil {
				cacheCfg = *opts.CacheConfig
			}
			cacheService, err := cache.NewCacheService(cacheCfg)
			if err != nil {
				return nil, err
			}
			repo = repositorycache.New(repo, cacheService, cache.NewDefaultKeySerializer())
		}
	}

	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}

	return &Repository{
		avatarStore: repo,
		db:          cfg.DB,
		clock:       clock,
		idGen:       idGen,
	}, nil
}

var _ types.AvatarRepository = (*Repository)(nil)

// GetByID returns the avatar matching id within the user's own set.
func (r *Repository) GetByID(ctx context.Context, userID, avatarID uuid.UUID) (*types.Avatar, error) {
	if userID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	rec, err := r.Get(ctx, selectID(avatarID), selectUser(userID))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, types.ErrAvatarNotFound
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// GetPrimary returns the user's primary avatar, or nil when none exists.
func (r *Repository) GetPrimary(ctx context.Context, userID uuid.UUID) (*types.Avatar, error) {
	if userID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	rec, err := r.Get(ctx, selectUser(userID), func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("is_primary = ?", true).OrderExpr("updated_at DESC").Limit(1)
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// ListForUser returns up to limit avatars ordered primary-first, newest next.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]types.Avatar, error) {
	if userID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	criteria := []repository.SelectCriteria{
		selectUser(userID),
		func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.OrderExpr("is_primary DESC, created_at DESC, id ASC")
			if limit > 0 {
				q = q.Limit(limit)
			}
			return q
		},
	}
	rows, _, err := r.List(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	out := make([]types.Avatar, 0, len(rows))
	for _, row := range rows {
		out = append(out, *toDomain(row))
	}
	return out, nil
}

// CountForUser returns how many avatars the user currently stores.
func (r *Repository) CountForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, types.ErrUserIDRequired
	}
	_, total, err := r.List(ctx, selectUser(userID))
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Create inserts the avatar record. When the record is primary, every other
// avatar owned by the same user is demoted in the same transaction.
func (r *Repository) Create(ctx context.Context, avatar types.Avatar) (*types.Avatar, error) {
	if avatar.UserID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	now := r.clock.Now()
	rec := fromDomain(avatar)
	if rec.ID == uuid.Nil {
		rec.ID = r.idGen.UUID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	if !rec.Primary || r.db == nil {
		if rec.Primary {
			if err := r.demoteOthers(ctx, rec.UserID, rec.ID, rec.UpdatedBy, now); err != nil {
				return nil, err
			}
		}
		created, err := r.avatarStore.Create(ctx, rec)
		if err != nil {
			return nil, err
		}
		return toDomain(created), nil
	}

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model((*Record)(nil)).
			Set("is_primary = ?", false).
			Set("updated_at = ?", now).
			Where("user_id = ?", rec.UserID).
			Where("is_primary = ?", true).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(rec).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toDomain(rec), nil
}

// SetPrimary promotes the given avatar and demotes the user's other avatars
// atomically.
func (r *Repository) SetPrimary(ctx context.Context, userID, avatarID uuid.UUID, actor uuid.UUID) (*types.Avatar, error) {
	if userID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	now := r.clock.Now()

	if r.db == nil {
		rec, err := r.Get(ctx, selectID(avatarID), selectUser(userID))
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return nil, types.ErrAvatarNotFound
			}
			return nil, err
		}
		if err := r.demoteOthers(ctx, userID, avatarID, actor, now); err != nil {
			return nil, err
		}
		rec.Primary = true
		rec.UpdatedAt = now
		rec.UpdatedBy = actor
		updated, err := r.Update(ctx, rec)
		if err != nil {
			return nil, err
		}
		return toDomain(updated), nil
	}

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model((*Record)(nil)).
			Set("is_primary = ?", false).
			Set("updated_at = ?", now).
			Where("user_id = ?", userID).
			Where("is_primary = ?", true).
			Where("id != ?", avatarID).
			Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewUpdate().
			Model((*Record)(nil)).
			Set("is_primary = ?", true).
			Set("updated_at = ?", now).
			Set("updated_by = ?", actor).
			Where("id = ?", avatarID).
			Where("user_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return types.ErrAvatarNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, userID, avatarID)
}

// DeleteByIDs removes every avatar in ids owned by the user in one batch.
func (r *Repository) DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if userID == uuid.Nil {
		return types.ErrUserIDRequired
	}
	if len(ids) == 0 {
		return nil
	}
	return r.DeleteWhere(ctx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
		return q.Where("user_id = ?", userID).Where("id IN (?)", bun.In(ids))
	})
}

func (r *Repository) demoteOthers(ctx context.Context, userID, keep uuid.UUID, actor uuid.UUID, now time.Time) error {
	rows, _, err := r.List(ctx, selectUser(userID), func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("is_primary = ?", true)
	})
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.ID == keep {
			continue
		}
		row.Primary = false
		row.UpdatedAt = now
		row.UpdatedBy = actor
		if _, err := r.Update(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func selectUser(userID uuid.UUID) repository.SelectCriteria {
	return repository.SelectBy("user_id", "=", userID.String())
}

func selectID(id uuid.UUID) repository.SelectCriteria {
	return repository.SelectBy("id", "=", id.String())
}

func fromDomain(a types.Avatar) *Record {
	return &Record{
		ID:          a.ID,
		UserID:      a.UserID,
		StorageKey:  a.StorageKey,
		ContentType: a.ContentType,
		Primary:     a.Primary,
		CreatedAt:   a.CreatedAt,
		CreatedBy:   a.CreatedBy,
		UpdatedAt:   a.UpdatedAt,
		UpdatedBy:   a.UpdatedBy,
	}
}

func toDomain(rec *Record) *types.Avatar {
	if rec == nil {
		return nil
	}
	return &types.Avatar{
		ID:          rec.ID,
		UserID:      rec.UserID,
		StorageKey:  rec.StorageKey,
		ContentType: rec.ContentType,
		Primary:     rec.Primary,
		CreatedAt:   rec.CreatedAt,
		CreatedBy:   rec.CreatedBy,
		UpdatedAt:   rec.UpdatedAt,
		UpdatedBy:   rec.UpdatedBy,
	}
}
