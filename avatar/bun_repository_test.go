package avatar

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-avatars/pkg/types"
)

func TestRepository_CreatePrimaryDemotesOthers(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	userID := uuid.New()

	first, err := repo.Create(ctx, types.Avatar{
		UserID:     userID,
		StorageKey: "avatars/a.png",
		Primary:    true,
	})
	require.NoError(t, err)
	require.True(t, first.Primary)

	second, err := repo.Create(ctx, types.Avatar{
		UserID:     userID,
		StorageKey: "avatars/b.png",
		Primary:    true,
	})
	require.NoError(t, err)
	require.True(t, second.Primary)

	reloaded, err := repo.GetByID(ctx, userID, first.ID)
	require.NoError(t, err)
	require.False(t, reloaded.Primary)

	primary, err := repo.GetPrimary(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, second.ID, primary.ID)
}

func TestRepository_GetPrimaryNoneIsNil(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	primary, err := repo.GetPrimary(ctx, uuid.New())
	require.NoError(t, err)
	require.Nil(t, primary)
}

func TestRepository_SetPrimary(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	userID := uuid.New()
	actor := uuid.New()

	first, err := repo.Create(ctx, types.Avatar{
		UserID:     userID,
		StorageKey: "avatars/a.png",
		Primary:    true,
	})
	require.NoError(t, err)
	second, err := repo.Create(ctx, types.Avatar{
		UserID:     userID,
		StorageKey: "avatars/b.png",
		Primary:    true,
	})
	require.NoError(t, err)

	promoted, err := repo.SetPrimary(ctx, userID, first.ID, actor)
	require.NoError(t, err)
	require.True(t, promoted.Primary)
	require.Equal(t, actor, promoted.UpdatedBy)

	demoted, err := repo.GetByID(ctx, userID, second.ID)
	require.NoError(t, err)
	require.False(t, demoted.Primary)

	t.Run("unknown avatar", func(t *testing.T) {
		_, err := repo.SetPrimary(ctx, userID, uuid.New(), actor)
		require.ErrorIs(t, err, types.ErrAvatarNotFound)
	})

	t.Run("other user's avatar", func(t *testing.T) {
		_, err := repo.SetPrimary(ctx, uuid.New(), first.ID, actor)
		require.ErrorIs(t, err, types.ErrAvatarNotFound)
	})
}

func TestRepository_ListForUserOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	userID := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	oldest, err := repo.Create(ctx, types.Avatar{
		UserID:     userID,
		StorageKey: "avatars/old.png",
		CreatedAt:  base,
	})
	require.NoError(t, err)
	newest, err := repo.Create(ctx, types.Avatar{
		UserID:     userID,
		StorageKey: "avatars/new.png",
		CreatedAt:  base.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	primary, err := repo.Create(ctx, types.Avatar{
		UserID:     userID,
		StorageKey: "avatars/primary.png",
		Primary:    true,
		CreatedAt:  base.Add(time.Hour),
	})
	require.NoError(t, err)

	avatars, err := repo.ListForUser(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, avatars, 3)
	require.Equal(t, primary.ID, avatars[0].ID)
	require.Equal(t, newest.ID, avatars[1].ID)
	require.Equal(t, oldest.ID, avatars[2].ID)

	capped, err := repo.ListForUser(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, capped, 2)
	require.Equal(t, primary.ID, capped[0].ID)

	count, err := repo.CountForUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestRepository_DeleteByIDsScopedToUser(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	owner := uuid.New()
	other := uuid.New()

	mine, err := repo.Create(ctx, types.Avatar{UserID: owner, StorageKey: "avatars/mine.png"})
	require.NoError(t, err)
	theirs, err := repo.Create(ctx, types.Avatar{UserID: other, StorageKey: "avatars/theirs.png"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByIDs(ctx, owner, []uuid.UUID{mine.ID, theirs.ID}))

	_, err = repo.GetByID(ctx, owner, mine.ID)
	require.ErrorIs(t, err, types.ErrAvatarNotFound)

	kept, err := repo.GetByID(ctx, other, theirs.ID)
	require.NoError(t, err)
	require.Equal(t, theirs.ID, kept.ID)
}

func TestRepository_GetByIDNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.GetByID(ctx, uuid.New(), uuid.New())
	require.True(t, errors.Is(err, types.ErrAvatarNotFound))
}

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db := newTestAvatarDB(t)
	applyAvatarDDL(t, db)
	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)
	return repo
}

func newTestAvatarDB(t *testing.T) *bun.DB {
	sqldb, err := sql.Open("sqlite3", ":memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	return db
}

func applyAvatarDDL(t *testing.T, db *bun.DB) {
	content, err := os.ReadFile("../data/sql/migrations/sqlite/00001_user_avatars.up.sql")
	require.NoError(t, err)
	for _, stmt := range splitStatements(string(content)) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func splitStatements(sql string) []string {
	lines := strings.Split(sql, "\n")
	var builder strings.Builder
	var statements []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		if strings.HasSuffix(line, ";") {
			statements = append(statements, strings.TrimSuffix(builder.String(), ";"))
			builder.Reset()
		} else {
			builder.WriteString(" ")
		}
	}
	if builder.Len() > 0 {
		statements = append(statements, builder.String())
	}
	return statements
}
