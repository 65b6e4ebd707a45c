package activity

import (
	"context"
	"database/sql"
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

func TestRepository_LogAndList(t *testing.T) {
	ctx := context.Background()
	db := newTestActivityDB(t)
	applyActivityDDL(t, db)

	store, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	event := types.ActivityRecord{
		UserID:     uuid.New(),
		ActorID:    uuid.New(),
		Verb:       "avatar.uploaded",
		ObjectType: "avatar",
		ObjectID:   "abc",
		Channel:    "avatars",
		Data: map[string]any{
			"storage_key":  "avatars/u/a.png",
			"content_type": "image/png",
		},
	}
	require.NoError(t, store.Log(ctx, event))

	page, err := store.ListActivity(ctx, types.ActivityFilter{
		Verbs:      []string{"avatar.uploaded"},
		Pagination: types.Pagination{Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	require.Equal(t, "avatar.uploaded", page.Records[0].Verb)
	require.Equal(t, "image/png", page.Records[0].Data["content_type"])
}

func TestRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	db := newTestActivityDB(t)
	applyActivityDDL(t, db)
	store, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	userID := uuid.New()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	verbs := []string{"avatar.uploaded", "avatar.primary_changed", "avatar.deleted"}
	for i, verb := range verbs {
		require.NoError(t, store.Log(ctx, types.ActivityRecord{
			UserID:     userID,
			Verb:       verb,
			Channel:    "avatars",
			OccurredAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, store.Log(ctx, types.ActivityRecord{
		UserID:  uuid.New(),
		Verb:    "avatar.uploaded",
		Channel: "avatars",
	}))

	page, err := store.ListActivity(ctx, types.ActivityFilter{
		UserID:     userID,
		Pagination: types.Pagination{Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, page.Records, 3)

	page, err = store.ListActivity(ctx, types.ActivityFilter{
		UserID:     userID,
		Since:      base.Add(90 * time.Minute),
		Pagination: types.Pagination{Limit: 10},
	})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	require.Equal(t, "avatar.deleted", page.Records[0].Verb)

	page, err = store.ListActivity(ctx, types.ActivityFilter{
		UserID:     userID,
		Pagination: types.Pagination{Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, page.Records, 2)
	require.Equal(t, 3, page.Total)
	require.True(t, page.HasMore)
}

func TestRepository_LogMasksSensitiveData(t *testing.T) {
	ctx := context.Background()
	db := newTestActivityDB(t)
	applyActivityDDL(t, db)
	store, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	require.NoError(t, store.Log(ctx, types.ActivityRecord{
		UserID:  uuid.New(),
		Verb:    "avatar.uploaded",
		Channel: "avatars",
		Data: map[string]any{
			"storage_key": "avatars/u/a.png",
			"ip":          "10.0.0.1",
			"token":       "abcd1234",
		},
	}))

	page, err := store.ListActivity(ctx, types.ActivityFilter{
		Verbs:      []string{"avatar.uploaded"},
		Pagination: types.Pagination{Limit: 1},
	})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	data := page.Records[0].Data
	require.Equal(t, "avatars/u/a.png", data["storage_key"])
	require.NotEqual(t, "10.0.0.1", data["ip"])
	require.NotEqual(t, "abcd1234", data["token"])
}

func TestSanitizeRecord(t *testing.T) {
	record := types.ActivityRecord{
		Verb: "avatar.uploaded",
		Data: map[string]any{
			"storage_key": "avatars/u/a.png",
			"secret":      "hunter2",
		},
	}

	sanitized := SanitizeRecord(DefaultMasker(), record)
	require.NotEqual(t, "hunter2", sanitized.Data["secret"])
	require.Equal(t, "hunter2", record.Data["secret"])
}

func newTestActivityDB(t *testing.T) *bun.DB {
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

func applyActivityDDL(t *testing.T, db *bun.DB) {
	content, err := os.ReadFile("../data/sql/migrations/sqlite/00002_avatar_activity.up.sql")
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
