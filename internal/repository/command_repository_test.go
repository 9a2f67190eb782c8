package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"panel-link/internal/config"
	"panel-link/internal/database"
	"panel-link/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newPostgresRepository migrates the database named by PANEL_LINK_TEST_DATABASE_DSN
// and returns a repository over an empty command_history table
func newPostgresRepository(t *testing.T) (CommandRepository, *database.DB) {
	t.Helper()
	dsn := os.Getenv("PANEL_LINK_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("PANEL_LINK_TEST_DATABASE_DSN not set")
	}
	ctx := context.Background()

	db, err := database.Connect(ctx, dsn, &config.DatabaseConfig{MaxOpenConns: 4, MaxIdleConns: 2, MaxLifetime: time.Minute}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// Migrating after Connect must leave db usable
	require.NoError(t, database.NewMigrator(dsn, zap.NewNop()).Up())
	require.NoError(t, db.Health(ctx))

	_, err = db.ExecContext(ctx, `DELETE FROM command_history`)
	require.NoError(t, err)

	return NewCommandRepository(db, zap.NewNop()), db
}

func TestCommandRepository_CreateAndGet(t *testing.T) {
	repo, _ := newPostgresRepository(t)
	ctx := context.Background()

	cmd, err := model.VideoSelect("7", 2)
	require.NoError(t, err)
	r := model.NewCommandRecord(cmd, "/dev/ttyACM0", nil)
	r.SentAt = r.SentAt.Truncate(time.Microsecond)
	require.NoError(t, repo.Create(ctx, r))

	got, err := repo.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "7", got.CommandID)
	assert.Equal(t, model.CmdVideoSelect, got.Cmd)
	assert.Equal(t, model.CommandStatusSent, got.Status)
	assert.Nil(t, got.ErrorMessage)
	assert.EqualValues(t, 2, got.Args["ch"])
	assert.True(t, r.SentAt.Equal(got.SentAt))

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommandRepository_ListNewestFirstWithFilters(t *testing.T) {
	repo, _ := newPostgresRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, record(model.CmdTestBeep, "/dev/ttyACM0", base, nil)))
	require.NoError(t, repo.Create(ctx, record(model.CmdVideoSelect, "/dev/ttyACM0", base.Add(time.Second), nil)))
	require.NoError(t, repo.Create(ctx, record(model.CmdVideoSelect, "/dev/ttyUSB0", base.Add(2*time.Second), errors.New("write failed"))))

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "/dev/ttyUSB0", all[0].Port)
	assert.Equal(t, model.CmdTestBeep, all[2].Cmd)

	video, err := repo.List(ctx, &CommandFilter{Cmd: model.CmdVideoSelect})
	require.NoError(t, err)
	assert.Len(t, video, 2)

	failed, err := repo.List(ctx, &CommandFilter{Status: model.CommandStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.NotNil(t, failed[0].ErrorMessage)
	assert.Equal(t, "write failed", *failed[0].ErrorMessage)

	limited, err := repo.List(ctx, &CommandFilter{Port: "/dev/ttyACM0", Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, model.CmdVideoSelect, limited[0].Cmd)
}

func TestCommandRepository_DeleteOlderThan(t *testing.T) {
	repo, db := newPostgresRepository(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, record(model.CmdTestBeep, "/dev/ttyACM0", now.Add(-2*time.Hour), nil)))
	require.NoError(t, repo.Create(ctx, record(model.CmdTestBeep, "/dev/ttyACM0", now, nil)))

	deleted, err := repo.DeleteOlderThan(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	require.NoError(t, db.Health(ctx))
}
