package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netspawn/internal/repository"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleRun() *repository.RunRecord {
	return &repository.RunRecord{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		Sources:         []string{"flows.csv", "export.jsonl"},
		HostCount:       12,
		ConnectionCount: 30,
		SubnetCount:     2,
		Roles:           map[string]int{"PLC_MODBUS": 1, "CLIENT": 11},
		ArtifactDir:     "/tmp/out",
	}
}

func TestSaveAndGetRun(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	run := sampleRun()
	require.NoError(t, repo.SaveRun(ctx, run))

	got, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Sources, got.Sources)
	assert.Equal(t, run.Roles, got.Roles)
	assert.Equal(t, run.HostCount, got.HostCount)
	assert.WithinDuration(t, run.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestGetRunNotFound(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRuns(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	older := sampleRun()
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := sampleRun()
	require.NoError(t, repo.SaveRun(ctx, older))
	require.NoError(t, repo.SaveRun(ctx, newer))

	runs, err := repo.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, older.ID, runs[1].ID)

	t.Run("limit applies", func(t *testing.T) {
		runs, err := repo.ListRuns(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, runs, 1)
	})
}

func TestDuplicateIDRejected(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	run := sampleRun()
	require.NoError(t, repo.SaveRun(ctx, run))
	assert.Error(t, repo.SaveRun(ctx, run))
}
