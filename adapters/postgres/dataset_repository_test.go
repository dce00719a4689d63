package postgres

import (
	"context"
	"testing"
	"time"

	"edascope/domain/core"
	"edascope/domain/dataset"
	"edascope/internal/testkit"
	"edascope/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) ports.DatasetRepository {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo := NewDatasetRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestDatasetRepository_RecordAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	info := dataset.NewDatasetInfo(testkit.ChurnedTable(), "upload")
	require.NoError(t, repo.Record(ctx, info))

	got, err := repo.Get(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)
	assert.Equal(t, "churn", got.Name)
	assert.Equal(t, "upload", got.Source)
	assert.Equal(t, 6, got.RowCount)
	assert.Equal(t, 4, got.ColumnCount)
	assert.InDelta(t, info.MissingRate, got.MissingRate, 1e-12)
	assert.Equal(t, info.Fingerprint, got.Fingerprint)
	assert.Equal(t, info.Columns, got.Columns)
	assert.WithinDuration(t, info.CreatedAt, got.CreatedAt, time.Second)
}

func TestDatasetRepository_GetMissing(t *testing.T) {
	_, err := newTestRepository(t).Get(context.Background(), core.NewDatasetID())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDatasetRepository_RecordRejectsEmptyID(t *testing.T) {
	err := newTestRepository(t).Record(context.Background(), &dataset.DatasetInfo{})
	assert.ErrorIs(t, err, core.ErrInvalidDataset)
}

func TestDatasetRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tables := []*dataset.Table{testkit.ChurnedTable(), testkit.IdenticalTable(), testkit.SignedTable()}
	for i, table := range tables {
		info := dataset.NewDatasetInfo(table, "file")
		info.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Record(ctx, info))
	}

	all, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "signed", all[0].Name)
	assert.Equal(t, "identical", all[1].Name)
	assert.Equal(t, "churn", all[2].Name)

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "identical", page[0].Name)
}

func TestDatasetRepository_FindByFingerprint(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	table := testkit.RegionPriceTable()
	info := dataset.NewDatasetInfo(table, "file")
	require.NoError(t, repo.Record(ctx, info))

	got, err := repo.FindByFingerprint(ctx, table.Fingerprint())
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)

	_, err = repo.FindByFingerprint(ctx, testkit.ChurnedTable().Fingerprint())
	assert.ErrorIs(t, err, core.ErrNotFound)
}
