package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"edascope/domain/core"
	"edascope/domain/dataset"
	"edascope/internal/migration"
	"edascope/ports"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
)

const selectDatasets = `SELECT id, name, source, row_count, column_count, missing_rate,
	fingerprint, columns, created_at FROM datasets`

// datasetRow is the flat database shape of a dataset.DatasetInfo
type datasetRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Source      string    `db:"source"`
	RowCount    int       `db:"row_count"`
	ColumnCount int       `db:"column_count"`
	MissingRate float64   `db:"missing_rate"`
	Fingerprint string    `db:"fingerprint"`
	Columns     string    `db:"columns"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r datasetRow) toInfo() (*dataset.DatasetInfo, error) {
	info := &dataset.DatasetInfo{
		ID:          core.DatasetID(r.ID),
		Name:        r.Name,
		Source:      r.Source,
		RowCount:    r.RowCount,
		ColumnCount: r.ColumnCount,
		MissingRate: r.MissingRate,
		Fingerprint: core.Hash(r.Fingerprint),
		CreatedAt:   r.CreatedAt,
	}
	if err := json.Unmarshal([]byte(r.Columns), &info.Columns); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal columns of dataset %s", r.ID)
	}
	return info, nil
}

// datasetRepository implements ports.DatasetRepository. Queries are written
// with ? placeholders and rebound for the driver, so the same repository
// runs on postgres and sqlite.
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

// Migrate creates the datasets table
func (r *datasetRepository) Migrate(ctx context.Context) error {
	return migration.NewRunner().Run(ctx, r.db)
}

// Record inserts a dataset
func (r *datasetRepository) Record(ctx context.Context, info *dataset.DatasetInfo) error {
	if info == nil || info.ID == "" {
		return core.NewValidationError("dataset", "missing id")
	}
	columnsJSON, err := json.Marshal(info.Columns)
	if err != nil {
		return errors.Wrap(err, "failed to marshal columns")
	}

	query := r.db.Rebind(`INSERT INTO datasets (
		id, name, source, row_count, column_count, missing_rate, fingerprint, columns, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = r.db.ExecContext(ctx, query,
		info.ID.String(), info.Name, info.Source, info.RowCount, info.ColumnCount,
		info.MissingRate, info.Fingerprint.String(), string(columnsJSON), info.CreatedAt.UTC(),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to record dataset %s", info.ID)
	}
	return nil
}

// Get retrieves a dataset by its ID
func (r *datasetRepository) Get(ctx context.Context, id core.DatasetID) (*dataset.DatasetInfo, error) {
	var row datasetRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(selectDatasets+` WHERE id = ?`), id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(core.ErrNotFound, "dataset %s", id)
		}
		return nil, errors.Wrap(err, "failed to get dataset")
	}
	return row.toInfo()
}

// List returns datasets newest first
func (r *datasetRepository) List(ctx context.Context, limit, offset int) ([]*dataset.DatasetInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rows []datasetRow
	query := r.db.Rebind(selectDatasets + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, errors.Wrap(err, "failed to query datasets")
	}

	infos := make([]*dataset.DatasetInfo, 0, len(rows))
	for _, row := range rows {
		info, err := row.toInfo()
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// FindByFingerprint returns the newest dataset with the given content hash
func (r *datasetRepository) FindByFingerprint(ctx context.Context, fp core.Hash) (*dataset.DatasetInfo, error) {
	var row datasetRow
	query := r.db.Rebind(selectDatasets + ` WHERE fingerprint = ? ORDER BY created_at DESC LIMIT 1`)
	if err := r.db.GetContext(ctx, &row, query, fp.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(core.ErrNotFound, "dataset with fingerprint %s", fp.Short())
		}
		return nil, errors.Wrap(err, "failed to find dataset")
	}
	return row.toInfo()
}
