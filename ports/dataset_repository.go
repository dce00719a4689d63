package ports

import (
	"context"

	"edascope/domain/core"
	"edascope/domain/dataset"
)

// DatasetRepository records the datasets loaded into sessions
type DatasetRepository interface {
	// Migrate creates the catalog table when absent
	Migrate(ctx context.Context) error

	Record(ctx context.Context, info *dataset.DatasetInfo) error
	Get(ctx context.Context, id core.DatasetID) (*dataset.DatasetInfo, error)
	List(ctx context.Context, limit, offset int) ([]*dataset.DatasetInfo, error)

	// FindByFingerprint returns the most recent record with the given content hash
	FindByFingerprint(ctx context.Context, fp core.Hash) (*dataset.DatasetInfo, error)
}
