package repository

import (
	"context"

	"subharvest/domain/model"
)

// IVideoRepository defines the persistence capability shared by the
// Solr-backed and file-backed stores. Save must be idempotent: records whose
// identifier already exists in the backing store are never rewritten or
// duplicated by a later call with overlapping data.
type IVideoRepository interface {
	// Save persists the records of the batch that are not already present,
	// keyed by record ID.
	Save(ctx context.Context, batch []model.VideoRecord) error
	// Search returns one page of records matching the free-text query.
	Search(ctx context.Context, query string, limit, offset int) ([]model.VideoRecord, error)
	// GetTotalResults returns the total number of records matching the query.
	GetTotalResults(ctx context.Context, query string) (int64, error)
}
