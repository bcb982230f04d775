package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"subharvest/domain/model"
	"subharvest/infrastructure/logger"
)

// JSONRepository persists video records as a single JSON array in one file.
// The snapshot is append-only at the API level but rewritten wholesale on
// every save that adds records.
type JSONRepository struct {
	path string
}

// NewJSONRepository creates a repository writing to the given snapshot path.
func NewJSONRepository(path string) *JSONRepository {
	return &JSONRepository{path: path}
}

// Save appends the records of the batch whose IDs are not yet in the
// snapshot. When every record is already present the file is left untouched,
// which makes replaying the same batch a no-op.
func (r *JSONRepository) Save(ctx context.Context, batch []model.VideoRecord) error {
	existing, err := r.load()
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", r.path, err)
	}

	existingIDs := make(map[string]struct{}, len(existing))
	for _, record := range existing {
		existingIDs[record.ID] = struct{}{}
	}

	fresh := make([]model.VideoRecord, 0, len(batch))
	for _, record := range batch {
		if _, seen := existingIDs[record.ID]; seen {
			continue
		}
		existingIDs[record.ID] = struct{}{}
		fresh = append(fresh, record)
	}

	if len(fresh) == 0 {
		logger.GetLogger().WithField("path", r.path).Info("No new records to append")
		return nil
	}

	existing = append(existing, fresh...)
	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", r.path, err)
	}

	logger.GetLogger().WithField("path", r.path).WithField("appended", len(fresh)).Info("Records appended to snapshot")
	return nil
}

// Search returns one page of records whose serialized form contains the
// query, case-insensitively.
func (r *JSONRepository) Search(ctx context.Context, query string, limit, offset int) ([]model.VideoRecord, error) {
	matches, err := r.matches(query)
	if err != nil {
		return nil, err
	}
	if offset >= len(matches) {
		return []model.VideoRecord{}, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}

// GetTotalResults returns the number of records matching the query.
func (r *JSONRepository) GetTotalResults(ctx context.Context, query string) (int64, error) {
	matches, err := r.matches(query)
	if err != nil {
		return 0, err
	}
	return int64(len(matches)), nil
}

func (r *JSONRepository) matches(query string) ([]model.VideoRecord, error) {
	records, err := r.load()
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", r.path, err)
	}
	needle := strings.ToLower(query)
	matched := make([]model.VideoRecord, 0, len(records))
	for _, record := range records {
		serialized, err := json.Marshal(record)
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(string(serialized)), needle) {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

// load reads the snapshot, treating a missing file as an empty store.
func (r *JSONRepository) load() ([]model.VideoRecord, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.VideoRecord{}, nil
		}
		return nil, err
	}
	var records []model.VideoRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return records, nil
}
