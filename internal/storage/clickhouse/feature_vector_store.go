package clickhouse

import (
	"context"
	"fmt"
	"strings"

	"wallet-feature-lab/internal/domain"
	"wallet-feature-lab/internal/features"
	"wallet-feature-lab/internal/storage"
)

// FeatureVectorStore implements storage.FeatureVectorStore using ClickHouse.
// Vectors are stored long-form, one row per column.
type FeatureVectorStore struct {
	conn *Conn
}

// NewFeatureVectorStore creates a new FeatureVectorStore.
func NewFeatureVectorStore(conn *Conn) *FeatureVectorStore {
	return &FeatureVectorStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureVectorStore = (*FeatureVectorStore)(nil)

// Insert adds all columns of a vector in one batch.
// Returns ErrDuplicateKey if (address, kind, schema_version) exists.
func (s *FeatureVectorStore) Insert(ctx context.Context, v *domain.FeatureVector) error {
	if err := storage.ValidateVector(v); err != nil {
		return err
	}

	exists, err := s.exists(ctx, v.Address, v.Kind, v.SchemaVersion)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	return s.send(ctx, []*domain.FeatureVector{v})
}

// InsertAll writes the vectors not stored yet as a single INSERT block.
func (s *FeatureVectorStore) InsertAll(ctx context.Context, vectors []*domain.FeatureVector) (int, error) {
	if err := storage.ValidateVectors(vectors); err != nil {
		return 0, err
	}

	var missing []*domain.FeatureVector
	for _, v := range vectors {
		exists, err := s.exists(ctx, v.Address, v.Kind, v.SchemaVersion)
		if err != nil {
			return 0, fmt.Errorf("check exists: %w", err)
		}
		if !exists {
			missing = append(missing, v)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	if err := s.send(ctx, missing); err != nil {
		return 0, err
	}
	return len(missing), nil
}

// send appends every column of vectors to one batch.
func (s *FeatureVectorStore) send(ctx context.Context, vectors []*domain.FeatureVector) error {
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO feature_values (
			address, kind, schema_version, categorical,
			position, feature_name, value
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, v := range vectors {
		categorical := uint8(0)
		if v.Categorical {
			categorical = 1
		}

		for i, f := range v.Features {
			err = batch.Append(
				strings.ToLower(v.Address), string(v.Kind), v.SchemaVersion, categorical,
				uint16(i), f.Name, f.Value,
			)
			if err != nil {
				batch.Abort()
				return fmt.Errorf("append to batch: %w", err)
			}
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByAddress retrieves the current-schema vector for (address, kind).
// Returns ErrNotFound if not exists.
func (s *FeatureVectorStore) GetByAddress(ctx context.Context, address string, kind domain.TransferKind) (*domain.FeatureVector, error) {
	query := `
		SELECT address, kind, schema_version, categorical, feature_name, value
		FROM feature_values
		WHERE address = ? AND kind = ? AND schema_version = ?
		ORDER BY position ASC
	`

	rows, err := s.conn.Query(ctx, query, strings.ToLower(address), string(kind), features.SchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("query by address: %w", err)
	}
	defer rows.Close()

	vectors, err := scanFeatureVectors(rows)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, storage.ErrNotFound
	}
	return vectors[0], nil
}

// ListByKind retrieves all vectors of a kind, ordered by address ASC.
func (s *FeatureVectorStore) ListByKind(ctx context.Context, kind domain.TransferKind) ([]*domain.FeatureVector, error) {
	query := `
		SELECT address, kind, schema_version, categorical, feature_name, value
		FROM feature_values
		WHERE kind = ?
		ORDER BY address ASC, schema_version ASC, position ASC
	`

	rows, err := s.conn.Query(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query by kind: %w", err)
	}
	defer rows.Close()

	return scanFeatureVectors(rows)
}

// exists checks if any column of the vector key exists.
func (s *FeatureVectorStore) exists(ctx context.Context, address string, kind domain.TransferKind, schemaVersion string) (bool, error) {
	query := `
		SELECT count(*) FROM feature_values
		WHERE address = ? AND kind = ? AND schema_version = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, strings.ToLower(address), string(kind), schemaVersion).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanFeatureVectors folds position-ordered rows into vectors.
func scanFeatureVectors(rows chRows) ([]*domain.FeatureVector, error) {
	var vectors []*domain.FeatureVector
	var current *domain.FeatureVector

	for rows.Next() {
		var (
			address, kind, schemaVersion string
			categorical                  uint8
			f                            domain.Feature
		)
		if err := rows.Scan(&address, &kind, &schemaVersion, &categorical, &f.Name, &f.Value); err != nil {
			return nil, fmt.Errorf("scan feature values row: %w", err)
		}

		if current == nil || current.Address != address || current.SchemaVersion != schemaVersion {
			current = &domain.FeatureVector{
				Address:       address,
				Kind:          domain.TransferKind(kind),
				SchemaVersion: schemaVersion,
				Categorical:   categorical == 1,
			}
			vectors = append(vectors, current)
		}
		current.Features = append(current.Features, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature values rows: %w", err)
	}

	return vectors, nil
}

// chRows is the subset of driver.Rows used by scanners.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}
