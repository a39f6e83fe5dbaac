package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"wallet-feature-lab/internal/domain"
	"wallet-feature-lab/internal/features"
	"wallet-feature-lab/internal/storage"
)

// FeatureVectorStore implements storage.FeatureVectorStore using PostgreSQL.
type FeatureVectorStore struct {
	pool *Pool
}

// NewFeatureVectorStore creates a new FeatureVectorStore.
func NewFeatureVectorStore(pool *Pool) *FeatureVectorStore {
	return &FeatureVectorStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FeatureVectorStore = (*FeatureVectorStore)(nil)

// Insert adds a vector header and its columns in one transaction.
// Returns ErrDuplicateKey if (address, kind, schema_version) exists.
func (s *FeatureVectorStore) Insert(ctx context.Context, v *domain.FeatureVector) error {
	if err := storage.ValidateVector(v); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO feature_vectors (
			address, kind, schema_version, categorical, column_count
		) VALUES ($1, $2, $3, $4, $5)
	`, strings.ToLower(v.Address), string(v.Kind), v.SchemaVersion, v.Categorical, len(v.Features))
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert feature vector: %w", err)
	}

	if err := copyValues(ctx, tx, v); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// InsertAll writes the vectors not stored yet in one transaction.
func (s *FeatureVectorStore) InsertAll(ctx context.Context, vectors []*domain.FeatureVector) (int, error) {
	if err := storage.ValidateVectors(vectors); err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	written := 0
	for _, v := range vectors {
		tag, err := tx.Exec(ctx, `
			INSERT INTO feature_vectors (
				address, kind, schema_version, categorical, column_count
			) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (address, kind, schema_version) DO NOTHING
		`, strings.ToLower(v.Address), string(v.Kind), v.SchemaVersion, v.Categorical, len(v.Features))
		if err != nil {
			return 0, fmt.Errorf("insert feature vector: %w", err)
		}
		if tag.RowsAffected() == 0 {
			continue
		}
		if err := copyValues(ctx, tx, v); err != nil {
			return 0, err
		}
		written++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return written, nil
}

func copyValues(ctx context.Context, tx pgx.Tx, v *domain.FeatureVector) error {
	address := strings.ToLower(v.Address)
	rows := make([][]any, len(v.Features))
	for i, f := range v.Features {
		rows[i] = []any{address, string(v.Kind), v.SchemaVersion, i, f.Name, f.Value}
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"feature_values"},
		[]string{"address", "kind", "schema_version", "position", "feature_name", "value"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy feature values: %w", err)
	}
	return nil
}

// GetByAddress retrieves the current-schema vector for (address, kind).
// Returns ErrNotFound if not exists.
func (s *FeatureVectorStore) GetByAddress(ctx context.Context, address string, kind domain.TransferKind) (*domain.FeatureVector, error) {
	query := `
		SELECT v.address, v.kind, v.schema_version, v.categorical, f.feature_name, f.value
		FROM feature_vectors v
		JOIN feature_values f
			ON f.address = v.address AND f.kind = v.kind AND f.schema_version = v.schema_version
		WHERE v.address = lower($1) AND v.kind = $2 AND v.schema_version = $3
		ORDER BY f.position ASC
	`

	rows, err := s.pool.Query(ctx, query, address, string(kind), features.SchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("query feature vector: %w", err)
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
		SELECT v.address, v.kind, v.schema_version, v.categorical, f.feature_name, f.value
		FROM feature_vectors v
		JOIN feature_values f
			ON f.address = v.address AND f.kind = v.kind AND f.schema_version = v.schema_version
		WHERE v.kind = $1
		ORDER BY v.address ASC, v.schema_version ASC, f.position ASC
	`

	rows, err := s.pool.Query(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query feature vectors by kind: %w", err)
	}
	defer rows.Close()

	return scanFeatureVectors(rows)
}

// scanFeatureVectors folds position-ordered value rows into vectors.
// Rows of one vector must be contiguous.
func scanFeatureVectors(rows pgx.Rows) ([]*domain.FeatureVector, error) {
	var vectors []*domain.FeatureVector
	var current *domain.FeatureVector

	for rows.Next() {
		var (
			address, kind, schemaVersion string
			categorical                  bool
			f                            domain.Feature
		)
		if err := rows.Scan(&address, &kind, &schemaVersion, &categorical, &f.Name, &f.Value); err != nil {
			return nil, fmt.Errorf("scan feature value row: %w", err)
		}

		if current == nil || current.Address != address || current.SchemaVersion != schemaVersion {
			current = &domain.FeatureVector{
				Address:       address,
				Kind:          domain.TransferKind(kind),
				SchemaVersion: schemaVersion,
				Categorical:   categorical,
			}
			vectors = append(vectors, current)
		}
		current.Features = append(current.Features, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature value rows: %w", err)
	}

	return vectors, nil
}
