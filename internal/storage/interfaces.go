package storage

import (
	"context"

	"wallet-feature-lab/internal/domain"
)

// FeatureVectorStore provides access to feature_vectors storage.
// Vectors are keyed by (address, kind, schema_version) and are append-only.
type FeatureVectorStore interface {
	// Insert adds a vector. Returns ErrDuplicateKey if the key exists.
	Insert(ctx context.Context, v *domain.FeatureVector) error

	// InsertAll writes every vector whose key is not stored yet, all or
	// nothing. Stored keys are skipped. Returns the number written.
	InsertAll(ctx context.Context, vectors []*domain.FeatureVector) (int, error)

	// GetByAddress retrieves the vector of the current schema version for
	// (address, kind). Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string, kind domain.TransferKind) (*domain.FeatureVector, error)

	// ListByKind retrieves all vectors of a kind, ordered by address ASC.
	ListByKind(ctx context.Context, kind domain.TransferKind) ([]*domain.FeatureVector, error)
}
