package memory

import (
	"context"
	"sort"
	"sync"

	"wallet-feature-lab/internal/domain"
	"wallet-feature-lab/internal/features"
	"wallet-feature-lab/internal/storage"
)

// FeatureVectorStore is an in-memory implementation of storage.FeatureVectorStore.
type FeatureVectorStore struct {
	mu   sync.RWMutex
	data map[string]*domain.FeatureVector // keyed by (address, kind, schema_version)
}

// NewFeatureVectorStore creates a new in-memory feature vector store.
func NewFeatureVectorStore() *FeatureVectorStore {
	return &FeatureVectorStore{
		data: make(map[string]*domain.FeatureVector),
	}
}

// Insert adds a vector. Returns ErrDuplicateKey if the key exists.
func (s *FeatureVectorStore) Insert(_ context.Context, v *domain.FeatureVector) error {
	if err := storage.ValidateVector(v); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := storage.VectorKey(v.Address, v.Kind, v.SchemaVersion)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[key] = storage.CloneVector(v)
	return nil
}

// InsertAll stores every vector not present yet under one lock.
func (s *FeatureVectorStore) InsertAll(_ context.Context, vectors []*domain.FeatureVector) (int, error) {
	if err := storage.ValidateVectors(vectors); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	written := 0
	for _, v := range vectors {
		key := storage.VectorKey(v.Address, v.Kind, v.SchemaVersion)
		if _, exists := s.data[key]; exists {
			continue
		}
		s.data[key] = storage.CloneVector(v)
		written++
	}
	return written, nil
}

// GetByAddress retrieves the current-schema vector for (address, kind).
func (s *FeatureVectorStore) GetByAddress(_ context.Context, address string, kind domain.TransferKind) (*domain.FeatureVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[storage.VectorKey(address, kind, features.SchemaVersion)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return storage.CloneVector(v), nil
}

// ListByKind retrieves all vectors of a kind, ordered by address ASC.
func (s *FeatureVectorStore) ListByKind(_ context.Context, kind domain.TransferKind) ([]*domain.FeatureVector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FeatureVector
	for _, v := range s.data {
		if v.Kind == kind {
			result = append(result, storage.CloneVector(v))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Address != result[j].Address {
			return result[i].Address < result[j].Address
		}
		return result[i].SchemaVersion < result[j].SchemaVersion
	})

	return result, nil
}

var _ storage.FeatureVectorStore = (*FeatureVectorStore)(nil)
