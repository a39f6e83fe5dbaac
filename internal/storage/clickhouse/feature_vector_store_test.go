package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-feature-lab/internal/domain"
	"wallet-feature-lab/internal/features"
	"wallet-feature-lab/internal/storage"
)

func TestFeatureVectorStore_InsertAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureVectorStore(conn)
	ctx := context.Background()

	v := &domain.FeatureVector{
		Address:       "0xabc",
		Kind:          domain.TransferKindToken,
		SchemaVersion: features.SchemaVersion,
		Categorical:   true,
		Features: []domain.Feature{
			{Name: features.ColTokenTotalTnxs, Value: 4},
			{Name: "ERC20_most_sent_token_None", Value: 1},
		},
	}
	require.NoError(t, store.Insert(ctx, v))

	got, err := store.GetByAddress(ctx, "0xABC", domain.TransferKindToken)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	// Duplicate
	err = store.Insert(ctx, v)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Missing kind
	_, err = store.GetByAddress(ctx, "0xabc", domain.TransferKindNative)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFeatureVectorStore_ListByKind(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureVectorStore(conn)
	ctx := context.Background()

	for _, addr := range []string{"0x02", "0x01"} {
		err := store.Insert(ctx, &domain.FeatureVector{
			Address:       addr,
			Kind:          domain.TransferKindNative,
			SchemaVersion: features.SchemaVersion,
			Features: []domain.Feature{
				{Name: features.ColSentTnx, Value: 1},
				{Name: features.ColReceivedTnx, Value: 2},
			},
		})
		require.NoError(t, err)
	}

	got, err := store.ListByKind(ctx, domain.TransferKindNative)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "0x01", got[0].Address)
	assert.Equal(t, "0x02", got[1].Address)
	assert.Equal(t, []float64{1, 2}, got[1].Values())
}

func TestFeatureVectorStore_InsertAll(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureVectorStore(conn)
	ctx := context.Background()

	vector := func(kind domain.TransferKind) *domain.FeatureVector {
		return &domain.FeatureVector{
			Address:       "0xabc",
			Kind:          kind,
			SchemaVersion: features.SchemaVersion,
			Features:      []domain.Feature{{Name: features.ColSentTnx, Value: 2}},
		}
	}

	require.NoError(t, store.Insert(ctx, vector(domain.TransferKindNative)))

	written, err := store.InsertAll(ctx, []*domain.FeatureVector{
		vector(domain.TransferKindNative),
		vector(domain.TransferKindToken),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	native, err := store.GetByAddress(ctx, "0xabc", domain.TransferKindNative)
	require.NoError(t, err)
	assert.Equal(t, 1, native.Len())

	_, err = store.GetByAddress(ctx, "0xabc", domain.TransferKindToken)
	require.NoError(t, err)

	_, err = store.InsertAll(ctx, []*domain.FeatureVector{vector(domain.TransferKindToken), {}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
