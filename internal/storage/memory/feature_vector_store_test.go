package memory

import (
	"context"
	"errors"
	"testing"

	"wallet-feature-lab/internal/domain"
	"wallet-feature-lab/internal/features"
	"wallet-feature-lab/internal/storage"
)

func testVector(address string, kind domain.TransferKind) *domain.FeatureVector {
	return &domain.FeatureVector{
		Address:       address,
		Kind:          kind,
		SchemaVersion: features.SchemaVersion,
		Features: []domain.Feature{
			{Name: "sent_tnx", Value: 3},
			{Name: "received_tnx", Value: 1},
		},
	}
}

func TestFeatureVectorStore_InsertAndGet(t *testing.T) {
	store := NewFeatureVectorStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testVector("0xabc", domain.TransferKindNative)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.GetByAddress(ctx, "0xABC", domain.TransferKindNative)
	if err != nil {
		t.Fatalf("GetByAddress failed: %v", err)
	}

	if result.Len() != 2 {
		t.Fatalf("Expected 2 columns, got %d", result.Len())
	}
	if result.Features[0].Name != "sent_tnx" || result.Features[0].Value != 3 {
		t.Errorf("Column order not preserved: %+v", result.Features)
	}
}

func TestFeatureVectorStore_DuplicateKey(t *testing.T) {
	store := NewFeatureVectorStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testVector("0xabc", domain.TransferKindNative)); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, testVector("0xabc", domain.TransferKindNative))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Same address, other kind is a different key
	if err := store.Insert(ctx, testVector("0xabc", domain.TransferKindToken)); err != nil {
		t.Errorf("Insert token vector failed: %v", err)
	}
}

func TestFeatureVectorStore_NotFound(t *testing.T) {
	store := NewFeatureVectorStore()

	_, err := store.GetByAddress(context.Background(), "0xmissing", domain.TransferKindToken)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFeatureVectorStore_InvalidInput(t *testing.T) {
	store := NewFeatureVectorStore()

	err := store.Insert(context.Background(), &domain.FeatureVector{Address: "0xabc"})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestFeatureVectorStore_ListByKindOrdered(t *testing.T) {
	store := NewFeatureVectorStore()
	ctx := context.Background()

	for _, addr := range []string{"0xccc", "0xaaa", "0xbbb"} {
		if err := store.Insert(ctx, testVector(addr, domain.TransferKindToken)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if err := store.Insert(ctx, testVector("0xddd", domain.TransferKindNative)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.ListByKind(ctx, domain.TransferKindToken)
	if err != nil {
		t.Fatalf("ListByKind failed: %v", err)
	}

	if len(result) != 3 {
		t.Fatalf("Expected 3 vectors, got %d", len(result))
	}
	for i, want := range []string{"0xaaa", "0xbbb", "0xccc"} {
		if result[i].Address != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, result[i].Address)
		}
	}
}

func TestFeatureVectorStore_ReturnsCopies(t *testing.T) {
	store := NewFeatureVectorStore()
	ctx := context.Background()

	v := testVector("0xabc", domain.TransferKindNative)
	if err := store.Insert(ctx, v); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	v.Features[0].Value = 99

	result, _ := store.GetByAddress(ctx, "0xabc", domain.TransferKindNative)
	if result.Features[0].Value != 3 {
		t.Errorf("Stored vector was mutated through caller's slice")
	}
}

func TestFeatureVectorStore_InsertAllSkipsStored(t *testing.T) {
	store := NewFeatureVectorStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testVector("0xabc", domain.TransferKindNative)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	written, err := store.InsertAll(ctx, []*domain.FeatureVector{
		testVector("0xABC", domain.TransferKindNative),
		testVector("0xabc", domain.TransferKindToken),
	})
	if err != nil {
		t.Fatalf("InsertAll failed: %v", err)
	}
	if written != 1 {
		t.Errorf("Expected 1 vector written, got %d", written)
	}
	if _, err := store.GetByAddress(ctx, "0xabc", domain.TransferKindToken); err != nil {
		t.Errorf("Token vector not stored: %v", err)
	}
}

func TestFeatureVectorStore_InsertAllIsAtomic(t *testing.T) {
	store := NewFeatureVectorStore()
	ctx := context.Background()

	bad := testVector("0xabc", domain.TransferKindToken)
	bad.Features = nil

	_, err := store.InsertAll(ctx, []*domain.FeatureVector{
		testVector("0xabc", domain.TransferKindNative),
		bad,
	})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
	if _, err := store.GetByAddress(ctx, "0xabc", domain.TransferKindNative); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected nothing stored, got %v", err)
	}
}

func TestFeatureVectorStore_InsertAllRejectsRepeatedKey(t *testing.T) {
	store := NewFeatureVectorStore()

	_, err := store.InsertAll(context.Background(), []*domain.FeatureVector{
		testVector("0xabc", domain.TransferKindNative),
		testVector("0xABC", domain.TransferKindNative),
	})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
