package storage

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"wallet-feature-lab/internal/domain"
)

func TestValidateVector(t *testing.T) {
	valid := &domain.FeatureVector{
		Address:       "0xabc",
		Kind:          domain.TransferKindNative,
		SchemaVersion: "v1",
		Features:      []domain.Feature{{Name: "sent_tnx", Value: 1}},
	}
	assert.NoError(t, ValidateVector(valid))

	tests := []struct {
		name string
		v    *domain.FeatureVector
	}{
		{"nil", nil},
		{"no address", &domain.FeatureVector{Kind: domain.TransferKindNative, SchemaVersion: "v1", Features: valid.Features}},
		{"no columns", &domain.FeatureVector{Address: "0xabc", Kind: domain.TransferKindNative, SchemaVersion: "v1"}},
		{"duplicate column", &domain.FeatureVector{
			Address: "0xabc", Kind: domain.TransferKindNative, SchemaVersion: "v1",
			Features: []domain.Feature{{Name: "a"}, {Name: "a"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(ValidateVector(tt.v), ErrInvalidInput))
		})
	}
}

func wideVector(columns int) *domain.FeatureVector {
	v := &domain.FeatureVector{Address: "0xabc", Kind: domain.TransferKindToken, SchemaVersion: "v1"}
	v.Features = make([]domain.Feature, columns)
	for i := range v.Features {
		v.Features[i].Name = "ERC20_most_rec_token_" + strconv.Itoa(i)
	}
	return v
}

func TestValidateVector_ColumnLimit(t *testing.T) {
	assert.NoError(t, ValidateVector(wideVector(MaxColumns)))
	assert.ErrorIs(t, ValidateVector(wideVector(MaxColumns+1)), ErrInvalidInput)
}

func TestValidateVectors_RepeatedKey(t *testing.T) {
	a := wideVector(1)
	b := wideVector(2)
	b.Address = "0xABC"

	assert.ErrorIs(t, ValidateVectors([]*domain.FeatureVector{a, b}), ErrInvalidInput)

	b.Kind = domain.TransferKindNative
	assert.NoError(t, ValidateVectors([]*domain.FeatureVector{a, b}))
}

func TestCloneVector_Independent(t *testing.T) {
	v := &domain.FeatureVector{Address: "0xabc", Features: []domain.Feature{{Name: "a", Value: 1}}}
	c := CloneVector(v)
	c.Features[0].Value = 2

	assert.Equal(t, 1.0, v.Features[0].Value)
}
