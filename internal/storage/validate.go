package storage

import (
	"fmt"
	"strings"

	"wallet-feature-lab/internal/domain"
)

// MaxColumns bounds the column count of a vector. Column positions are
// stored as UInt16 in ClickHouse.
const MaxColumns = 65535

// ValidateVector checks the fields every store requires before insert.
// Returns an error wrapping ErrInvalidInput.
func ValidateVector(v *domain.FeatureVector) error {
	if v == nil {
		return fmt.Errorf("%w: nil vector", ErrInvalidInput)
	}
	if v.Address == "" || v.Kind == "" || v.SchemaVersion == "" {
		return fmt.Errorf("%w: address, kind and schema version are required", ErrInvalidInput)
	}
	if len(v.Features) == 0 {
		return fmt.Errorf("%w: vector has no columns", ErrInvalidInput)
	}
	if len(v.Features) > MaxColumns {
		return fmt.Errorf("%w: %d columns exceeds %d", ErrInvalidInput, len(v.Features), MaxColumns)
	}

	seen := make(map[string]struct{}, len(v.Features))
	for _, f := range v.Features {
		if f.Name == "" {
			return fmt.Errorf("%w: empty column name", ErrInvalidInput)
		}
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidInput, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// CloneVector returns a deep copy of v.
func CloneVector(v *domain.FeatureVector) *domain.FeatureVector {
	c := *v
	c.Features = append([]domain.Feature(nil), v.Features...)
	return &c
}

// ValidateVectors validates each vector and rejects repeated keys.
func ValidateVectors(vectors []*domain.FeatureVector) error {
	seen := make(map[string]struct{}, len(vectors))
	for _, v := range vectors {
		if err := ValidateVector(v); err != nil {
			return err
		}
		key := VectorKey(v.Address, v.Kind, v.SchemaVersion)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: vector %s listed twice", ErrInvalidInput, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// VectorKey identifies a vector by lowercased address, kind and schema version.
func VectorKey(address string, kind domain.TransferKind, schemaVersion string) string {
	return strings.ToLower(address) + "|" + string(kind) + "|" + schemaVersion
}
