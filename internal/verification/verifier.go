// Package verification checks that stored feature vectors match a fresh
// extraction of the same address.
package verification

import (
	"context"
	"errors"
	"fmt"
	"math"

	"wallet-feature-lab/internal/domain"
	"wallet-feature-lab/internal/idhash"
	"wallet-feature-lab/internal/orchestrator"
	"wallet-feature-lab/internal/storage"
)

// FloatTolerance is the relative tolerance for value comparisons.
const FloatTolerance = 1e-9

// FieldDivergence represents a mismatch between stored and recomputed values.
type FieldDivergence struct {
	Field    string      // column or attribute name
	Expected interface{} // stored value
	Actual   interface{} // recomputed value
}

// VerificationResult contains the result of verifying one stored vector.
type VerificationResult struct {
	Address               string
	Kind                  domain.TransferKind
	Match                 bool              // true if all fields match
	Missing               bool              // no stored vector
	Divergences           []FieldDivergence // list of divergent fields
	StoredFingerprint     string
	RecomputedFingerprint string
}

// Extractor recomputes feature vectors without side effects.
type Extractor interface {
	Extract(ctx context.Context, address string) (*orchestrator.AddressResult, error)
}

// Verifier compares stored vectors with recomputed ones.
type Verifier struct {
	store     storage.FeatureVectorStore
	extractor Extractor
}

// NewVerifier creates a new Verifier.
func NewVerifier(store storage.FeatureVectorStore, extractor Extractor) *Verifier {
	return &Verifier{store: store, extractor: extractor}
}

// VerifyAddress re-extracts address and compares each recomputed vector with
// the stored one. Token vectors are only checked when the recomputation
// produced a complete vector.
func (v *Verifier) VerifyAddress(ctx context.Context, address string) ([]VerificationResult, error) {
	fresh, err := v.extractor.Extract(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("recompute %s: %w", address, err)
	}

	recomputed := []*domain.FeatureVector{fresh.Native}
	if fresh.Token.Vector != nil && fresh.Token.Vector.Categorical {
		recomputed = append(recomputed, fresh.Token.Vector)
	}

	results := make([]VerificationResult, 0, len(recomputed))
	for _, rv := range recomputed {
		res := VerificationResult{
			Address:               rv.Address,
			Kind:                  rv.Kind,
			RecomputedFingerprint: idhash.VectorFingerprint(rv),
		}

		stored, err := v.store.GetByAddress(ctx, rv.Address, rv.Kind)
		if errors.Is(err, storage.ErrNotFound) {
			res.Missing = true
			results = append(results, res)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load stored %s vector: %w", rv.Kind, err)
		}

		res.StoredFingerprint = idhash.VectorFingerprint(stored)
		res.Divergences = CompareVectors(stored, rv)
		res.Match = len(res.Divergences) == 0
		results = append(results, res)
	}

	return results, nil
}

// CompareVectors compares two vectors column by column.
// Columns are matched by position; a name mismatch at a position is reported
// once and values at that position are not compared.
func CompareVectors(stored, recomputed *domain.FeatureVector) []FieldDivergence {
	var divergences []FieldDivergence

	if stored.SchemaVersion != recomputed.SchemaVersion {
		divergences = append(divergences, FieldDivergence{
			Field:    "SchemaVersion",
			Expected: stored.SchemaVersion,
			Actual:   recomputed.SchemaVersion,
		})
	}

	if stored.Categorical != recomputed.Categorical {
		divergences = append(divergences, FieldDivergence{
			Field:    "Categorical",
			Expected: stored.Categorical,
			Actual:   recomputed.Categorical,
		})
	}

	if stored.Len() != recomputed.Len() {
		divergences = append(divergences, FieldDivergence{
			Field:    "ColumnCount",
			Expected: stored.Len(),
			Actual:   recomputed.Len(),
		})
	}

	n := min(stored.Len(), recomputed.Len())
	for i := 0; i < n; i++ {
		s, r := stored.Features[i], recomputed.Features[i]
		if s.Name != r.Name {
			divergences = append(divergences, FieldDivergence{
				Field:    fmt.Sprintf("column[%d]", i),
				Expected: s.Name,
				Actual:   r.Name,
			})
			continue
		}
		if !floatEquals(s.Value, r.Value) {
			divergences = append(divergences, FieldDivergence{
				Field:    s.Name,
				Expected: s.Value,
				Actual:   r.Value,
			})
		}
	}

	return divergences
}

// floatEquals compares within FloatTolerance relative to the larger magnitude.
func floatEquals(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= FloatTolerance*scale
}
