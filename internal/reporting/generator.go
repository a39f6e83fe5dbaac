package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"wallet-feature-lab/internal/domain"
	"wallet-feature-lab/internal/storage"
)

// Generator produces reports and dataset exports.
type Generator struct {
	store storage.FeatureVectorStore
	now   func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
// store may be nil when only batch summaries are needed.
func NewGenerator(store storage.FeatureVectorStore) *Generator {
	return &Generator{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Summarize builds a batch report from per-address rows.
func (g *Generator) Summarize(rows []AddressRow) *BatchReport {
	sorted := make([]AddressRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Address < sorted[j].Address
	})

	r := &BatchReport{
		GeneratedAt: g.now(),
		Rows:        sorted,
	}
	r.Summary.Addresses = len(sorted)

	for _, row := range sorted {
		if row.Error != "" {
			r.Summary.Failed++
			continue
		}
		r.Summary.Succeeded++
		r.Summary.TokenRecordsDropped += row.TokenDropped

		switch row.TokenStatus {
		case "ok":
			r.Summary.TokenOK++
		case "degraded":
			r.Summary.TokenDegraded++
		case "empty":
			r.Summary.TokenEmpty++
		}
	}

	return r
}

// Dataset exports every stored vector of kind as one CSV table.
func (g *Generator) Dataset(ctx context.Context, kind domain.TransferKind) (string, error) {
	if g.store == nil {
		return "", fmt.Errorf("dataset export requires a feature vector store")
	}

	vectors, err := g.store.ListByKind(ctx, kind)
	if err != nil {
		return "", fmt.Errorf("list %s vectors: %w", kind, err)
	}

	return RenderDatasetCSV(vectors)
}
