package reporting

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"wallet-feature-lab/internal/domain"
)

// ErrSchemaMismatch is returned when vectors in one table disagree on columns.
var ErrSchemaMismatch = errors.New("feature vectors have different columns")

// FormatValue renders a feature value with the shortest exact representation.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// RenderFeatureCSV renders one vector as a header line plus one data row.
func RenderFeatureCSV(v *domain.FeatureVector) (string, error) {
	return renderTable([]*domain.FeatureVector{v}, false)
}

// RenderDatasetCSV renders vectors sharing one schema as a table,
// prefixed by an address column. Row order follows the input.
func RenderDatasetCSV(vectors []*domain.FeatureVector) (string, error) {
	return renderTable(vectors, true)
}

func renderTable(vectors []*domain.FeatureVector, withAddress bool) (string, error) {
	if len(vectors) == 0 {
		return "", nil
	}

	header := vectors[0].Names()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if withAddress {
		header = append([]string{"address"}, header...)
	}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	for _, v := range vectors {
		if !sameColumns(vectors[0], v) {
			return "", fmt.Errorf("%w: %s", ErrSchemaMismatch, v.Address)
		}

		row := make([]string, 0, len(header))
		if withAddress {
			row = append(row, v.Address)
		}
		for _, f := range v.Features {
			row = append(row, FormatValue(f.Value))
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write row %s: %w", v.Address, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.String(), nil
}

func sameColumns(a, b *domain.FeatureVector) bool {
	if len(a.Features) != len(b.Features) {
		return false
	}
	for i, f := range b.Features {
		if a.Features[i].Name != f.Name {
			return false
		}
	}
	return true
}
