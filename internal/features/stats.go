package features

import (
	"strings"
	"time"

	"wallet-feature-lab/internal/domain"
	"wallet-feature-lab/internal/vocabulary"
)

// emptyCallInput marks a plain value transfer with no call payload.
const emptyCallInput = "0x"

// valueStats summarizes denominated values of a subset.
// All fields are zero for an empty subset.
type valueStats struct {
	Sum  float64
	Min  float64
	Max  float64
	Mean float64
}

func computeValueStats(transfers []*domain.Transfer) valueStats {
	if len(transfers) == 0 {
		return valueStats{}
	}

	s := valueStats{
		Min: transfers[0].Value,
		Max: transfers[0].Value,
	}
	for _, t := range transfers {
		s.Sum += t.Value
		if t.Value < s.Min {
			s.Min = t.Value
		}
		if t.Value > s.Max {
			s.Max = t.Value
		}
	}
	s.Mean = s.Sum / float64(len(transfers))
	return s
}

// meanGapMinutes returns the mean of consecutive timestamp differences in
// minutes. Transfers must be sorted by timestamp. Fewer than two transfers
// have no internal gap and yield zero.
func meanGapMinutes(sorted []*domain.Transfer) float64 {
	if len(sorted) < 2 {
		return 0
	}

	var total time.Duration
	for i := 1; i < len(sorted); i++ {
		total += sorted[i].Timestamp.Sub(sorted[i-1].Timestamp)
	}
	return total.Seconds() / float64(len(sorted)-1) / 60
}

// spanMinutes returns the time between the earliest and latest transfer.
func spanMinutes(transfers []*domain.Transfer) float64 {
	if len(transfers) == 0 {
		return 0
	}

	first, last := transfers[0].Timestamp, transfers[0].Timestamp
	for _, t := range transfers[1:] {
		if t.Timestamp.Before(first) {
			first = t.Timestamp
		}
		if t.Timestamp.After(last) {
			last = t.Timestamp
		}
	}
	return last.Sub(first).Seconds() / 60
}

// countDistinct counts distinct non-empty keys.
func countDistinct(transfers []*domain.Transfer, key func(*domain.Transfer) string) int {
	seen := make(map[string]struct{})
	for _, t := range transfers {
		k := key(t)
		if k == "" {
			continue
		}
		seen[k] = struct{}{}
	}
	return len(seen)
}

// isContractCall reports whether a transfer's input differs from the
// empty-call marker. A missing input counts as a call.
func isContractCall(t *domain.Transfer) bool {
	return strings.ToLower(strings.TrimSpace(t.Input)) != emptyCallInput
}

func contractCalls(transfers []*domain.Transfer) []*domain.Transfer {
	var result []*domain.Transfer
	for _, t := range transfers {
		if isContractCall(t) {
			result = append(result, t)
		}
	}
	return result
}

// dominantToken returns the most frequent token name in a sorted subset.
// Ties go to the name encountered first; an empty subset yields NoneToken.
func dominantToken(sorted []*domain.Transfer) string {
	if len(sorted) == 0 {
		return vocabulary.NoneToken
	}

	counts := make(map[string]int)
	var order []string
	for _, t := range sorted {
		if _, ok := counts[t.TokenName]; !ok {
			order = append(order, t.TokenName)
		}
		counts[t.TokenName]++
	}

	best := order[0]
	for _, name := range order[1:] {
		if counts[name] > counts[best] {
			best = name
		}
	}
	return best
}

func toAddress(t *domain.Transfer) string       { return t.To }
func fromAddress(t *domain.Transfer) string     { return t.From }
func tokenName(t *domain.Transfer) string       { return t.TokenName }
func contractAddress(t *domain.Transfer) string { return t.ContractAddress }

// buildVector emits values in schema order. Columns missing from values are zero.
func buildVector(address string, kind domain.TransferKind, columns []string, values map[string]float64) *domain.FeatureVector {
	v := &domain.FeatureVector{
		Address:       strings.ToLower(strings.TrimSpace(address)),
		Kind:          kind,
		SchemaVersion: SchemaVersion,
		Features:      make([]domain.Feature, len(columns)),
	}
	for i, c := range columns {
		v.Features[i] = domain.Feature{Name: c, Value: values[c]}
	}
	return v
}
