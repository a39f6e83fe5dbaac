package normalization

import (
	"sort"

	"wallet-feature-lab/internal/domain"
)

// SortTransfers orders transfers by (timestamp ASC, index ASC).
// Index is the raw input position, so equal timestamps keep input order.
func SortTransfers(transfers []*domain.Transfer) {
	sort.SliceStable(transfers, func(i, j int) bool {
		return compareTransfers(transfers[i], transfers[j]) < 0
	})
}

// compareTransfers returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
func compareTransfers(a, b *domain.Transfer) int {
	if !a.Timestamp.Equal(b.Timestamp) {
		if a.Timestamp.Before(b.Timestamp) {
			return -1
		}
		return 1
	}
	if a.Index != b.Index {
		if a.Index < b.Index {
			return -1
		}
		return 1
	}
	return 0
}
