package normalization

import (
	"strings"

	"wallet-feature-lab/internal/domain"
)

// Partitioned holds a normalized table split by role relative to a subject.
// All three slices are sorted by (timestamp, index).
// Self-transfers appear in both Sent and Received.
type Partitioned struct {
	All      []*domain.Transfer
	Sent     []*domain.Transfer
	Received []*domain.Transfer
}

// Partition splits transfers into sent/received subsets for address.
// Matching is case-insensitive. The input slice is not modified.
func Partition(transfers []*domain.Transfer, address string) Partitioned {
	subject := strings.ToLower(strings.TrimSpace(address))

	all := make([]*domain.Transfer, len(transfers))
	copy(all, transfers)
	SortTransfers(all)

	p := Partitioned{All: all}
	for _, t := range all {
		if strings.ToLower(t.From) == subject {
			p.Sent = append(p.Sent, t)
		}
		if strings.ToLower(t.To) == subject {
			p.Received = append(p.Received, t)
		}
	}
	return p
}
