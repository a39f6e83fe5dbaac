package normalization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-feature-lab/internal/domain"
)

func transferAt(index int, from, to string, unix int64) *domain.Transfer {
	return &domain.Transfer{
		Index:     index,
		From:      from,
		To:        to,
		Timestamp: time.Unix(unix, 0).UTC(),
	}
}

func TestPartition_CaseInsensitive(t *testing.T) {
	transfers := []*domain.Transfer{
		transferAt(0, "0xabcdef", "0x111111", 100),
		transferAt(1, "0x222222", "0xabcdef", 200),
	}

	p := Partition(transfers, "0xABCdef")

	require.Len(t, p.Sent, 1)
	require.Len(t, p.Received, 1)
	assert.Equal(t, 0, p.Sent[0].Index)
	assert.Equal(t, 1, p.Received[0].Index)
}

func TestPartition_SelfTransferInBoth(t *testing.T) {
	transfers := []*domain.Transfer{
		transferAt(0, "0xabc", "0xabc", 100),
	}

	p := Partition(transfers, "0xabc")

	assert.Len(t, p.All, 1)
	assert.Len(t, p.Sent, 1)
	assert.Len(t, p.Received, 1)
}

func TestPartition_SortsByTimestampThenIndex(t *testing.T) {
	transfers := []*domain.Transfer{
		transferAt(0, "0xabc", "0x1", 300),
		transferAt(1, "0xabc", "0x2", 100),
		transferAt(2, "0xabc", "0x3", 100),
	}

	p := Partition(transfers, "0xabc")

	require.Len(t, p.Sent, 3)
	assert.Equal(t, []int{1, 2, 0}, []int{p.Sent[0].Index, p.Sent[1].Index, p.Sent[2].Index})

	// Input is not reordered
	assert.Equal(t, 0, transfers[0].Index)
}

func TestSortTransfers_Deterministic(t *testing.T) {
	a := []*domain.Transfer{
		transferAt(3, "", "", 50),
		transferAt(1, "", "", 50),
		transferAt(2, "", "", 10),
	}
	b := []*domain.Transfer{a[2], a[0], a[1]}

	SortTransfers(a)
	SortTransfers(b)

	for i := range a {
		assert.Equal(t, a[i].Index, b[i].Index)
	}
	assert.Equal(t, 2, a[0].Index)
	assert.Equal(t, 1, a[1].Index)
	assert.Equal(t, 3, a[2].Index)
}
