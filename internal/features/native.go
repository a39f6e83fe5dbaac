package features

import (
	"wallet-feature-lab/internal/domain"
	"wallet-feature-lab/internal/normalization"
)

// ExtractNative computes native-currency features for address.
// Steps:
//  1. Normalize (drop failed transfers, coerce, scale by 10^18)
//  2. Partition into sent/received, sorted by timestamp
//  3. Compute counts, timing, value and contract-interaction statistics
//
// Malformed records fail the call with normalization.ErrMalformedNative.
// An empty history yields a vector with every column at zero.
func ExtractNative(raw []domain.RawTransfer, address string) (*domain.FeatureVector, error) {
	transfers, err := normalization.NormalizeNative(raw)
	if err != nil {
		return nil, err
	}

	p := normalization.Partition(transfers, address)
	toContract := contractCalls(p.Sent)

	sent := computeValueStats(p.Sent)
	received := computeValueStats(p.Received)
	contract := computeValueStats(toContract)

	values := map[string]float64{
		// Timing
		ColAvgMinBetweenSentTnx:     meanGapMinutes(p.Sent),
		ColAvgMinBetweenReceivedTnx: meanGapMinutes(p.Received),
		ColTimeDiffFirstLast:        spanMinutes(p.All),

		// Counts
		ColSentTnx:                     float64(len(p.Sent)),
		ColReceivedTnx:                 float64(len(p.Received)),
		ColTotalTransactions:           float64(len(p.All)),
		ColNumCreatedContracts:         float64(countCreatedContracts(p.All)),
		ColUniqueReceivedFromAddresses: float64(countDistinct(p.Received, fromAddress)),
		ColUniqueSentToAddresses:       float64(countDistinct(p.Sent, toAddress)),

		// Values
		ColMinValueReceived:   received.Min,
		ColMaxValueReceived:   received.Max,
		ColAvgValReceived:     received.Mean,
		ColMinValSent:         sent.Min,
		ColMaxValSent:         sent.Max,
		ColAvgValSent:         sent.Mean,
		ColTotalEtherSent:     sent.Sum,
		ColTotalEtherReceived: received.Sum,
		ColTotalEtherBalance:  received.Sum - sent.Sum,

		// Contract interaction
		ColMinValSentToContract:     contract.Min,
		ColMaxValSentToContract:     contract.Max,
		ColAvgValSentToContract:     contract.Mean,
		ColTotalEtherSentToContract: contract.Sum,
	}

	return buildVector(address, domain.TransferKindNative, NativeColumns, values), nil
}

// countCreatedContracts counts transfers that created a contract.
func countCreatedContracts(transfers []*domain.Transfer) int {
	n := 0
	for _, t := range transfers {
		if t.ContractAddress != "" {
			n++
		}
	}
	return n
}
