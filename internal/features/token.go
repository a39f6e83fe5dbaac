package features

import (
	"wallet-feature-lab/internal/domain"
	"wallet-feature-lab/internal/normalization"
	"wallet-feature-lab/internal/vocabulary"
)

// TokenStatus describes the outcome of a token extraction.
type TokenStatus string

// Token extraction outcomes
const (
	// TokenStatusOK: quantitative and categorical columns present.
	TokenStatusOK TokenStatus = "ok"
	// TokenStatusEmpty: no token activity after normalization, no vector.
	TokenStatusEmpty TokenStatus = "empty"
	// TokenStatusDegraded: vocabulary unavailable, categorical columns omitted.
	TokenStatusDegraded TokenStatus = "degraded"
)

// TokenResult is the result of ExtractToken.
type TokenResult struct {
	Status           TokenStatus
	Vector           *domain.FeatureVector // nil when Status is TokenStatusEmpty
	Dropped          int                   // malformed records skipped during normalization
	DominantSent     string                // most frequent token sent, or vocabulary.NoneToken
	DominantReceived string                // most frequent token received, or vocabulary.NoneToken
}

// ExtractToken computes token-transfer features for address.
// Malformed records are dropped, never fatal. The categorical columns are
// aligned to vocab; when vocab is not available the result is degraded and
// carries quantitative columns only.
func ExtractToken(raw []domain.RawTransfer, address string, vocab *vocabulary.Vocabulary) TokenResult {
	norm := normalization.NormalizeToken(raw)
	if len(norm.Transfers) == 0 {
		return TokenResult{
			Status:           TokenStatusEmpty,
			Dropped:          norm.Dropped,
			DominantSent:     vocabulary.NoneToken,
			DominantReceived: vocabulary.NoneToken,
		}
	}

	p := normalization.Partition(norm.Transfers, address)
	toContract := contractCalls(p.Sent)

	sent := computeValueStats(p.Sent)
	received := computeValueStats(p.Received)
	contract := computeValueStats(toContract)

	values := map[string]float64{
		// Counts
		ColTokenTotalTnxs:            float64(len(p.All)),
		ColTokenUniqSentAddr:         float64(countDistinct(p.Sent, toAddress)),
		ColTokenUniqRecAddr:          float64(countDistinct(p.Received, fromAddress)),
		ColTokenUniqSentContractAddr: float64(countDistinct(toContract, toAddress)),
		ColTokenUniqRecContractAddr:  float64(countDistinct(p.Received, contractAddress)),
		ColTokenUniqSentTokenName:    float64(countDistinct(p.Sent, tokenName)),
		ColTokenUniqRecTokenName:     float64(countDistinct(p.Received, tokenName)),

		// Timing
		ColTokenAvgTimeBetweenSentTnx:     meanGapMinutes(p.Sent),
		ColTokenAvgTimeBetweenRecTnx:      meanGapMinutes(p.Received),
		ColTokenAvgTimeBetweenContractTnx: meanGapMinutes(toContract),

		// Values
		ColTokenTotalEtherReceived: received.Sum,
		ColTokenTotalEtherSent:     sent.Sum,
		ColTokenMinValRec:          received.Min,
		ColTokenMaxValRec:          received.Max,
		ColTokenAvgValRec:          received.Mean,
		ColTokenMinValSent:         sent.Min,
		ColTokenMaxValSent:         sent.Max,
		ColTokenAvgValSent:         sent.Mean,

		// Contract interaction
		ColTokenTotalEtherSentToContract: contract.Sum,
		ColTokenMinValSentContract:       contract.Min,
		ColTokenMaxValSentContract:       contract.Max,
		ColTokenAvgValSentContract:       contract.Mean,
	}

	result := TokenResult{
		Vector:           buildVector(address, domain.TransferKindToken, TokenColumns, values),
		Dropped:          norm.Dropped,
		DominantSent:     dominantToken(p.Sent),
		DominantReceived: dominantToken(p.Received),
	}

	if !vocab.Available() {
		result.Status = TokenStatusDegraded
		return result
	}

	result.Vector.Features = append(result.Vector.Features,
		vocabulary.Align(result.DominantSent, result.DominantReceived, vocab)...)
	result.Vector.Categorical = true
	result.Status = TokenStatusOK
	return result
}
