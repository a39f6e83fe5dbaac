package normalization

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"wallet-feature-lab/internal/domain"
)

// Native isError flag values.
const (
	nativeStatusOK     = "0"
	nativeStatusFailed = "1"
)

// maxTokenDecimals bounds reported token decimals; larger values are
// treated as invalid and replaced by the default.
const maxTokenDecimals = 77

// TokenNormalization is the result of normalizing token transfers.
type TokenNormalization struct {
	Transfers []*domain.Transfer
	Dropped   int // records that failed coercion
}

// NormalizeNative filters failed transfers and coerces the rest.
// Rules:
//   - isError "1" -> dropped; "0" or empty -> kept; anything else is malformed
//   - timeStamp: epoch seconds, integer or decimal notation
//   - value: divided by 10^18
//
// Any coercion failure returns ErrMalformedNative and no transfers.
func NormalizeNative(raw []domain.RawTransfer) ([]*domain.Transfer, error) {
	result := make([]*domain.Transfer, 0, len(raw))

	for i := range raw {
		r := &raw[i]

		switch strings.TrimSpace(r.IsError) {
		case nativeStatusFailed:
			continue
		case nativeStatusOK, "":
		default:
			return nil, fmt.Errorf("%w: record %d: isError %q", ErrMalformedNative, i, r.IsError)
		}

		ts, err := parseTimestamp(r.TimeStamp)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: timeStamp: %v", ErrMalformedNative, i, err)
		}

		amount, err := parseAmount(r.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: value: %v", ErrMalformedNative, i, err)
		}

		result = append(result, newTransfer(i, r, ts, amount, domain.NativeDecimals))
	}

	return result, nil
}

// NormalizeToken coerces token transfers, dropping records that fail.
// A reported decimals of zero (or an out-of-range value) falls back to 18.
func NormalizeToken(raw []domain.RawTransfer) TokenNormalization {
	result := TokenNormalization{
		Transfers: make([]*domain.Transfer, 0, len(raw)),
	}

	for i := range raw {
		r := &raw[i]

		ts, err := parseTimestamp(r.TimeStamp)
		if err != nil {
			result.Dropped++
			continue
		}

		amount, err := parseAmount(r.Value)
		if err != nil {
			result.Dropped++
			continue
		}

		decimals, err := parseAmount(r.TokenDecimal)
		if err != nil {
			result.Dropped++
			continue
		}

		result.Transfers = append(result.Transfers, newTransfer(i, r, ts, amount, tokenDecimals(decimals)))
	}

	return result
}

// tokenDecimals applies the default-decimals policy.
func tokenDecimals(d decimal.Decimal) int32 {
	if !d.IsInteger() || d.Sign() <= 0 || d.GreaterThan(decimal.NewFromInt(maxTokenDecimals)) {
		return domain.NativeDecimals
	}
	return int32(d.IntPart())
}

func newTransfer(index int, r *domain.RawTransfer, ts time.Time, amount decimal.Decimal, decimals int32) *domain.Transfer {
	return &domain.Transfer{
		Index:           index,
		Hash:            r.Hash,
		From:            strings.ToLower(strings.TrimSpace(r.From)),
		To:              strings.ToLower(strings.TrimSpace(r.To)),
		Timestamp:       ts,
		RawValue:        amount.String(),
		Decimals:        decimals,
		Value:           amount.Shift(-decimals).InexactFloat64(),
		ContractAddress: strings.ToLower(strings.TrimSpace(r.ContractAddress)),
		Input:           r.Input,
		TokenName:       r.TokenName,
	}
}

// parseAmount parses a numeric string (integer, decimal or exponent notation).
func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// parseTimestamp converts epoch seconds to a UTC time.
func parseTimestamp(s string) (time.Time, error) {
	d, err := parseAmount(s)
	if err != nil {
		return time.Time{}, err
	}
	secs := d.IntPart()
	nanos := d.Sub(decimal.NewFromInt(secs)).Shift(9).IntPart()
	return time.Unix(secs, nanos).UTC(), nil
}
