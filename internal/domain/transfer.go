package domain

import "time"

// TransferKind distinguishes native-currency transfers from token transfers.
type TransferKind string

// Transfer kind constants
const (
	TransferKindNative TransferKind = "native"
	TransferKindToken  TransferKind = "token"
)

// RawTransfer is a transfer record as delivered by the fetch collaborator.
// All fields are strings; coercion happens in normalization.
// JSON names follow the Etherscan txlist/tokentx result schema.
type RawTransfer struct {
	Hash            string `json:"hash"`
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`       // epoch seconds
	From            string `json:"from"`            // sender address, any case
	To              string `json:"to"`              // recipient address, any case
	Value           string `json:"value"`           // magnitude in smallest unit
	IsError         string `json:"isError"`         // native only: "0" ok, "1" failed
	ContractAddress string `json:"contractAddress"` // native: created contract; token: token contract
	Input           string `json:"input"`           // call payload, "0x" for plain transfers
	TokenName       string `json:"tokenName"`       // token only
	TokenSymbol     string `json:"tokenSymbol"`     // token only
	TokenDecimal    string `json:"tokenDecimal"`    // token only
}

// Transfer is a normalized, typed transfer record.
type Transfer struct {
	Index           int       // position in the raw input, sort tie-break
	Hash            string    // transaction hash
	From            string    // lowercased sender
	To              string    // lowercased recipient
	Timestamp       time.Time // UTC
	RawValue        string    // integer magnitude as received
	Decimals        int32     // scale applied to RawValue
	Value           float64   // denominated value: RawValue / 10^Decimals
	ContractAddress string    // lowercased, may be empty
	Input           string    // call payload as received
	TokenName       string    // token only
}

// NativeDecimals is the fixed scale of native-currency transfers.
const NativeDecimals = 18
