package reporting

import "time"

// BatchReport summarizes one batch run.
type BatchReport struct {
	GeneratedAt time.Time

	Summary BatchSummary

	// One row per address, sorted by address
	Rows []AddressRow
}

// BatchSummary contains batch-level counts.
type BatchSummary struct {
	Addresses           int
	Succeeded           int
	Failed              int
	TokenOK             int
	TokenDegraded       int
	TokenEmpty          int
	TokenRecordsDropped int
}

// AddressRow represents one address in the batch table.
type AddressRow struct {
	Address       string
	NativeColumns int    // 0 when the native path failed
	TokenStatus   string // ok | empty | degraded, empty string on failure
	TokenColumns  int
	TokenDropped  int
	Error         string
}
