// Package orchestrator runs end-to-end feature extraction for addresses.
// It coordinates: fetch → extraction → persistence → CSV output
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wallet-feature-lab/internal/domain"
	"wallet-feature-lab/internal/features"
	"wallet-feature-lab/internal/idhash"
	"wallet-feature-lab/internal/observability"
	"wallet-feature-lab/internal/reporting"
	"wallet-feature-lab/internal/storage"
	"wallet-feature-lab/internal/vocabulary"
)

// Output file names written per address.
const (
	NativeCSVName = "eth_features.csv"
	TokenCSVName  = "erc20_features.csv"
)

// ErrInvalidAddress is returned for a blank address or one that is not
// usable as an output directory name.
var ErrInvalidAddress = errors.New("invalid address")

// Fetcher retrieves raw transfer histories for an address.
type Fetcher interface {
	FetchNative(ctx context.Context, address string) ([]domain.RawTransfer, error)
	FetchToken(ctx context.Context, address string) ([]domain.RawTransfer, error)
}

// NamedStore is a feature vector store with a label for logs and metrics.
type NamedStore struct {
	Name  string
	Store storage.FeatureVectorStore
}

// Orchestrator coordinates per-address extraction.
type Orchestrator struct {
	fetcher    Fetcher
	stores     []NamedStore
	vocabulary *vocabulary.Vocabulary
	outputDir  string
	workers    int
	logger     *zap.SugaredLogger
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	Fetcher Fetcher

	// Stores receiving every persisted vector, in order
	Stores []NamedStore

	// Categorical vocabulary; nil or unavailable degrades token vectors
	Vocabulary *vocabulary.Vocabulary

	// OutputDir receives <address>/eth_features.csv and erc20_features.csv.
	// Empty disables CSV output.
	OutputDir string

	// Workers bounds RunBatch parallelism (default 1)
	Workers int

	Logger *zap.SugaredLogger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	vocab := opts.Vocabulary
	if vocab == nil {
		vocab = vocabulary.Empty()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Orchestrator{
		fetcher:    opts.Fetcher,
		stores:     opts.Stores,
		vocabulary: vocab,
		outputDir:  opts.OutputDir,
		workers:    workers,
		logger:     logger,
	}
}

// AddressResult contains results for one address.
type AddressResult struct {
	Address   string
	Native    *domain.FeatureVector
	Token     features.TokenResult
	NativeCSV string // written path, empty if not written
	TokenCSV  string // written path, empty if not written
	Err       error  // set only by RunBatch
}

// Extract fetches both histories of address and computes its feature
// vectors without persisting or writing anything.
// Phases:
//  1. Fetch native and token histories
//  2. Extract native vector (malformed native input fails the address)
//  3. Extract token vector (empty and degraded outcomes are not failures)
func (o *Orchestrator) Extract(ctx context.Context, address string) (*AddressResult, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" || address == "." || address == ".." || strings.ContainsAny(address, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	log := o.logger.With("address", address)

	// Phase 1: Fetch
	nativeRaw, err := o.fetch(ctx, "txlist", address, o.fetcher.FetchNative)
	if err != nil {
		observability.RecordAddressFailure("fetch")
		return nil, err
	}
	tokenRaw, err := o.fetch(ctx, "tokentx", address, o.fetcher.FetchToken)
	if err != nil {
		observability.RecordAddressFailure("fetch")
		return nil, err
	}
	log.Debugw("fetched histories", "native_records", len(nativeRaw), "token_records", len(tokenRaw))
	observability.RecordTransfers(string(domain.TransferKindNative), len(nativeRaw))
	observability.RecordTransfers(string(domain.TransferKindToken), len(tokenRaw))

	result := &AddressResult{Address: address}

	// Phase 2: Native extraction
	start := time.Now()
	native, err := features.ExtractNative(nativeRaw, address)
	if err != nil {
		observability.RecordExtraction(string(domain.TransferKindNative), "error", time.Since(start).Seconds())
		observability.RecordAddressFailure("native")
		return nil, fmt.Errorf("extract native features for %s: %w", address, err)
	}
	observability.RecordExtraction(string(domain.TransferKindNative), "ok", time.Since(start).Seconds())
	result.Native = native

	// Phase 3: Token extraction
	start = time.Now()
	result.Token = features.ExtractToken(tokenRaw, address, o.vocabulary)
	observability.RecordExtraction(string(domain.TransferKindToken), string(result.Token.Status), time.Since(start).Seconds())
	observability.RecordTokenDropped(result.Token.Dropped)

	if result.Token.Dropped > 0 {
		log.Warnw("dropped malformed token records", "dropped", result.Token.Dropped)
	}
	switch result.Token.Status {
	case features.TokenStatusEmpty:
		log.Warnw("no successful token transfers, skipping token features")
	case features.TokenStatusDegraded:
		log.Warnw("token vocabularies not loaded, skipping categorical features")
	}

	return result, nil
}

// RunAddress extracts address and persists and writes its feature vectors.
// Only complete token vectors are persisted or written.
//
// Both vectors are rendered before anything is written, each store takes
// them in one InsertAll, and CSVs are written only after every store
// accepted them. A failing store after an earlier one succeeded leaves the
// earlier store populated; a rerun fills the rest since stored keys are
// skipped.
func (o *Orchestrator) RunAddress(ctx context.Context, address string) (*AddressResult, error) {
	result, err := o.Extract(ctx, address)
	if err != nil {
		return nil, err
	}
	native := result.Native

	outputs := []csvOutput{{name: NativeCSVName, vector: native, path: &result.NativeCSV}}
	if result.Token.Status == features.TokenStatusOK {
		outputs = append(outputs, csvOutput{name: TokenCSVName, vector: result.Token.Vector, path: &result.TokenCSV})
	}

	vectors := make([]*domain.FeatureVector, len(outputs))
	for i := range outputs {
		vectors[i] = outputs[i].vector
		if outputs[i].data, err = reporting.RenderFeatureCSV(outputs[i].vector); err != nil {
			observability.RecordAddressFailure("output")
			return nil, fmt.Errorf("render %s: %w", outputs[i].name, err)
		}
	}

	if err := o.persist(ctx, vectors); err != nil {
		observability.RecordAddressFailure("store")
		return nil, err
	}
	if err := o.writeCSVs(result.Address, outputs); err != nil {
		observability.RecordAddressFailure("output")
		return nil, err
	}

	observability.MarkExtractionSuccess()
	o.logger.Infow("address processed",
		"address", result.Address,
		"native_columns", native.Len(),
		"token_status", result.Token.Status,
		"native_fingerprint", idhash.VectorFingerprint(native),
	)
	return result, nil
}

// RunBatch processes addresses in parallel, bounded by Workers.
// Per-address failures are recorded in AddressResult.Err and do not stop
// the batch. Results follow input order.
func (o *Orchestrator) RunBatch(ctx context.Context, addresses []string) []*AddressResult {
	start := time.Now()
	results := make([]*AddressResult, len(addresses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for i, addr := range addresses {
		g.Go(func() error {
			res, err := o.RunAddress(gctx, addr)
			if err != nil {
				o.logger.Errorw("address failed", "address", addr, "error", err)
				res = &AddressResult{Address: strings.ToLower(strings.TrimSpace(addr)), Err: err}
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	status := "success"
	if failed > 0 {
		status = "partial"
	}
	observability.RecordBatchRun(status, time.Since(start).Seconds())
	o.logger.Infow("batch completed",
		"addresses", len(addresses),
		"failed", failed,
		"duration", time.Since(start),
	)

	return results
}

// ReportRows converts results into batch report rows.
func ReportRows(results []*AddressResult) []reporting.AddressRow {
	rows := make([]reporting.AddressRow, 0, len(results))
	for _, r := range results {
		row := reporting.AddressRow{Address: r.Address}
		if r.Err != nil {
			row.Error = r.Err.Error()
			rows = append(rows, row)
			continue
		}
		if r.Native != nil {
			row.NativeColumns = r.Native.Len()
		}
		row.TokenStatus = string(r.Token.Status)
		row.TokenDropped = r.Token.Dropped
		if r.Token.Vector != nil {
			row.TokenColumns = r.Token.Vector.Len()
		}
		rows = append(rows, row)
	}
	return rows
}

func (o *Orchestrator) fetch(
	ctx context.Context,
	action, address string,
	fn func(context.Context, string) ([]domain.RawTransfer, error),
) ([]domain.RawTransfer, error) {
	start := time.Now()
	records, err := fn(ctx, address)
	observability.RecordFetch(action, time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("fetch %s for %s: %w", action, address, err)
	}
	return records, nil
}

// persist hands the vectors of one address to every store as a unit.
// Vectors a store already holds are kept.
func (o *Orchestrator) persist(ctx context.Context, vectors []*domain.FeatureVector) error {
	for _, s := range o.stores {
		start := time.Now()
		written, err := s.Store.InsertAll(ctx, vectors)
		observability.RecordStoreWrite(s.Name, time.Since(start).Seconds(), err)
		if err != nil {
			return fmt.Errorf("store vectors of %s in %s: %w", vectors[0].Address, s.Name, err)
		}
		if written < len(vectors) {
			o.logger.Infow("feature vectors already stored",
				"store", s.Name, "address", vectors[0].Address, "skipped", len(vectors)-written)
		}
	}
	return nil
}

// csvOutput is one rendered per-address CSV file.
type csvOutput struct {
	name   string
	vector *domain.FeatureVector
	data   string
	path   *string // receives the written path
}

// writeCSVs writes outputs under <outputDir>/<address>/. Files are staged
// with a temporary suffix and renamed once all of them are on disk.
func (o *Orchestrator) writeCSVs(address string, outputs []csvOutput) error {
	if o.outputDir == "" {
		return nil
	}

	dir := filepath.Join(o.outputDir, address)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	staged := make([]string, 0, len(outputs))
	cleanup := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}

	for _, out := range outputs {
		tmp := filepath.Join(dir, out.name+".tmp")
		if err := os.WriteFile(tmp, []byte(out.data), 0o644); err != nil {
			cleanup()
			return fmt.Errorf("write %s: %w", tmp, err)
		}
		staged = append(staged, tmp)
	}

	for i, out := range outputs {
		path := filepath.Join(dir, out.name)
		if err := os.Rename(staged[i], path); err != nil {
			cleanup()
			return fmt.Errorf("rename %s: %w", path, err)
		}
		*out.path = path
	}
	return nil
}
