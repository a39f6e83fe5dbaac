package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"wallet-feature-lab/internal/config"
	"wallet-feature-lab/internal/domain"
	"wallet-feature-lab/internal/etherscan"
	"wallet-feature-lab/internal/logging"
	"wallet-feature-lab/internal/observability"
	"wallet-feature-lab/internal/orchestrator"
	"wallet-feature-lab/internal/reporting"
	"wallet-feature-lab/internal/storage"
	chstore "wallet-feature-lab/internal/storage/clickhouse"
	"wallet-feature-lab/internal/storage/memory"
	"wallet-feature-lab/internal/storage/migrations"
	"wallet-feature-lab/internal/storage/postgres"
	"wallet-feature-lab/internal/verification"
	"wallet-feature-lab/internal/vocabulary"
)

const shutdownTimeout = 5 * time.Second

// app holds the wired dependencies of one command run.
type app struct {
	cfg     *config.Config
	logger  *zap.SugaredLogger
	stores  []orchestrator.NamedStore
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.logger.Desugar().Sync() //nolint:errcheck // best-effort flush; ignore sync errors
}

// setup builds config, logger, metrics server and stores.
func setup(ctx context.Context, c *cli.Context) (*app, error) {
	cfg, err := buildConfig(c)
	if err != nil {
		return nil, fmt.Errorf("failed to build config: %w", err)
	}

	sugar, err := logging.NewSugaredLogger(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	sugar.Infow("config",
		"verbose", cfg.Verbose,
		"etherscanURL", cfg.EtherscanURL,
		"chainID", cfg.ChainID,
		"httpTimeout", cfg.HTTPTimeout,
		"sentVocab", cfg.SentVocabPath,
		"recVocab", cfg.RecVocabPath,
		"postgres", cfg.PostgresDSN != "",
		"clickhouse", cfg.ClickhouseDSN != "",
		"outputDir", cfg.OutputDir,
		"workers", cfg.Workers,
		"metricsAddr", cfg.MetricsAddr,
	)

	a := &app{cfg: cfg, logger: sugar}

	if cfg.MetricsAddr != "" {
		srv := observability.StartServer(cfg.MetricsAddr, sugar)
		a.closers = append(a.closers, func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		})
	}

	if err := a.openStores(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// openStores connects configured feature stores, in-memory when none is set.
func (a *app) openStores(ctx context.Context) error {
	if a.cfg.PostgresDSN != "" {
		pool, err := postgres.NewPool(ctx, a.cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("failed to run postgres migrations: %w", err)
		}
		a.stores = append(a.stores, orchestrator.NamedStore{
			Name:  "postgres",
			Store: postgres.NewFeatureVectorStore(pool),
		})
		a.logger.Info("postgres feature store ready")
	}

	if a.cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, a.cfg.ClickhouseDSN)
		if err != nil {
			return fmt.Errorf("failed to prepare clickhouse: %w", err)
		}
		a.closers = append(a.closers, func() { conn.Close() })
		a.stores = append(a.stores, orchestrator.NamedStore{
			Name:  "clickhouse",
			Store: chstore.NewFeatureVectorStore(conn),
		})
		a.logger.Info("clickhouse feature store ready")
	}

	if len(a.stores) == 0 {
		a.stores = append(a.stores, orchestrator.NamedStore{
			Name:  "memory",
			Store: memory.NewFeatureVectorStore(),
		})
		a.logger.Info("using in-memory feature store")
	}
	return nil
}

// orchestrator wires the fetch client and vocabulary.
func (a *app) orchestrator() (*orchestrator.Orchestrator, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	vocab, err := vocabulary.Load(a.cfg.SentVocabPath, a.cfg.RecVocabPath)
	if err != nil {
		a.logger.Warnw("token vocabularies not loaded, categorical features disabled", "error", err)
	}

	client := etherscan.NewClient(a.cfg.EtherscanAPIKey,
		etherscan.WithBaseURL(a.cfg.EtherscanURL),
		etherscan.WithChainID(a.cfg.ChainID),
		etherscan.WithTimeout(a.cfg.HTTPTimeout),
	)

	return orchestrator.New(orchestrator.Options{
		Fetcher:    client,
		Stores:     a.stores,
		Vocabulary: vocab,
		OutputDir:  a.cfg.OutputDir,
		Workers:    a.cfg.Workers,
		Logger:     a.logger,
	}), nil
}

func runExtract(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer a.close()

	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	result, err := orch.RunAddress(ctx, c.String("address"))
	if err != nil {
		a.logger.Errorw("extraction failed", "error", err)
		return err
	}

	a.logger.Infow("extraction finished",
		"address", result.Address,
		"nativeCSV", result.NativeCSV,
		"tokenCSV", result.TokenCSV,
		"tokenStatus", result.Token.Status,
	)
	return nil
}

func runBatch(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer a.close()

	addresses, err := readAddressFile(c.String("addresses-file"))
	if err != nil {
		return err
	}
	a.logger.Infow("loaded addresses", "count", len(addresses))

	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	results := orch.RunBatch(ctx, addresses)

	report := reporting.NewGenerator(nil).Summarize(orchestrator.ReportRows(results))
	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	reportPath := filepath.Join(a.cfg.OutputDir, "report.md")
	if err := os.WriteFile(reportPath, []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	a.logger.Infow("batch finished",
		"addresses", report.Summary.Addresses,
		"succeeded", report.Summary.Succeeded,
		"failed", report.Summary.Failed,
		"report", reportPath,
	)

	if ctx.Err() != nil {
		a.logger.Warnw("batch interrupted, results are partial")
	}
	return nil
}

func runVerify(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer a.close()

	store := a.exportStore()
	if store == nil {
		return errors.New("verify requires --postgres-dsn or --clickhouse-dsn")
	}

	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	results, err := verification.NewVerifier(store, orch).VerifyAddress(ctx, c.String("address"))
	if err != nil {
		return err
	}

	mismatched := 0
	for _, r := range results {
		switch {
		case r.Missing:
			a.logger.Warnw("no stored vector", "address", r.Address, "kind", r.Kind)
			mismatched++
		case !r.Match:
			a.logger.Warnw("stored vector diverges",
				"address", r.Address,
				"kind", r.Kind,
				"divergences", len(r.Divergences),
				"first", r.Divergences[0],
			)
			mismatched++
		default:
			a.logger.Infow("stored vector verified",
				"address", r.Address,
				"kind", r.Kind,
				"fingerprint", r.StoredFingerprint,
			)
		}
	}

	if mismatched > 0 {
		return fmt.Errorf("%d of %d vectors failed verification", mismatched, len(results))
	}
	return nil
}

func runExport(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer a.close()

	kind := domain.TransferKind(c.String("kind"))
	if kind != domain.TransferKindNative && kind != domain.TransferKindToken {
		return fmt.Errorf("unknown kind %q", kind)
	}

	store := a.exportStore()
	if store == nil {
		return errors.New("export requires --postgres-dsn or --clickhouse-dsn")
	}

	data, err := reporting.NewGenerator(store).Dataset(ctx, kind)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if out := c.String("out"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	_, err = io.WriteString(w, data)
	return err
}

// exportStore returns the first persistent store.
func (a *app) exportStore() storage.FeatureVectorStore {
	for _, s := range a.stores {
		if s.Name != "memory" {
			return s.Store
		}
	}
	return nil
}

// readAddressFile reads one address per line, skipping blanks, comments
// and repeats.
func readAddressFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open addresses file: %w", err)
	}
	defer f.Close()

	return readAddresses(f)
}

func readAddresses(r io.Reader) ([]string, error) {
	var addresses []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		addresses = append(addresses, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read addresses: %w", err)
	}
	return addresses, nil
}
