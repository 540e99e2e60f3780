package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	distributionengine "seneschal/contexts/treasury-core/distribution-engine"
	distributionpostgres "seneschal/contexts/treasury-core/distribution-engine/adapters/postgres"
	distributionapp "seneschal/contexts/treasury-core/distribution-engine/application"
	distributionworkers "seneschal/contexts/treasury-core/distribution-engine/application/workers"
	distributionports "seneschal/contexts/treasury-core/distribution-engine/ports"
	operationledger "seneschal/contexts/treasury-core/operation-ledger"
	ledgerpostgres "seneschal/contexts/treasury-core/operation-ledger/adapters/postgres"
	ledgerworkers "seneschal/contexts/treasury-core/operation-ledger/application/workers"
	treasuryservice "seneschal/contexts/treasury-core/treasury-service"
	treasurymemory "seneschal/contexts/treasury-core/treasury-service/adapters/memory"
	treasuryworkers "seneschal/contexts/treasury-core/treasury-service/application/workers"
	treasuryports "seneschal/contexts/treasury-core/treasury-service/ports"
	"seneschal/internal/platform/chainrpc"
	"seneschal/internal/platform/config"
	"seneschal/internal/platform/db"
	"seneschal/internal/platform/httpserver"
	"seneschal/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres         *db.Postgres
	outboxRelay      ledgerworkers.OutboxRelay
	refresher        treasuryworkers.BalanceRefresher
	advisory         distributionworkers.AdvisoryCycle
	enableAdvisory   bool
	enableRelay      bool
	pollInterval     time.Duration
	advisoryInterval time.Duration
	logger           *slog.Logger
}

type modules struct {
	ledger       operationledger.Module
	distribution distributionengine.Module
	treasury     treasuryservice.Module
}

func buildModules(cfg config.Config, pg *db.Postgres, logger *slog.Logger) (modules, error) {
	gateway, err := chainrpc.NewClient(cfg.ChainRPCURL, cfg.GatewayTimeout, logger)
	if err != nil {
		return modules{}, errors.New("CHAIN_RPC_URL is required")
	}

	repo := ledgerpostgres.NewRepository(pg.DB, logger)
	ledger := operationledger.NewModule(operationledger.Dependencies{
		Repository:  repo,
		Audit:       repo,
		Outbox:      repo,
		Clock:       ledgerpostgres.SystemClock{},
		IDGen:       ledgerpostgres.UUIDGenerator{},
		ServiceName: cfg.ServiceName,
		Logger:      logger,
	})

	distribution := distributionengine.NewModule(distributionengine.Dependencies{
		Ledger:    ledger.Service,
		Gateway:   gateway,
		Holders:   gateway,
		Snapshots: distributionpostgres.NewRepository(pg.DB, logger),
		Pacer:     distributionapp.IntervalPacer{Interval: cfg.DistributionPacing},
		Clock:     ledgerpostgres.SystemClock{},
		IDGen:     ledgerpostgres.UUIDGenerator{},
		Identity: distributionports.TreasuryIdentity{
			WalletKey:     cfg.TreasuryWalletKey,
			WalletAddress: cfg.TreasuryWalletAddress,
			AssetID:       cfg.TreasuryAssetID,
		},
		Logger: logger,
	})

	cache := treasurymemory.NewCache()
	treasury := treasuryservice.NewModule(treasuryservice.Dependencies{
		Ledger:  ledger.Service,
		Gateway: gateway,
		Cache:   cache,
		Identity: treasuryports.TreasuryIdentity{
			WalletKey:     cfg.TreasuryWalletKey,
			WalletAddress: cfg.TreasuryWalletAddress,
			AssetID:       cfg.TreasuryAssetID,
		},
		Clock:  ledgerpostgres.SystemClock{},
		Logger: logger,
	})
	treasury.Cache = cache

	return modules{
		ledger:       ledger,
		distribution: distribution,
		treasury:     treasury,
	}, nil
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	mods, err := buildModules(cfg, pg, logger)
	if err != nil {
		return nil, err
	}

	server := httpserver.New(mods.ledger, mods.distribution, mods.treasury, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	mods, err := buildModules(cfg, pg, logger)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	repo := ledgerpostgres.NewRepository(pg.DB, logger)

	app := &WorkerApp{
		postgres: pg,
		outboxRelay: ledgerworkers.OutboxRelay{
			Outbox:    repo,
			Publisher: bus,
			Clock:     ledgerpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		refresher: treasuryworkers.BalanceRefresher{
			Subscriber:    bus,
			Service:       mods.treasury.Service,
			ConsumerGroup: "treasury-balance-refresher-cg",
			Logger:        logger,
		},
		enableRelay:      cfg.EnableOutboxRelay,
		enableAdvisory:   cfg.EnableAdvisoryCycle && strings.TrimSpace(cfg.AdvisorURL) != "",
		pollInterval:     2 * time.Second,
		advisoryInterval: cfg.AdvisoryInterval,
		logger:           logger,
	}

	if app.enableAdvisory {
		advisor, err := chainrpc.NewAdvisor(cfg.AdvisorURL, cfg.GatewayTimeout, logger)
		if err != nil {
			return nil, err
		}
		app.advisory = distributionworkers.AdvisoryCycle{
			Advisor:  advisor,
			Engine:   mods.distribution.Service,
			Treasury: mods.treasury.Service,
			Logger:   logger,
		}
	}
	return app, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.refresher.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	advisoryInterval := w.advisoryInterval
	if advisoryInterval <= 0 {
		advisoryInterval = time.Hour
	}
	advisoryTicker := time.NewTicker(advisoryInterval)
	defer advisoryTicker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"advisory_enabled", w.enableAdvisory,
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !w.enableRelay {
				continue
			}
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
		case <-advisoryTicker.C:
			if !w.enableAdvisory {
				continue
			}
			// Advisory failures are logged inside the cycle; a bad
			// recommendation must not take the relay loop down.
			_ = w.advisory.RunOnce(ctx)
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
