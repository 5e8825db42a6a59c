package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	"github.com/zero-tech/zchain-bridge/pkg/app"
	apphttp "github.com/zero-tech/zchain-bridge/pkg/app/http"
	"github.com/zero-tech/zchain-bridge/pkg/chains"
	"github.com/zero-tech/zchain-bridge/pkg/config"
	"github.com/zero-tech/zchain-bridge/pkg/ethereum"
	"github.com/zero-tech/zchain-bridge/pkg/flow"
	"github.com/zero-tech/zchain-bridge/pkg/indexer"
	"github.com/zero-tech/zchain-bridge/pkg/migrations/bridgedb"
	"github.com/zero-tech/zchain-bridge/pkg/pgutil"
	"github.com/zero-tech/zchain-bridge/pkg/proofs"
	"github.com/zero-tech/zchain-bridge/pkg/signer"
	"github.com/zero-tech/zchain-bridge/pkg/store"
	"github.com/zero-tech/zchain-bridge/pkg/tokens"
)

const defaultRequestTimeout = 60

// Server holds cfg to init the bridge daemon.
type Server struct {
	cfg *config.Config
}

var _ app.Runner = (*Server)(nil)

// NewServer initializes a new bridge server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting bridge daemon",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := s.openDB(ctx, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	st := store.New(db)

	registryOpts := make([]chains.Option, 0, len(cfg.Chains))
	for _, override := range cfg.Chains {
		registryOpts = append(registryOpts, chains.WithRPCURL(override.ChainID, override.RPCURL))
	}
	registry := chains.NewRegistry(registryOpts...)

	pool := ethereum.NewPool(registry, &cfg.Signer, logger)
	defer pool.Close()

	indexerClient, err := indexer.New(&cfg.Indexer, logger)
	if err != nil {
		return fmt.Errorf("setup indexer client: %w", err)
	}

	resolver := tokens.NewResolver(tokens.NewRPCReader(pool), st, logger)

	manager := flow.NewManager(flow.Deps{
		Registry:         registry,
		Tokens:           resolver,
		External:         signer.NewExternalSigner(registry, pool, logger),
		Custodial:        signer.NewCustodialSigner(indexerClient, logger),
		Status:           indexerClient,
		Activity:         indexerClient,
		Proofs:           proofs.NewFetcher(indexerClient, logger),
		Audit:            st,
		Logger:           logger,
		PollInterval:     cfg.Bridge.PollInterval,
		ActivityPageSize: cfg.Bridge.ActivityPageSize,
	})

	router := s.setupRouter(manager, registry, resolver, st, logger)

	err = apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)

	// Stop polling goroutines before the deferred pool/DB closes kick in.
	manager.Shutdown()

	return err
}

func (s *Server) openDB(ctx context.Context, logger *zap.Logger) (*bun.DB, error) {
	db, err := pgutil.ConnectDB(&s.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	logger.Info("Connected to database",
		zap.String("host", s.cfg.Database.Host),
		zap.String("database", s.cfg.Database.Database),
	)

	migrator := migrate.NewMigrator(db, bridgedb.Migrations)
	if err := migrator.Init(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if !group.IsZero() {
		logger.Info("Applied database migrations", zap.String("group", group.String()))
	}

	return db, nil
}

func (s *Server) setupRouter(
	manager *flow.Manager,
	registry *chains.Registry,
	dir TokenDirectory,
	transfers TransferLister,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Second * defaultRequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if s.cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		RegisterRoutes(r, manager, registry, dir, transfers, logger)
	})

	return r
}
