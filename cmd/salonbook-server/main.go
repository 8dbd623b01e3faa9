package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"salonbook/internal/config"
	"salonbook/internal/domain"
	"salonbook/internal/events"
	"salonbook/internal/lock"
	"salonbook/internal/service/appointments"
	"salonbook/internal/service/reports"
	"salonbook/internal/store"
	"salonbook/internal/store/memstore"
	"salonbook/internal/store/sqlstore"
	"salonbook/internal/telemetry"
	grpcTransport "salonbook/internal/transport/grpc"
	"salonbook/internal/transport/rest"
)

type catalogStore interface {
	store.CatalogReader
	store.CatalogWriter
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "salonbook-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", cfg.ServiceName),
	)
	slog.SetDefault(log)

	grpcAddr := net.JoinHostPort(cfg.GRPCHost, strconv.Itoa(cfg.GRPCPort))
	log.Info("starting",
		slog.String("grpc_addr", grpcAddr),
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("store_driver", cfg.StoreDriver),
		slog.String("lock_driver", cfg.LockDriver),
		slog.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Error("telemetry setup failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("telemetry shutdown failed", slog.Any("err", err))
		}
	}()

	seed, err := memstore.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		log.Error("catalog load failed", slog.Any("err", err), slog.String("catalog_file", cfg.CatalogFile))
		os.Exit(1)
	}

	checks := map[string]rest.Check{}

	var (
		repo    store.AppointmentRepository
		catalog catalogStore
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		repo = memstore.NewAppointmentRepo()
		catalog = memstore.NewCatalogStore(seed)
	default:
		db, err := openDatabase(log, cfg)
		if err != nil {
			os.Exit(1)
		}
		defer func() {
			if err := sqlstore.Close(db); err != nil {
				log.Warn("database close failed", slog.Any("err", err))
			}
		}()

		if err := sqlstore.CreateSchema(ctx, db); err != nil {
			log.Error("schema setup failed", slog.Any("err", err))
			os.Exit(1)
		}
		repo = sqlstore.NewAppointmentRepo(db)
		catalog = sqlstore.NewCatalogRepo(db)
		if err := seedCatalog(ctx, catalog, seed, cfg.CatalogFile != ""); err != nil {
			log.Error("catalog seed failed", slog.Any("err", err))
			os.Exit(1)
		}
		checks["database"] = db.PingContext
	}

	locker := lock.Locker(lock.NewLocal())
	if cfg.LockDriver == config.LockRedis {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("redis url invalid", slog.Any("err", err))
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn("redis close failed", slog.Any("err", err))
			}
		}()
		locker = lock.NewRedis(rdb, cfg.LockTTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	var publisher events.Publisher = events.Nop{}
	if brokers := events.SplitBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		kp := events.NewKafkaPublisher(brokers, cfg.KafkaTopic)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Warn("kafka writer close failed", slog.Any("err", err))
			}
		}()
		publisher = kp
		log.Info("publishing appointment events", slog.String("topic", cfg.KafkaTopic), slog.Int("brokers", len(brokers)))
	}

	svc := appointments.NewService(repo, catalog,
		appointments.WithLocker(locker),
		appointments.WithPublisher(publisher),
		appointments.WithLogger(log.With(slog.String("component", "appointments"))),
	)
	rep := reports.NewService(repo, catalog)

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(defaultRequestTimeoutInterceptor(cfg.GRPCRequestTimeout)),
	)
	grpcTransport.RegisterAppointmentsServiceServer(grpcServer, grpcTransport.NewAppointmentsServer(svc, rep, catalog, log))
	healthServer := health.NewServer()
	healthServer.SetServingStatus(grpcTransport.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", grpcAddr))
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: rest.NewRouter(rest.RouterConfig{
			Appointments:   svc,
			Reports:        rep,
			Catalog:        catalog,
			Logger:         log,
			Checks:         checks,
			ServiceName:    cfg.ServiceName,
			RequestTimeout: cfg.HTTPRequestTimeout,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info("servers started", slog.String("grpc_addr", grpcAddr), slog.String("http_addr", cfg.HTTPAddr))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		healthServer.Shutdown()
		shutdownHTTP(log, httpServer, cfg.ShutdownTimeout)
		shutdown(log, grpcServer, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			log.Error("server stopped with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func openDatabase(log *slog.Logger, cfg config.Config) (*bun.DB, error) {
	if cfg.StoreDriver == config.StoreSQLite {
		log.Info("opening sqlite database", slog.String("path", cfg.SQLitePath))
		db, err := sqlstore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Error("sqlite open failed", slog.Any("err", err), slog.String("path", cfg.SQLitePath))
		}
		return db, err
	}

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := sqlstore.OpenPostgres(cfg.DatabaseURL, sqlstore.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
	}
	return db, err
}

// seedCatalog writes the seed catalog into an empty database, or always when
// an explicit catalog file was configured.
func seedCatalog(ctx context.Context, c catalogStore, seed domain.Catalog, explicit bool) error {
	if !explicit {
		cur, err := c.Catalog(ctx)
		if err != nil {
			return err
		}
		if len(cur.Employees) > 0 || len(cur.Services) > 0 {
			return nil
		}
	}
	return c.SaveCatalog(ctx, seed)
}

func defaultRequestTimeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); ok {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return handler(ctx, req)
	}
}

func shutdown(log *slog.Logger, s *grpc.Server, timeout time.Duration) {
	log.Info("shutting down grpc server", slog.Duration("timeout", timeout))

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		log.Info("grpc server stopped")
	case <-timer.C:
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		s.Stop()
	}
}

func shutdownHTTP(log *slog.Logger, s *http.Server, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown failed; closing", slog.Any("err", err))
		_ = s.Close()
		return
	}
	log.Info("http server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
