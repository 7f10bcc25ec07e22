package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/helenatai/chemucl/audit"
	"github.com/helenatai/chemucl/cliparse"
	"github.com/helenatai/chemucl/db"
	"github.com/helenatai/chemucl/directory"
	"github.com/helenatai/chemucl/lock"
	"github.com/helenatai/chemucl/logger"
	"github.com/helenatai/chemucl/metrics"
	"github.com/helenatai/chemucl/middleware"
	"github.com/helenatai/chemucl/router"
	"github.com/helenatai/chemucl/scheduler"
	"github.com/helenatai/chemucl/store"
)

func main() {
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "error loading .env:", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error parsing flags:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error creating logger:", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg cliparse.Config, log *zap.Logger) error {
	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		return err
	}

	dbConn, err := db.Open(dialect, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		return err
	}
	log.Info("database schema ready", zap.String("dialect", string(dialect)))

	var dir directory.Resolver
	if cfg.InventoryURL != "" {
		dir = directory.NewHTTPDirectory(cfg.InventoryURL, cfg.InventoryTimeout)
		log.Info("using inventory service", zap.String("url", cfg.InventoryURL))
	} else {
		dir = directory.NewSQLDirectory(dbConn, dialect)
	}

	var locker lock.Locker
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		locker = lock.NewRedisLocker(client, cfg.LockTTL, logger.Named(log, "lock"))
		log.Info("using redis audit locks", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.LockTTL))
	} else {
		locker = lock.NewKeyedMutex()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	st := store.New(dbConn, dialect, logger.Named(log, "store"))
	svc := audit.NewService(st, dir, locker, logger.Named(log, "svc.audit"),
		audit.WithMetrics(m),
		audit.WithAutoCompleteEmpty(cfg.AutoCompleteEmpty),
	)

	sched := scheduler.New(st, m, cfg.MetricsSchedule, cfg.StalePauseAfter, logger.Named(log, "scheduler"))
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	mux := router.NewRouter(svc, reg, logger.Named(log, "http"))

	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	idle := make(chan struct{})
	go func() {
		defer close(idle)
		<-ctrlc
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Warn("graceful shutdown failed", zap.Error(err))
			server.Close()
		}
	}()

	log.Info("listening", zap.Int("port", cfg.Port))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	<-idle
	log.Info("server closed")
	return nil
}
