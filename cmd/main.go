package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"google.golang.org/grpc/reflection"

	grpcctx "github.com/dtroode/loginvault/internal/api/grpc/context"
	"github.com/dtroode/loginvault/internal/api/grpc/router"
	grpcServer "github.com/dtroode/loginvault/internal/api/grpc/server"
	"github.com/dtroode/loginvault/internal/api/httpapi"
	"github.com/dtroode/loginvault/internal/config"
	"github.com/dtroode/loginvault/internal/gate"
	"github.com/dtroode/loginvault/internal/logger"
	"github.com/dtroode/loginvault/internal/messaging"
	"github.com/dtroode/loginvault/internal/model"
	"github.com/dtroode/loginvault/internal/repository/memory"
	"github.com/dtroode/loginvault/internal/repository/postgres"
	"github.com/dtroode/loginvault/internal/repository/sqlite"
	"github.com/dtroode/loginvault/internal/server"
	"github.com/dtroode/loginvault/internal/service"
	"github.com/dtroode/loginvault/internal/session"
	storage "github.com/dtroode/loginvault/internal/storage/minio"
	"github.com/dtroode/loginvault/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	durable, readiness, closeDurable, err := openDurableStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize durable store", "backend", cfg.StoreBackend, "error", err)
	}
	defer func() {
		if err := closeDurable(); err != nil {
			logger.Error("failed to close durable store", "error", err)
		}
	}()

	var vault *service.Vault
	sess := session.NewStore(logger.With("component", "session"),
		session.WithIdleTimeout(cfg.Session.IdleTimeout),
		session.WithExpiryHook(func() { vault.LogState(ctx, "session expired") }),
	)
	defer sess.Close()

	keys := service.NewKeyManager(sess, cfg.Algorithm(), logger)
	vault = service.NewVault(durable, keys, logger)
	vault.LogState(ctx, "startup")

	go sess.Run(ctx, cfg.Session.SweepInterval)
	go lockOnSignal(ctx, sess, vault, logger)

	dispatcher := messaging.NewRouter(logger)
	dispatcher.Use(
		messaging.Logging(logger),
		gate.New(cfg.Sender.ExtensionID).Middleware(logger),
	)
	messaging.RegisterVault(dispatcher, vault, logger)

	tokens := token.NewJWT(cfg.Sender.TokenSecret, cfg.Sender.TokenTTL)

	grpcRouter := router.New(dispatcher, tokens, grpcctx.NewManager(), logger)
	s := grpcRouter.Register()
	reflection.Register(s)
	grpcRouter.SetServing(true)
	go grpcRouter.WatchReadiness(ctx, readiness, cfg.HealthCheckInterval)

	servers := []model.Server{grpcServer.NewGRPCServer(s, net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port))}
	if cfg.HTTP.ListenAddr != "" {
		servers = append(servers, httpapi.New(httpapi.Config{
			ListenAddr:   cfg.HTTP.ListenAddr,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			DrainTimeout: cfg.HTTP.DrainTimeout,
		}, httpapi.NewHandler(dispatcher, tokens, logger), readiness, logger))
	}

	var sl model.SecurityLayer

	if cfg.GRPC.EnableHTTPS {
		sl = server.NewTLSListener(cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	for _, srv := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
			}
		}(srv)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")
	grpcRouter.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, srv := range servers {
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", srv.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

// openDurableStore connects the configured backend and returns it with its
// readiness check and close function.
func openDurableStore(ctx context.Context, cfg *config.Config) (model.DurableStore, model.HealthChecker, func() error, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, nil, err
		}
		return postgres.NewStore(db), db, db.Close, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return sqlite.NewStore(db), db, db.Close, nil

	case config.BackendMinio:
		client, err := storage.Dial(storage.Options{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		store, err := storage.NewStore(ctx, client, cfg.Storage.Bucket, cfg.Storage.Object)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, func() error { return nil }, nil

	default:
		store := memory.NewStore()
		return store, store, func() error { return nil }, nil
	}
}

// lockOnSignal ends the session on SIGUSR1, which leaves saved credentials
// locked until the next save.
func lockOnSignal(ctx context.Context, sess *session.Store, vault *service.Vault, logger *logger.Logger) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	defer signal.Stop(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			logger.Info("session lock requested")
			sess.End()
			vault.LogState(ctx, "session locked")
		}
	}
}
