package router

import (
	"context"
	"strings"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/loginvault/internal/api/grpc/handler"
	"github.com/dtroode/loginvault/internal/api/grpc/middleware"
	"github.com/dtroode/loginvault/internal/api/grpc/vaultpb"
	"github.com/dtroode/loginvault/internal/logger"
	"github.com/dtroode/loginvault/internal/model"
)

// Router builds the gRPC server for the vault service.
type Router struct {
	dispatcher     handler.Dispatcher
	tokens         model.SenderTokenManager
	contextManager model.SenderContextManager
	health         *health.Server
	logger         *logger.Logger
}

// New creates new gRPC Router instance.
func New(
	dispatcher handler.Dispatcher,
	tokens model.SenderTokenManager,
	contextManager model.SenderContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		dispatcher:     dispatcher,
		tokens:         tokens,
		contextManager: contextManager,
		health:         health.NewServer(),
		logger:         logger,
	}
}

// attributed selects the calls that need a sender. Health checks do not.
func attributed(_ context.Context, c interceptors.CallMeta) bool {
	return strings.HasPrefix(c.FullMethod(), "/"+vaultpb.ServiceName+"/")
}

// Register builds a gRPC server with recovery, logging and sender
// attribution interceptors, and registers the vault and health services.
func (r *Router) Register() *grpc.Server {
	recovered := middleware.NewRecovery(r.logger)
	logging := middleware.NewLogging(r.logger)
	attribute := middleware.NewAttributeSender(r.tokens, r.contextManager, r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(recovery.WithRecoveryHandlerContext(recovered.HandlePanic)),
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(attribute.AuthFunc),
				selector.MatchFunc(attributed),
			),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recovery.WithRecoveryHandlerContext(recovered.HandlePanic)),
		),
	)

	vaultpb.RegisterVaultServer(s, handler.NewVault(r.dispatcher, r.contextManager, r.logger))
	healthpb.RegisterHealthServer(s, r.health)

	return s
}

// SetServing flips the health status of the vault service.
func (r *Router) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	r.health.SetServingStatus(vaultpb.ServiceName, st)
	r.health.SetServingStatus("", st)
}

// WatchReadiness pings checker every interval and mirrors the result in the
// health status until ctx is done.
func (r *Router) WatchReadiness(ctx context.Context, checker model.HealthChecker, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := true
	for {
		err := r.ping(ctx, checker, interval)
		if ctx.Err() != nil {
			return
		}

		switch {
		case err != nil && serving:
			r.logger.Warn("durable store unreachable, reporting not serving", "error", err)
		case err == nil && !serving:
			r.logger.Info("durable store reachable again, reporting serving")
		}
		serving = err == nil
		r.SetServing(serving)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *Router) ping(ctx context.Context, checker model.HealthChecker, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return checker.Ping(ctx)
}

// Shutdown reports not serving and ignores later status updates.
func (r *Router) Shutdown() {
	r.health.Shutdown()
}
