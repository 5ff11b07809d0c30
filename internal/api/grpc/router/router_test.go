package router

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	grpcctx "github.com/dtroode/loginvault/internal/api/grpc/context"
	"github.com/dtroode/loginvault/internal/api/grpc/vaultpb"
	"github.com/dtroode/loginvault/internal/aead"
	"github.com/dtroode/loginvault/internal/gate"
	"github.com/dtroode/loginvault/internal/messaging"
	"github.com/dtroode/loginvault/internal/model"
	"github.com/dtroode/loginvault/internal/repository/memory"
	"github.com/dtroode/loginvault/internal/service"
	"github.com/dtroode/loginvault/internal/session"
	"github.com/dtroode/loginvault/internal/testutil"
	"github.com/dtroode/loginvault/internal/token"
)

const extID = "loginvault-extension"

type env struct {
	client vaultpb.VaultClient
	health healthpb.HealthClient
	tokens *token.JWT
	router *Router
}

func newEnv(t *testing.T) *env {
	t.Helper()

	lg := testutil.MakeNoopLogger()
	sess := session.NewStore(lg)
	t.Cleanup(func() { _ = sess.Close() })

	vault := service.NewVault(memory.NewStore(), service.NewKeyManager(sess, aead.AESGCM, lg), lg)
	dispatcher := messaging.NewRouter(lg)
	dispatcher.Use(messaging.Logging(lg), gate.New(extID).Middleware(lg))
	messaging.RegisterVault(dispatcher, vault, lg)

	tokens := token.NewJWT("secret", time.Minute)
	r := New(dispatcher, tokens, grpcctx.NewManager(), lg)
	s := r.Register()

	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &env{
		client: vaultpb.NewVaultClient(conn),
		health: healthpb.NewHealthClient(conn),
		tokens: tokens,
		router: r,
	}
}

func (e *env) as(t *testing.T, sender model.Sender) context.Context {
	t.Helper()
	tok, err := e.tokens.GenerateSenderToken(sender)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+tok)
}

func isNull(v *structpb.Value) bool {
	_, ok := v.GetKind().(*structpb.Value_NullValue)
	return ok
}

func TestRouter_VaultOverGRPC(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ui := e.as(t, model.Sender{ExtensionID: extID, Surface: model.SurfaceUI})
	trusted := e.as(t, model.Sender{ExtensionID: extID, Surface: model.SurfacePage, URL: gate.TrustedPageOrigin + "login"})
	foreign := e.as(t, model.Sender{ExtensionID: extID, Surface: model.SurfacePage, URL: "https://evil.example.com/"})

	payload, err := structpb.NewStruct(map[string]any{
		"companyCode":  "12345",
		"employeeCode": "67890",
		"password":     "hunter2",
	})
	require.NoError(t, err)

	saved, err := e.client.SaveCredentials(ui, payload)
	require.NoError(t, err)
	assert.True(t, saved.GetBoolValue())

	exists, err := e.client.CredentialsExist(ui, &emptypb.Empty{})
	require.NoError(t, err)
	assert.True(t, exists.GetBoolValue())

	creds, err := e.client.GetCredentials(trusted, &emptypb.Empty{})
	require.NoError(t, err)
	fields := creds.GetStructValue().GetFields()
	assert.Equal(t, "12345", fields["companyCode"].GetStringValue())
	assert.Equal(t, "67890", fields["employeeCode"].GetStringValue())
	assert.Equal(t, "hunter2", fields["password"].GetStringValue())

	denied, err := e.client.GetCredentials(foreign, &emptypb.Empty{})
	require.NoError(t, err)
	assert.True(t, isNull(denied))

	anonymous, err := e.client.GetSavedCodes(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.True(t, isNull(anonymous))

	pageSave, err := e.client.SaveCredentials(trusted, payload)
	require.NoError(t, err)
	assert.True(t, isNull(pageSave))

	cleared, err := e.client.ClearCredentials(ui, &emptypb.Empty{})
	require.NoError(t, err)
	assert.True(t, cleared.GetBoolValue())

	after, err := e.client.GetCredentials(ui, &emptypb.Empty{})
	require.NoError(t, err)
	assert.True(t, isNull(after))
}

func TestRouter_InvalidTokenIsNotRejected(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer garbage")

	got, err := e.client.CredentialsExist(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	assert.True(t, isNull(got))
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.router.SetServing(true)

	resp, err := e.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: vaultpb.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	e.router.SetServing(false)
	resp, err = e.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: vaultpb.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

type switchableChecker struct {
	err atomic.Error
}

func (c *switchableChecker) Ping(context.Context) error {
	return c.err.Load()
}

func TestRouter_WatchReadiness(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	checker := &switchableChecker{}
	checker.err.Store(errors.New("connection refused"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.router.WatchReadiness(ctx, checker, 10*time.Millisecond)
	}()

	status := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := e.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: vaultpb.ServiceName})
		if err != nil {
			return healthpb.HealthCheckResponse_UNKNOWN
		}
		return resp.GetStatus()
	}

	assert.Eventually(t, func() bool {
		return status() == healthpb.HealthCheckResponse_NOT_SERVING
	}, time.Second, 5*time.Millisecond)

	checker.err.Store(nil)
	assert.Eventually(t, func() bool {
		return status() == healthpb.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	e.router.Shutdown()
	e.router.SetServing(true)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status())
}
