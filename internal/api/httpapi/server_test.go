package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/loginvault/internal/aead"
	"github.com/dtroode/loginvault/internal/gate"
	"github.com/dtroode/loginvault/internal/messaging"
	"github.com/dtroode/loginvault/internal/mocks"
	"github.com/dtroode/loginvault/internal/model"
	"github.com/dtroode/loginvault/internal/repository/memory"
	"github.com/dtroode/loginvault/internal/service"
	"github.com/dtroode/loginvault/internal/session"
	"github.com/dtroode/loginvault/internal/testutil"
	"github.com/dtroode/loginvault/internal/token"
)

const extID = "loginvault-extension"

func newTestServer(t *testing.T) (*Server, *token.JWT) {
	t.Helper()

	lg := testutil.MakeNoopLogger()
	sess := session.NewStore(lg)
	t.Cleanup(func() { _ = sess.Close() })

	vault := service.NewVault(memory.NewStore(), service.NewKeyManager(sess, aead.ChaCha20Poly1305, lg), lg)
	dispatcher := messaging.NewRouter(lg)
	dispatcher.Use(gate.New(extID).Middleware(lg))
	messaging.RegisterVault(dispatcher, vault, lg)

	tokens := token.NewJWT("secret", time.Minute)
	return New(Config{ListenAddr: "127.0.0.1:0"}, NewHandler(dispatcher, tokens, lg), nil, lg), tokens
}

func post(t *testing.T, h http.Handler, bearer string, body any) (int, map[string]json.RawMessage) {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/messages", bytes.NewReader(b))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestServer_Messages(t *testing.T) {
	t.Parallel()

	srv, tokens := newTestServer(t)
	h := srv.Router()

	ui, err := tokens.GenerateSenderToken(model.Sender{ExtensionID: extID, Surface: model.SurfaceUI})
	require.NoError(t, err)
	page, err := tokens.GenerateSenderToken(model.Sender{ExtensionID: extID, Surface: model.SurfacePage, URL: gate.TrustedPageOrigin + "index"})
	require.NoError(t, err)
	foreignExt, err := tokens.GenerateSenderToken(model.Sender{ExtensionID: "other-extension", Surface: model.SurfaceUI})
	require.NoError(t, err)

	code, resp := post(t, h, ui, map[string]any{
		"type":    "SAVE_CREDENTIALS",
		"payload": map[string]string{"companyCode": "1", "employeeCode": "2", "password": "p"},
	})
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `true`, string(resp["result"]))

	code, resp = post(t, h, page, map[string]any{"type": "GET_CREDENTIALS"})
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"companyCode":"1","employeeCode":"2","password":"p"}`, string(resp["result"]))

	code, resp = post(t, h, page, map[string]any{"type": "GET_SAVED_CODES"})
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"companyCode":"1","employeeCode":"2"}`, string(resp["result"]))

	for _, bearer := range []string{"", "garbage", foreignExt} {
		code, resp = post(t, h, bearer, map[string]any{"type": "GET_CREDENTIALS"})
		assert.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `null`, string(resp["result"]))
	}

	code, resp = post(t, h, page, map[string]any{"type": "CLEAR_CREDENTIALS"})
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `null`, string(resp["result"]))

	code, resp = post(t, h, ui, map[string]any{"type": "CREDENTIALS_EXIST"})
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `true`, string(resp["result"]))
}

func TestServer_UndecodableSavePayload(t *testing.T) {
	t.Parallel()

	srv, tokens := newTestServer(t)
	h := srv.Router()

	ui, err := tokens.GenerateSenderToken(model.Sender{ExtensionID: extID, Surface: model.SurfaceUI})
	require.NoError(t, err)

	code, resp := post(t, h, ui, map[string]any{"type": "SAVE_CREDENTIALS", "payload": "not an object"})
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `false`, string(resp["result"]))

	code, resp = post(t, h, "", map[string]any{"type": "SAVE_CREDENTIALS", "payload": "not an object"})
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `null`, string(resp["result"]))
}

func TestServer_BadRequests(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	h := srv.Router()

	code, resp := post(t, h, "", map[string]any{"type": "DELETE_EVERYTHING"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.JSONEq(t, `"unknown message type"`, string(resp["error"]))

	code, _ = post(t, h, "", map[string]any{"payload": map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, code)

	req := httptest.NewRequest(http.MethodPost, "/v1/messages", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_DispatchError(t *testing.T) {
	t.Parallel()

	d := mocks.NewDispatcher(t)
	d.On("Dispatch", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
	lg := testutil.MakeNoopLogger()
	srv := New(Config{}, NewHandler(d, token.NewJWT("secret", time.Minute), lg), nil, lg)

	code, resp := post(t, srv.Router(), "", map[string]any{"type": "CREDENTIALS_EXIST"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.JSONEq(t, `"internal server error"`, string(resp["error"]))
}

func statusOf(h http.Handler, path string) int {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code
}

func TestServer_HealthChecks(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	h := srv.Router()

	assert.Equal(t, http.StatusOK, statusOf(h, "/livez"))
	assert.Equal(t, http.StatusOK, statusOf(h, "/readyz"))

	require.NoError(t, srv.Stop(context.Background()))

	assert.Equal(t, http.StatusOK, statusOf(h, "/livez"))
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(h, "/readyz"))
}

func TestServer_ReadinessFollowsStore(t *testing.T) {
	t.Parallel()

	lg := testutil.MakeNoopLogger()
	checker := mocks.NewHealthChecker(t)
	checker.On("Ping", mock.Anything).Return(errors.New("connection refused")).Once()
	checker.On("Ping", mock.Anything).Return(nil).Once()

	srv := New(Config{}, NewHandler(mocks.NewDispatcher(t), token.NewJWT("secret", time.Minute), lg), checker, lg)
	h := srv.Router()

	assert.Equal(t, http.StatusServiceUnavailable, statusOf(h, "/readyz"))
	assert.Equal(t, http.StatusOK, statusOf(h, "/readyz"))
	assert.Equal(t, http.StatusOK, statusOf(h, "/livez"))
}

func TestServer_StartStop(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	sec := mocks.NewSecurityLayer(t)
	sec.On("Listen", "tcp", "127.0.0.1:0").Return(nil, errors.New("denied"))

	err := srv.Start(sec)
	require.Error(t, err)
	assert.Equal(t, "127.0.0.1:0", srv.Address())
}
