package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/itemmanager/apiserver/config"
	"github.com/itemmanager/apiserver/internal/auth"
	"github.com/itemmanager/apiserver/internal/db"
	"github.com/itemmanager/apiserver/internal/logging"
	"github.com/itemmanager/apiserver/internal/services"
	"github.com/itemmanager/apiserver/internal/store"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

type testAPI struct {
	handler http.Handler
	tokens  *auth.TokenService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "items.db"),
	}
	require.NoError(t, db.MigrateUp(cfg))
	conn, err := db.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	log := logging.NewNop()
	tokens := auth.NewTokenService(testSecret, auth.NewMemoryRevocationList())
	authService := services.NewAuthService(store.NewUserRepository(conn), tokens)
	itemService := services.NewItemService(store.NewItemRepository(conn), nil, log)

	r := chi.NewRouter()
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)
	r.Get("/", Root)
	r.Get("/healthz", Healthz(conn))
	r.Route("/api/auth", func(r chi.Router) {
		AuthRouter(r, authService, tokens, log)
	})
	r.Route("/api/items", func(r chi.Router) {
		ItemRouter(r, itemService, RequireToken(tokens, auth.TokenTypeAccess, log), log)
	})

	return &testAPI{handler: r, tokens: tokens}
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// register creates a@b.com and returns its session.
func (a *testAPI) register(t *testing.T) SessionResponse {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/auth/register", "",
		`{"email":"a@b.com","password":"pw123456","name":"A"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[SessionResponse](t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &value), rec.Body.String())
	return value
}

func newRequest(method, path, authorization string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return req
}

func serve(api *testAPI, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	return rec
}
