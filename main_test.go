package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rzane/advanced-demo/internal/config"
	"github.com/rzane/advanced-demo/internal/db"
	"github.com/rzane/advanced-demo/internal/places"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRouter(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: db.NewLogger("silent")})
	require.NoError(t, err)

	prev := db.DB
	db.DB = d
	t.Cleanup(func() {
		db.DB = prev
		_ = db.Close(d)
	})
	require.NoError(t, places.Init())

	srv := httptest.NewServer(NewRouter(cfg))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_Routes(t *testing.T) {
	srv := setupRouter(t, config.Config{AllowedOrigins: []string{"https://cities.example"}})

	for _, path := range []string{"/", "/cities", "/states", "/healthz"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("Content-Type"))
		})
	}

	resp, err := http.Get(srv.URL + "/counties")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_CORS(t *testing.T) {
	srv := setupRouter(t, config.Config{AllowedOrigins: []string{"https://cities.example"}})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/states", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://cities.example")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "https://cities.example", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	srv := setupRouter(t, config.Config{RateLimitRPS: 0.001, RateLimitBurst: 1})

	first, err := http.Get(srv.URL + "/states")
	require.NoError(t, err)
	first.Body.Close()
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second, err := http.Get(srv.URL + "/states")
	require.NoError(t, err)
	second.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	setupRouter(t, config.Config{})
	require.NoError(t, db.Close(db.DB))

	rec := httptest.NewRecorder()
	HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServe_ListenFailureReturns(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := &http.Server{Addr: ln.Addr().String(), Handler: http.NotFoundHandler()}

	err = serve(context.Background(), srv)
	assert.Error(t, err)
}

func TestServe_StopsWhenContextDone(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, serve(ctx, srv))
}
