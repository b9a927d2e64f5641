package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

func newTestHandler(t *testing.T, origins ...string) (http.Handler, *metrics.Metrics) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "settleup.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwtManager, err := auth.NewJWTManager("test-secret", time.Hour)
	require.NoError(t, err)

	m := metrics.New()
	handler := NewHandler(Options{
		Store:          store,
		JWT:            jwtManager,
		Reducer:        calculator.NewReducer(calculator.ReducerConfig{}),
		Metrics:        m,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		AllowedOrigins: origins,
	})
	return handler, m
}

func TestNewHandler_EndToEnd(t *testing.T) {
	handler, _ := newTestHandler(t, "*")
	srv := httptest.NewServer(handler)
	defer srv.Close()
	ctx := context.Background()

	authClient := apiconnect.NewAuthServiceClient(srv.Client(), srv.URL)
	reg, err := authClient.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "alice@example.com",
		DisplayName: "Alice",
		Password:    "password123",
	}))
	require.NoError(t, err)

	groups := apiconnect.NewGroupServiceClient(srv.Client(), srv.URL)
	req := connect.NewRequest(&api.CreateGroupRequest{Name: "Trip", Members: []api.Member{{Name: "Bob"}}})
	req.Header().Set("Authorization", "Bearer "+reg.Msg.Token)
	created, err := groups.CreateGroup(ctx, req)
	require.NoError(t, err)
	assert.Len(t, created.Msg.Group.Members, 2)

	_, err = groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "settleup_rpc_requests_total")
}

func TestNewHandler_Healthz(t *testing.T) {
	handler, _ := newTestHandler(t)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{name: "wildcard", allowed: []string{"*"}, origin: "https://app.example.com", wantOrigin: "*", wantStatus: http.StatusOK},
		{name: "listed origin", allowed: []string{"https://app.example.com"}, origin: "https://app.example.com", wantOrigin: "https://app.example.com", wantStatus: http.StatusOK},
		{name: "unlisted origin", allowed: []string{"https://app.example.com"}, origin: "https://evil.example.com", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t, tt.allowed...)
			req := httptest.NewRequest(http.MethodOptions, apiconnect.GroupServiceCreateGroupProcedure, nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantOrigin != "" {
				assert.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Headers"), "Authorization"))
			}
		})
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	handler, _ := newTestHandler(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, ln, handler, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
