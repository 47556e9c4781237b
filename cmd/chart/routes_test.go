package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-price-chart/internal/chart"
	"solana-price-chart/internal/domain"
	"solana-price-chart/internal/eventloop"
	"solana-price-chart/internal/render"
	"solana-price-chart/internal/theme"
)

const (
	testMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	testPool = "58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2"
)

type stubResolver struct{ remembered []domain.TokenIdentity }

func (r *stubResolver) Resolve(_ context.Context, mint string) (domain.TokenIdentity, error) {
	return domain.TokenIdentity{Mint: mint, Pool: testPool}, nil
}

func (r *stubResolver) Remember(_ context.Context, id domain.TokenIdentity) {
	r.remembered = append(r.remembered, id)
}

type stubHistory struct{}

func (stubHistory) Load(context.Context, string) ([]domain.PricePoint, error) {
	return []domain.PricePoint{
		{Time: 1700000000, Value: 0.0001},
		{Time: 1700000300, Value: 0.0001234},
	}, nil
}

type idleFeed struct{}

func (idleFeed) Start() error                 { return nil }
func (idleFeed) Stop()                        {}
func (idleFeed) State() domain.TransportState { return domain.TransportIdle }

func newTestApp(t *testing.T) (*App, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loop := eventloop.New()
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(cancel)

	app := NewApp(AppConfig{
		Loop:     loop,
		Resolver: &stubResolver{},
		History:  stubHistory{},
		Feeds: func(domain.TokenIdentity, func(domain.Tick), func(from, to domain.TransportState)) chart.Feed {
			return idleFeed{}
		},
		Theme:  theme.NewSignal(true),
		Width:  800,
		Height: 400,
		Logger: zerolog.Nop(),
	})

	server := httptest.NewServer(app.Router())
	t.Cleanup(server.Close)
	return app, server
}

func getStatus(t *testing.T, server *httptest.Server) StatusView {
	t.Helper()
	resp, err := http.Get(server.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view StatusView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	return view
}

// phase reads the status phase without failing the test, for Eventually.
func phase(server *httptest.Server) string {
	resp, err := http.Get(server.URL + "/status")
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	var view StatusView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return ""
	}
	return view.Phase
}

func TestRoutes_Health(t *testing.T) {
	_, server := newTestApp(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoutes_MountAndInspect(t *testing.T) {
	_, server := newTestApp(t)

	resp, err := http.Get(server.URL + "/chart")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Equal(t, "idle", getStatus(t, server).Phase)

	resp, err = http.Post(server.URL+"/token", "application/json", strings.NewReader(`{"mint":"`+testMint+`"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	require.Eventually(t, func() bool {
		return phase(server) == "ready"
	}, 2*time.Second, 10*time.Millisecond)

	view := getStatus(t, server)
	assert.Equal(t, testMint, view.Mint)
	assert.Equal(t, testPool, view.Pool)
	assert.Equal(t, 2, view.Points)
	assert.Equal(t, "0.0001234", view.LastPrice)
	assert.True(t, view.Dark)

	resp, err = http.Get(server.URL + "/chart")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap render.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Len(t, snap.Points, 2)
	assert.Equal(t, theme.Resolve(true), snap.Palette)
}

func TestRoutes_Theme(t *testing.T) {
	app, server := newTestApp(t)
	require.NoError(t, app.Open(context.Background(), testMint, testPool))
	require.Eventually(t, func() bool {
		return phase(server) == "ready"
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Post(server.URL+"/theme", "application/json", strings.NewReader(`{"dark":false}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	snap, ok := app.Snapshot()
	require.True(t, ok)
	assert.Equal(t, theme.Resolve(false), snap.Palette)
	assert.False(t, getStatus(t, server).Dark)

	resp, err = http.Post(server.URL+"/theme", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoutes_InvalidToken(t *testing.T) {
	_, server := newTestApp(t)

	resp, err := http.Post(server.URL+"/token", "application/json", strings.NewReader(`{"mint":"`+testMint+`","pool":"bad"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, err = http.Post(server.URL+"/token", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
