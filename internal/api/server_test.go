package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/hunter/pkg/config"
	"github.com/wonny/hunter/pkg/logger"
)

func TestServer_WriteTimeoutCoversScan(t *testing.T) {
	tests := []struct {
		name     string
		deadline time.Duration
		want     time.Duration
	}{
		{"long scan", 10 * time.Minute, 10*time.Minute + writeMargin},
		{"no deadline", 0, writeMargin},
		{"floor", -time.Minute, 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Port: "0", Scan: config.ScanConfig{Deadline: tt.deadline}}
			s := New(cfg, logger.Nop(), http.NewServeMux())

			assert.Equal(t, ":0", s.Addr())
			assert.Equal(t, tt.want, s.httpServer.WriteTimeout)
		})
	}
}

func TestServer_ListenServeShutdown(t *testing.T) {
	cfg := &config.Config{Port: "0", Env: "development"}
	s := New(cfg, logger.Nop(), newTestRouter(&fakeScanner{}))

	require.NoError(t, s.Listen())
	require.NoError(t, s.Listen(), "second Listen is a no-op")
	assert.NotEqual(t, ":0", s.Addr())

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	resp, err := http.Get(fmt.Sprintf("http://%s/health", s.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}

func TestServer_ListenBusyPort(t *testing.T) {
	first := New(&config.Config{Port: "0"}, logger.Nop(), http.NewServeMux())
	require.NoError(t, first.Listen())
	defer first.Shutdown(context.Background())

	_, port, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)

	second := New(&config.Config{Port: port}, logger.Nop(), http.NewServeMux())
	err = second.Listen()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}
