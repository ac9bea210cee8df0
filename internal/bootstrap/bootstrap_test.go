package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-ui-client/config"
	"github.com/target/mmk-ui-client/internal/adapters/memory"
	"github.com/target/mmk-ui-client/internal/domain/auth"
	"github.com/target/mmk-ui-client/internal/events"
	"github.com/target/mmk-ui-client/internal/session"
	"github.com/target/mmk-ui-client/internal/testutil"
)

func TestInitLogger_FormatAndLevel(t *testing.T) {
	prev := slogDefault()
	t.Cleanup(func() { restoreDefault(prev) })

	var buf bytes.Buffer
	logger := initLogger(&buf, config.LogConfig{Level: "warn", Format: config.LogFormatJSON})
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "v", line["k"])

	buf.Reset()
	logger = initLogger(&buf, config.LogConfig{Level: "debug", Format: config.LogFormatText})
	logger.Debug("text line")
	assert.Contains(t, buf.String(), "msg=\"text line\"")
}

func TestLoadConfig_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("API_BASE_URL=https://dotenv.example.com\nSTORAGE_BACKEND=memory\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("API_BASE_URL", "")
	require.NoError(t, os.Unsetenv("API_BASE_URL"))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://dotenv.example.com", cfg.API.BaseURL)
	assert.Equal(t, config.StorageBackendMemory, cfg.Storage.Backend)
}

func TestConnectStorage(t *testing.T) {
	ctx := context.Background()

	res, err := ConnectStorage(ctx, config.AppConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.Storage{}, res.Storage)
	require.NoError(t, res.Close())

	mr := miniredis.RunT(t)
	cfg := config.AppConfig{
		Storage: config.StorageConfig{Backend: config.StorageBackendRedis, KeyPrefix: "cli:"},
		Redis:   config.RedisConfig{Addr: mr.Addr()},
	}
	res, err = ConnectStorage(ctx, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, res.Storage.Set(ctx, session.KeyToken, "abc"))
	got, err := mr.Get("cli:token")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
	require.NoError(t, res.Close())
}

func TestConnectRedis_Failures(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := ConnectRedis(context.Background(), config.RedisConfig{Addr: addr})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")

	_, err = ConnectRedis(context.Background(), config.RedisConfig{UseSentinel: true, SentinelNodes: []string{addr}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "master name")
}

func TestNewClients_RestoresSessionAndWires(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewBackend(t)
	backend.JSON(http.MethodGet, "/auth/profile", http.StatusOK, map[string]any{"success": true, "user": map[string]any{"id": "1"}})

	storage := memory.NewStorage()
	require.NoError(t, storage.Set(ctx, session.KeyToken, "persisted"))
	require.NoError(t, storage.Set(ctx, session.KeyUser, `{"id":"1"}`))

	cfg := config.AppConfig{API: config.APIConfig{BaseURL: backend.URL()}}
	clients, err := NewClients(ctx, ClientsOptions{Config: cfg, Storage: storage})
	require.NoError(t, err)
	t.Cleanup(func() { _ = clients.Close() })

	assert.True(t, clients.Auth.IsAuthenticated())
	assert.Equal(t, auth.Record{"id": "1"}, clients.Auth.CurrentUser())
	assert.Same(t, clients.Admin.Roles(), clients.Roles)

	var got []string
	clients.Bus.SubscribeFunc(events.AuthProfile.Success(), func(_ context.Context, topic string, _ events.Payload) error {
		got = append(got, topic)
		return nil
	})

	resp := clients.Auth.GetProfile(ctx)
	require.True(t, resp.Success)
	assert.Equal(t, "Bearer persisted", backend.LastRequest().Header.Get("Authorization"))
	assert.Equal(t, []string{events.AuthProfile.Success()}, got)
}

func TestNewClients_InvalidBaseURL(t *testing.T) {
	_, err := NewClients(context.Background(), ClientsOptions{
		Config:  config.AppConfig{API: config.APIConfig{BaseURL: "not a url"}},
		Storage: memory.NewStorage(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create api transport")
}

func TestNewClients_CorruptSessionStartsUnauthenticated(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStorage()
	require.NoError(t, storage.Set(ctx, session.KeyToken, "t"))
	require.NoError(t, storage.Set(ctx, session.KeyUser, "{not json"))

	clients, err := NewClients(ctx, ClientsOptions{
		Config:  config.AppConfig{API: config.APIConfig{BaseURL: "http://localhost:1"}},
		Storage: storage,
	})
	require.NoError(t, err)
	assert.False(t, clients.Auth.IsAuthenticated())
}

func TestNewClients_MetricsEnabled(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pc.Close() })

	backend := testutil.NewBackend(t)
	backend.JSON(http.MethodGet, "/api/admin/stats", http.StatusOK, map[string]any{"success": true})

	cfg := config.AppConfig{
		API:     config.APIConfig{BaseURL: backend.URL()},
		Metrics: config.MetricsConfig{Enabled: true, StatsdAddress: pc.LocalAddr().String(), Prefix: "cli"},
	}
	clients, err := NewClients(context.Background(), ClientsOptions{Config: cfg, Storage: memory.NewStorage()})
	require.NoError(t, err)
	require.NotNil(t, clients.Metrics)

	require.True(t, clients.Admin.GetSystemStats(context.Background()).Success)

	buf := make([]byte, 512)
	require.NoError(t, pc.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := pc.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, "cli.client.request:1|c|#operation:admin:stats,result:success", string(buf[:n]))

	require.NoError(t, clients.Close())
}

func TestNewClients_MetricsDisabledByDefault(t *testing.T) {
	clients, err := NewClients(context.Background(), ClientsOptions{
		Config:  config.AppConfig{API: config.APIConfig{BaseURL: "http://localhost:1"}},
		Storage: memory.NewStorage(),
	})
	require.NoError(t, err)
	assert.Nil(t, clients.Metrics)
	assert.NoError(t, clients.Close())
}
