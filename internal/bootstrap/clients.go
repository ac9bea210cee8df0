package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/mmk-ui-client/config"
	"github.com/target/mmk-ui-client/internal/adapters/httpapi"
	"github.com/target/mmk-ui-client/internal/events"
	"github.com/target/mmk-ui-client/internal/observability/statsd"
	"github.com/target/mmk-ui-client/internal/ports"
	"github.com/target/mmk-ui-client/internal/service"
	"github.com/target/mmk-ui-client/internal/session"
)

// ClientsOptions groups dependencies for NewClients.
type ClientsOptions struct {
	Config config.AppConfig
	Logger *slog.Logger
	// Storage overrides the configured storage backend when set.
	Storage ports.KeyValueStore
}

// Clients holds the wired session, event bus and API clients.
type Clients struct {
	Session    *session.Store
	Bus        *events.Bus
	Auth       *service.AuthClient
	Admin      *service.AdminClient
	Roles      *service.RolesClient
	Categories *service.CategoriesClient
	Directory  *service.UsersDirectory
	// Metrics is nil unless metrics are enabled.
	Metrics    *statsd.Client

	closeStorage func() error
}

// NewClients connects storage, restores the persisted session and wires every client
// to one transport, session and bus.
func NewClients(ctx context.Context, opts ClientsOptions) (*Clients, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	storage := StorageResult{Storage: opts.Storage, Close: func() error { return nil }}
	if storage.Storage == nil {
		var err error
		storage, err = ConnectStorage(ctx, opts.Config, logger)
		if err != nil {
			return nil, fmt.Errorf("connect storage: %w", err)
		}
	}

	sess := session.NewStore(session.StoreOptions{Storage: storage.Storage, Logger: logger})
	if err := sess.Restore(ctx); err != nil {
		logger.WarnContext(ctx, "could not restore persisted session; starting unauthenticated", "error", err)
	}

	transport, err := httpapi.NewClient(httpapi.Config{
		BaseURL:      opts.Config.API.BaseURL,
		Timeout:      opts.Config.API.Timeout,
		UserAgent:    opts.Config.API.UserAgent,
		MaxBodyBytes: opts.Config.API.MaxBodyBytes,
		Tokens:       sess,
		Logger:       logger,
	})
	if err != nil {
		if cerr := storage.Close(); cerr != nil {
			logger.WarnContext(ctx, "close storage", "error", cerr)
		}
		return nil, fmt.Errorf("create api transport: %w", err)
	}

	bus := events.NewBus(events.BusOptions{Logger: logger})
	clientOpts := service.ClientOptions{
		Transport: transport,
		Session:   sess,
		Events:    bus,
		Logger:    logger,
	}
	metricsSink := connectMetrics(ctx, opts.Config.Metrics, logger)
	if metricsSink != nil {
		clientOpts.Metrics = metricsSink
	}
	admin := service.NewAdminClient(clientOpts)

	return &Clients{
		Session:      sess,
		Bus:          bus,
		Auth:         service.NewAuthClient(clientOpts),
		Admin:        admin,
		Roles:        admin.Roles(),
		Categories:   service.NewCategoriesClient(clientOpts),
		Directory:    service.NewUsersDirectory(service.UsersDirectoryOptions{Transport: transport, Logger: logger}),
		Metrics:      metricsSink,
		closeStorage: storage.Close,
	}, nil
}

// Close releases the storage connection and the metrics socket.
func (c *Clients) Close() error {
	var errs []error
	if err := c.Metrics.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close metrics: %w", err))
	}
	if c.closeStorage != nil {
		if err := c.closeStorage(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}

// connectMetrics dials StatsD when enabled. A dial failure is logged and metrics stay
// off; it never blocks the clients from starting.
func connectMetrics(ctx context.Context, cfg config.MetricsConfig, logger *slog.Logger) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}
	client, err := statsd.Dial(ctx, statsd.Config{
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}
