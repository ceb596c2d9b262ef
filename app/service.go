// Package app wires the dispatch engine together from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/api"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/config"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/dispatch"
	coregeo "github.com/ChrisCryptoBot/meddropdispatch-sub004/core/geo"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/notify"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/route"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/storage"
	infrageo "github.com/ChrisCryptoBot/meddropdispatch-sub004/infra/geo"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/infra/logger"
	infranotify "github.com/ChrisCryptoBot/meddropdispatch-sub004/infra/notify"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/infra/storage/memory"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/infra/storage/postgres"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/internal/eventbus"
)

// Service owns the HTTP server and the resources behind it.
type Service struct {
	server   *http.Server
	bus      eventbus.EventBus
	notifier notify.Notifier
	pool     *pgxpool.Pool
	cache    *infrageo.CachedProvider
	log      logger.Logger
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	svc := &Service{log: logg}

	var loads storage.LoadStore
	var drivers storage.DriverStore
	var distance coregeo.DistanceProvider

	if cfg.Demo {
		store := memory.NewStore()
		SeedDemo(store)
		loads, drivers = store, store
		distance = DemoDistances()
		logg.Infof("demo mode: using in-memory store and static distances")
	} else {
		pool, err := postgres.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		svc.pool = pool
		store := postgres.NewStore(pool)
		loads, drivers = store, store

		provider, err := infrageo.NewHTTPProvider(cfg.Distance)
		if err != nil {
			return nil, fmt.Errorf("distance provider: %w", err)
		}
		distance = provider
		if cfg.Redis.Addr != "" {
			cached := infrageo.NewCachedProvider(provider, cfg.Redis, logg)
			svc.cache = cached
			distance = cached
		}
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.MQTT.Broker != "" {
		n, err := infranotify.NewMQTTNotifier(cfg.MQTT, logg)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		notifier = n
	}
	svc.notifier = notifier

	bus := eventbus.New()
	svc.bus = bus

	coordinator, err := dispatch.NewCoordinator(loads, drivers, bus, notifier, logg)
	if err != nil {
		return nil, err
	}
	conflicts := dispatch.NewConflictDetector(loads)
	scorer := dispatch.NewScorer(cfg.Dispatch, distance, conflicts, logg)
	matcher, err := dispatch.NewMatcher(loads, drivers, scorer, logg)
	if err != nil {
		return nil, err
	}
	sequencer, err := route.NewSequencer(cfg.Route, distance, logg)
	if err != nil {
		return nil, err
	}

	handler := api.NewHandler(coordinator, matcher, sequencer, loads, drivers, bus, logg)
	svc.server = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewRouter(handler, logg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return svc, nil
}

// Run serves HTTP until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var first error
	if s.notifier != nil {
		if err := s.notifier.Close(); err != nil && first == nil {
			first = err
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil && first == nil {
			first = err
		}
	}
	if s.bus != nil {
		s.bus.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return first
}
