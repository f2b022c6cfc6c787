package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/eventdeck/eventdeck/internal/config"
	"github.com/eventdeck/eventdeck/internal/database"
	"github.com/eventdeck/eventdeck/internal/event_bus"
	"github.com/eventdeck/eventdeck/internal/firebase"
	"github.com/eventdeck/eventdeck/internal/jobs"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, storage, router, and server lifecycle.
type Application struct {
	cfg       config.Application
	router    *mux.Router
	srv       *http.Server
	deps      *Dependencies
	db        *pgxpool.Pool
	backend   *firebase.Backend
	scheduler *jobs.Scheduler
	redis     *redis.Client
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context, configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	a := &Application{cfg: cfg}

	if cfg.NeedsDatabase() {
		if err := database.Migrate(cfg.Database); err != nil {
			return nil, err
		}
		a.db, err = database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
	}
	if cfg.NeedsFirebase() {
		a.backend = firebase.NewBackend(cfg.Firebase)
	}

	bus := event_bus.NewEventBus()

	deps, err := BuildDependencies(ctx, cfg, a.db, a.backend, bus)
	if err != nil {
		a.release()
		return nil, err
	}
	a.deps = deps

	if cfg.Jobs.Enabled {
		a.scheduler, err = jobs.NewScheduler(cfg.Jobs, deps.SessionPurger, deps.FavoriteService)
		if err != nil {
			a.release()
			return nil, err
		}
	}

	if cfg.Redis.Enabled {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	r := mux.NewRouter()
	SetupMiddleware(r, deps)
	RegisterRoutes(r, deps)
	a.router = r

	a.srv = newServer(fmt.Sprintf(":%d", cfg.Port), r)

	return a, nil
}

// newServer builds the HTTP server. Request contexts derive from a base context cancelled when
// Shutdown starts, so long-lived event streams end instead of holding the shutdown.
// WriteTimeout is lifted per request by the event stream handler.
func newServer(addr string, handler http.Handler) *http.Server {
	base, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Handler:      handler,
		Addr:         addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	srv.BaseContext = func(net.Listener) context.Context {
		return base
	}
	srv.RegisterOnShutdown(cancel)
	return srv
}

// Run starts the background workers and the HTTP server, blocking until ctx is done
// or the server fails. Shutdown drains in-flight requests for up to 10 seconds.
func (a *Application) Run(ctx context.Context) error {
	defer a.release()

	if a.scheduler != nil {
		a.scheduler.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			a.scheduler.Stop(stopCtx)
		}()
	}

	if a.redis != nil {
		bridge := event_bus.NewRedisBridge(a.deps.Bus, a.redis, a.cfg.Redis.Channel, instanceOrigin())
		unsubscribe := bridge.Forward(event_bus.EventChangeTypes...)
		defer unsubscribe()
		go func() {
			if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("redis bridge stopped: %v", err)
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		serverErr <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (a *Application) release() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warnf("closing redis client: %v", err)
		}
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			log.Warnf("closing firebase backend: %v", err)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

func instanceOrigin() string {
	host, err := os.Hostname()
	if err != nil {
		host = "eventdeck"
	}
	return host + "-" + uuid.NewString()
}
