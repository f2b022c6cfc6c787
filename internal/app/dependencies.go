package app

import (
	"context"
	"fmt"

	"github.com/eventdeck/eventdeck/internal/config"
	"github.com/eventdeck/eventdeck/internal/event_bus"
	"github.com/eventdeck/eventdeck/internal/firebase"
	"github.com/eventdeck/eventdeck/internal/utils"
	"github.com/eventdeck/eventdeck/pkg/event"
	"github.com/eventdeck/eventdeck/pkg/favorite"
	"github.com/eventdeck/eventdeck/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus *event_bus.EventBus

	AuthService   user.Service
	SessionPurger user.SessionPurger
	UserHandler   *user.Handler

	EventRepo    event.Repository
	EventService *event.ServiceImpl
	EventHandler *event.Handler

	FavoriteRepo    favorite.Repository
	FavoriteService *favorite.ServiceImpl
	FavoriteHandler *favorite.Handler
}

// BuildDependencies picks the auth provider and store from cfg and wires services and handlers.
// db is nil unless a component needs Postgres, backend is nil unless one needs Firebase.
func BuildDependencies(ctx context.Context, cfg config.Application, db *pgxpool.Pool, backend *firebase.Backend, bus *event_bus.EventBus) (*Dependencies, error) {
	var (
		auth         user.Service
		purger       user.SessionPurger
		eventRepo    event.Repository
		watcher      event.Watcher
		favoriteRepo favorite.Repository
	)

	switch cfg.Auth.Provider {
	case config.AuthLocal:
		if cfg.Auth.TokenSecret == "" {
			return nil, fmt.Errorf("auth.tokensecret is required for the local auth provider")
		}
		local := user.NewLocalAuth(user.NewRepository(db), cfg.Auth.TokenSecret, cfg.Auth.SessionTTL, utils.SystemClock{})
		auth, purger = local, local
	case config.AuthFirebase:
		authClient, err := backend.Auth(ctx)
		if err != nil {
			return nil, err
		}
		toolkit, err := backend.IdentityToolkit(ctx)
		if err != nil {
			return nil, err
		}
		auth = user.NewFirebaseAuth(user.NewToolkitClient(toolkit), authClient)
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
	}

	switch cfg.Store.Backend {
	case config.StorePostgres:
		eventRepo = event.NewRepository(db)
		favoriteRepo = favorite.NewRepository(db)
		watcher = event.NewBusWatcher(eventRepo, bus)
	case config.StoreFirestore:
		client, err := backend.Firestore(ctx)
		if err != nil {
			return nil, err
		}
		eventRepo = event.NewFirestoreRepository(client)
		favoriteRepo = favorite.NewFirestoreRepository(client)
		watcher = event.NewFirestoreWatcher(client)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	deps := newDependencies(bus, auth, eventRepo, watcher, favoriteRepo)
	deps.SessionPurger = purger
	return deps, nil
}

func newDependencies(bus *event_bus.EventBus, auth user.Service, eventRepo event.Repository, watcher event.Watcher, favoriteRepo favorite.Repository) *Dependencies {
	deps := &Dependencies{Bus: bus}

	deps.AuthService = auth
	deps.UserHandler = user.NewHandler(auth)

	deps.EventRepo = eventRepo
	deps.EventService = event.NewService(eventRepo, watcher, bus)
	deps.EventHandler = event.NewHandler(deps.EventService)

	deps.FavoriteRepo = favoriteRepo
	deps.FavoriteService = favorite.NewService(favoriteRepo, deps.EventService, bus)
	deps.FavoriteHandler = favorite.NewHandler(deps.FavoriteService)

	return deps
}
