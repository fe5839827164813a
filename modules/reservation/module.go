package reservation

import (
	"context"
	"fmt"

	"court-reservation-api/core/config"
	"court-reservation-api/core/database"
	"court-reservation-api/core/metrics"
	"court-reservation-api/core/middleware"
	coremongo "court-reservation-api/core/mongo"
	"court-reservation-api/modules/reservation/controller"
	"court-reservation-api/modules/reservation/repository"
	"court-reservation-api/modules/reservation/router"
	"court-reservation-api/modules/reservation/service"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Stores bundles the connections a slot backend may be built on. Unused
// fields are nil.
type Stores struct {
	DB    database.IDatabase
	Redis *redis.Client
	Mongo *coremongo.Client
}

func NewSlotBackend(ctx context.Context, cfg *config.Config, stores Stores) (repository.SlotBackend, error) {
	switch cfg.Reservation.Store {
	case "memory":
		return repository.NewMemoryBackend(), nil
	case "redis":
		if stores.Redis == nil {
			return nil, fmt.Errorf("redis slot store needs a redis client")
		}
		return repository.NewRedisBackend(stores.Redis), nil
	case "postgres":
		if stores.DB == nil {
			return nil, fmt.Errorf("postgres slot store needs a database")
		}
		return repository.NewPostgresBackend(stores.DB), nil
	case "mongo":
		if stores.Mongo == nil {
			return nil, fmt.Errorf("mongo slot store needs a mongo client")
		}
		backend := repository.NewMongoBackend(stores.Mongo.Collection(cfg.Mongo.Collection))
		if err := backend.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown reservation store %q", cfg.Reservation.Store)
	}
}

// NewLocker shares the per-team lock through redis when it is available.
func NewLocker(cfg *config.Config, client *redis.Client) repository.Locker {
	if client != nil {
		return repository.NewRedisLocker(client, cfg.Reservation.LockTTL)
	}
	return repository.NewMemoryLocker()
}

func NewService(
	cfg *config.Config,
	store repository.SlotStore,
	locker repository.Locker,
	teams service.TeamDirectory,
	scheduler service.PromotionScheduler,
	m *metrics.Metrics,
) *service.ReservationService {
	return service.NewReservationService(store, locker, teams, scheduler, m, cfg.Reservation)
}

func Init(e *echo.Echo, svc service.ReservationServiceInterface, mw *middleware.Middleware) {
	ctrl := controller.NewReservationController(svc)
	router.NewReservationRouter(ctrl).Setup(e, mw)
}
