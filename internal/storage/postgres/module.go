package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// Module provides Storage and exposes each repository it backs.
var Module = fx.Module("postgres",
	fx.Provide(
		newStorage,
		func(s *Storage) repository.Factory { return s },
		func(f repository.Factory) repository.UserRepository { return f.Users() },
		func(f repository.Factory) repository.ProductRepository { return f.Products() },
		func(f repository.Factory) repository.InventoryLedger { return f.Inventory() },
		func(f repository.Factory) repository.OrderRepository { return f.Orders() },
	),
	fx.Invoke(registerLifecycle),
)

type storageParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newStorage(p storageParams) (*Storage, error) {
	return New(p.Ctx, p.Config.DatabaseURI, p.Logger.With(slog.String("component", "postgres")))
}

// registerLifecycle refuses to start against an unreachable database and
// closes the pool on shutdown.
func registerLifecycle(lc fx.Lifecycle, storage *Storage) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := storage.HealthCheck(ctx); err != nil {
				return fmt.Errorf("postgres unreachable: %w", err)
			}
			return nil
		},
		OnStop: func(context.Context) error {
			storage.Close()
			return nil
		},
	})
}
