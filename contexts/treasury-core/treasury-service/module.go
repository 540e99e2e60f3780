package treasuryservice

import (
	"log/slog"

	httpadapter "seneschal/contexts/treasury-core/treasury-service/adapters/http"
	"seneschal/contexts/treasury-core/treasury-service/adapters/memory"
	application "seneschal/contexts/treasury-core/treasury-service/application"
	"seneschal/contexts/treasury-core/treasury-service/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Cache   *memory.Cache
}

type Dependencies struct {
	Ledger   ports.Ledger
	Gateway  ports.OperationGateway
	Cache    ports.BalanceCache
	Identity ports.TreasuryIdentity
	Clock    ports.Clock
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Ledger:   deps.Ledger,
		Gateway:  deps.Gateway,
		Cache:    deps.Cache,
		Identity: deps.Identity,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

// NewInMemoryModule wires the in-process balance cache around the supplied
// ledger and gateway.
func NewInMemoryModule(
	ledger ports.Ledger,
	gateway ports.OperationGateway,
	identity ports.TreasuryIdentity,
	logger *slog.Logger,
) Module {
	cache := memory.NewCache()
	module := NewModule(Dependencies{
		Ledger:   ledger,
		Gateway:  gateway,
		Cache:    cache,
		Identity: identity,
		Clock:    cache,
		Logger:   logger,
	})
	module.Cache = cache
	return module
}
