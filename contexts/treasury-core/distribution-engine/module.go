package distributionengine

import (
	"log/slog"

	httpadapter "seneschal/contexts/treasury-core/distribution-engine/adapters/http"
	"seneschal/contexts/treasury-core/distribution-engine/adapters/memory"
	application "seneschal/contexts/treasury-core/distribution-engine/application"
	"seneschal/contexts/treasury-core/distribution-engine/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Ledger    ports.Ledger
	Gateway   ports.TransferGateway
	Holders   ports.HolderSource
	Snapshots ports.SnapshotRepository
	Pacer     ports.Pacer
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Identity  ports.TreasuryIdentity
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Ledger:    deps.Ledger,
		Gateway:   deps.Gateway,
		Holders:   deps.Holders,
		Snapshots: deps.Snapshots,
		Pacer:     deps.Pacer,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Identity:  deps.Identity,
		Logger:    deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

// NewInMemoryModule wires a memory snapshot store and a zero-delay pacer
// around the externally supplied ledger and gateway.
func NewInMemoryModule(
	ledger ports.Ledger,
	gateway ports.TransferGateway,
	holders ports.HolderSource,
	identity ports.TreasuryIdentity,
	logger *slog.Logger,
) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Ledger:    ledger,
		Gateway:   gateway,
		Holders:   holders,
		Snapshots: store,
		Pacer:     application.NopPacer{},
		Clock:     store,
		IDGen:     store,
		Identity:  identity,
		Logger:    logger,
	})
	module.Store = store
	return module
}
