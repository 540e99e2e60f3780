package operationledger

import (
	"log/slog"

	httpadapter "seneschal/contexts/treasury-core/operation-ledger/adapters/http"
	"seneschal/contexts/treasury-core/operation-ledger/adapters/memory"
	application "seneschal/contexts/treasury-core/operation-ledger/application"
	"seneschal/contexts/treasury-core/operation-ledger/ports"
)

type Module struct {
	Service application.Service
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository  ports.Repository
	Audit       ports.AuditRepository
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	ServiceName string
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:        deps.Repository,
		Audit:       deps.Audit,
		Outbox:      deps.Outbox,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		ServiceName: deps.ServiceName,
		Logger:      deps.Logger,
	}
	return Module{
		Service: service,
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(serviceName string, logger *slog.Logger) Module {
	store := memory.NewStore(nil)
	module := NewModule(Dependencies{
		Repository:  store,
		Audit:       store,
		Outbox:      store,
		Clock:       store,
		IDGen:       store,
		ServiceName: serviceName,
		Logger:      logger,
	})
	module.Store = store
	return module
}
