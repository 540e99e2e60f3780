package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	distributionengine "seneschal/contexts/treasury-core/distribution-engine"
	operationledger "seneschal/contexts/treasury-core/operation-ledger"
	treasuryservice "seneschal/contexts/treasury-core/treasury-service"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "seneschal/internal/platform/httpserver/docs"
)

type Server struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	addr         string
	ledger       operationledger.Module
	distribution distributionengine.Module
	treasury     treasuryservice.Module
}

func New(
	ledger operationledger.Module,
	distribution distributionengine.Module,
	treasury treasuryservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:          http.NewServeMux(),
		logger:       logger,
		addr:         addr,
		ledger:       ledger,
		distribution: distribution,
		treasury:     treasury,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /operation/deploy", s.handleDeploy)
	s.mux.HandleFunc("POST /operation/burn", s.handleBurn)
	s.mux.HandleFunc("POST /operation/buyback", s.handleBuyback)
	s.mux.HandleFunc("POST /operation/claim", s.handleClaim)
	s.mux.HandleFunc("POST /operation/distribute", s.handleDistribute)

	s.mux.HandleFunc("GET /operations", s.handleListOperations)
	s.mux.HandleFunc("GET /operations/{record_id}", s.handleGetOperation)
	s.mux.HandleFunc("GET /audit", s.handleListAudit)

	s.mux.HandleFunc("POST /snapshots/{asset_id}", s.handleCaptureSnapshot)
	s.mux.HandleFunc("GET /snapshots/{snapshot_id}", s.handleGetSnapshot)

	s.mux.HandleFunc("GET /treasury/balances", s.handleGetBalances)
	s.mux.HandleFunc("POST /treasury/balances/refresh", s.handleRefreshBalances)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
