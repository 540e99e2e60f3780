package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	treasuryerrors "seneschal/contexts/treasury-core/treasury-service/domain/errors"
	treasuryhttp "seneschal/contexts/treasury-core/treasury-service/transport/http"
)

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request) {
	var req treasuryhttp.DeployRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTreasuryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.treasury.Handler.DeployHandler(r.Context(), req)
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBurn(w http.ResponseWriter, r *http.Request) {
	var req treasuryhttp.BurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTreasuryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.treasury.Handler.BurnHandler(r.Context(), req)
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBuyback(w http.ResponseWriter, r *http.Request) {
	var req treasuryhttp.BuybackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTreasuryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.treasury.Handler.BuybackHandler(r.Context(), req)
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req treasuryhttp.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTreasuryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.treasury.Handler.ClaimHandler(r.Context(), req)
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	resp, err := s.treasury.Handler.BalancesHandler(r.Context())
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefreshBalances(w http.ResponseWriter, r *http.Request) {
	resp, err := s.treasury.Handler.RefreshBalancesHandler(r.Context())
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeTreasuryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, treasuryerrors.ErrInvalidTreasuryInput):
		writeTreasuryError(w, http.StatusBadRequest, "invalid_treasury_input", err.Error())
	case errors.Is(err, treasuryerrors.ErrBalancesNotCached):
		writeTreasuryError(w, http.StatusNotFound, "balances_not_cached", err.Error())
	default:
		writeTreasuryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeTreasuryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, treasuryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
