package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	distributionerrors "seneschal/contexts/treasury-core/distribution-engine/domain/errors"
	distributionhttp "seneschal/contexts/treasury-core/distribution-engine/transport/http"
	ledgererrors "seneschal/contexts/treasury-core/operation-ledger/domain/errors"
)

func (s *Server) handleDistribute(w http.ResponseWriter, r *http.Request) {
	var req distributionhttp.DistributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDistributionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.distribution.Handler.DistributeHandler(r.Context(), req)
	if err != nil {
		writeDistributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCaptureSnapshot(w http.ResponseWriter, r *http.Request) {
	assetID := r.PathValue("asset_id")
	resp, err := s.distribution.Handler.CaptureSnapshotHandler(r.Context(), assetID)
	if err != nil {
		writeDistributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshotID := r.PathValue("snapshot_id")
	resp, err := s.distribution.Handler.GetSnapshotHandler(r.Context(), snapshotID)
	if err != nil {
		writeDistributionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeDistributionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, distributionerrors.ErrInvalidDistribution):
		writeDistributionError(w, http.StatusBadRequest, "invalid_distribution", err.Error())
	case errors.Is(err, distributionerrors.ErrEmptySnapshot):
		writeDistributionError(w, http.StatusUnprocessableEntity, "empty_snapshot", err.Error())
	case errors.Is(err, distributionerrors.ErrSnapshotNotFound):
		writeDistributionError(w, http.StatusNotFound, "snapshot_not_found", err.Error())
	case errors.Is(err, distributionerrors.ErrSnapshotExists):
		writeDistributionError(w, http.StatusConflict, "snapshot_exists", err.Error())
	case errors.Is(err, ledgererrors.ErrRecordTerminal):
		writeDistributionError(w, http.StatusConflict, "record_terminal", err.Error())
	default:
		writeDistributionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeDistributionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, distributionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
