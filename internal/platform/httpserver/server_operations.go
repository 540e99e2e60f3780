package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	ledgererrors "seneschal/contexts/treasury-core/operation-ledger/domain/errors"
	ledgerhttp "seneschal/contexts/treasury-core/operation-ledger/transport/http"
)

func (s *Server) handleListOperations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := ledgerhttp.ListOperationsRequest{
		Kind:    query.Get("kind"),
		AssetID: query.Get("asset_id"),
	}
	if limitRaw := query.Get("limit"); limitRaw != "" {
		limit, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeLedgerError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		req.Limit = limit
	}
	if offsetRaw := query.Get("offset"); offsetRaw != "" {
		offset, err := strconv.Atoi(offsetRaw)
		if err != nil {
			writeLedgerError(w, http.StatusBadRequest, "invalid_offset", "offset must be an integer")
			return
		}
		req.Offset = offset
	}

	resp, err := s.ledger.Handler.ListOperationsHandler(r.Context(), req)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetOperation(w http.ResponseWriter, r *http.Request) {
	recordID := r.PathValue("record_id")
	resp, err := s.ledger.Handler.GetOperationHandler(r.Context(), recordID)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := 0
	offset := 0
	if limitRaw := query.Get("limit"); limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil {
			writeLedgerError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}
	if offsetRaw := query.Get("offset"); offsetRaw != "" {
		parsed, err := strconv.Atoi(offsetRaw)
		if err != nil {
			writeLedgerError(w, http.StatusBadRequest, "invalid_offset", "offset must be an integer")
			return
		}
		offset = parsed
	}

	resp, err := s.ledger.Handler.ListAuditHandler(r.Context(), limit, offset)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrOperationNotFound):
		writeLedgerError(w, http.StatusNotFound, "operation_not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrAuditEntryNotFound):
		writeLedgerError(w, http.StatusNotFound, "audit_entry_not_found", err.Error())
	case errors.Is(err, ledgererrors.ErrInvalidOperation):
		writeLedgerError(w, http.StatusBadRequest, "invalid_operation", err.Error())
	case errors.Is(err, ledgererrors.ErrRecordTerminal):
		writeLedgerError(w, http.StatusConflict, "record_terminal", err.Error())
	case errors.Is(err, ledgererrors.ErrOperationExists):
		writeLedgerError(w, http.StatusConflict, "operation_exists", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
