package errors

import "errors"

var (
	ErrOperationNotFound   = errors.New("operation record not found")
	ErrOperationExists     = errors.New("operation record already exists")
	ErrAuditEntryNotFound  = errors.New("audit entry not found")
	ErrInvalidOperation    = errors.New("invalid operation input")
	ErrRecordTerminal      = errors.New("operation record is already terminal")
	ErrOutcomeCountMismatch = errors.New("outcome count does not match recipient count")
)
