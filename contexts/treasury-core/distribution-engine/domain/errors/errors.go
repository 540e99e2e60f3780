package errors

import "errors"

var (
	ErrInvalidDistribution   = errors.New("invalid distribution request")
	ErrEmptySnapshot         = errors.New("holder snapshot has no holders")
	ErrSnapshotNotFound      = errors.New("holder snapshot not found")
	ErrSnapshotExists        = errors.New("holder snapshot already exists")
	ErrUnknownAdvisoryAction = errors.New("unknown advisory action")
)
