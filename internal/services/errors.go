package services

import "errors"

var (
	ErrEmptyMessage      = errors.New("message content is empty")
	ErrUserNotFound      = errors.New("user not found")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrForbidden         = errors.New("workspace belongs to another user")
	ErrTurnInFlight      = errors.New("a turn is already being processed for this workspace")
	ErrInvalidSignature  = errors.New("invalid payment signature")
	ErrExportUnavailable = errors.New("object storage is not configured")
)
