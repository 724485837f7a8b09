// Package errors contains domain-specific errors for the guard domain
package errors

import (
	pkgerrors "github.com/groupwarden/groupwarden/pkg/errors"
)

// Domain errors for guard operations
var (
	ErrSettingsNotFound   = pkgerrors.NewNotFoundError("group settings not found")
	ErrWarningNotFound    = pkgerrors.NewNotFoundError("warning record not found")
	ErrMessageNotCached   = pkgerrors.NewNotFoundError("message not in shadow cache")
	ErrPollNotFound       = pkgerrors.NewNotFoundError("no active poll in this chat")
	ErrPollAlreadyRunning = pkgerrors.NewConflictError("a poll is already running in this chat")
	ErrPollExpired        = pkgerrors.NewNotFoundError("poll has expired")
	ErrUnknownOption      = pkgerrors.NewValidationError("unknown poll option")
	ErrBadSchedule        = pkgerrors.NewValidationError("invalid schedule specification")
	ErrBadTimeOfDay       = pkgerrors.NewValidationError("invalid time, expected HH:MM")
	ErrCommandNotFound    = pkgerrors.NewNotFoundError("command not found")
	ErrNotAuthorized      = pkgerrors.NewPermissionError("not authorized")
	ErrMediaUnavailable   = pkgerrors.NewNotFoundError("media payload unavailable")
)
