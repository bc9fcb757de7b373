package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/sidepot/internal/apperr"
	"github.com/mmynk/sidepot/internal/auth"
)

// toConnectError maps domain errors to Connect codes. Validation reasons
// pass through verbatim; unexpected errors become CodeInternal.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, apperr.ErrNotSignedIn):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, apperr.ErrForbidden):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, apperr.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case apperr.IsValidation(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrUsernameExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return connect.NewError(connect.CodeUnauthenticated, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}
