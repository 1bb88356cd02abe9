package hub

import (
	"errors"
	"strings"
)

// The typed error taxonomy from spec §7. HTTP and WebDAV boundaries map
// these onto status codes; neither layer invents its own classification.
var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrBadGateway     = errors.New("bad gateway")
	ErrTimeout        = errors.New("timeout")
	ErrNotImplemented = errors.New("not implemented")
	ErrGeneralFailure = errors.New("general failure")
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
)

// classifyRemoteError maps a remote-reported error string onto a typed
// error by substring match, per spec §4.D: "not found"/"NotFound" →
// NotFound; "permission"/"Permission" → Forbidden; otherwise →
// GeneralFailure.
func classifyRemoteError(msg string) error {
	switch {
	case strings.Contains(msg, "not found"), strings.Contains(msg, "NotFound"):
		return ErrNotFound
	case strings.Contains(msg, "permission"), strings.Contains(msg, "Permission"):
		return ErrForbidden
	default:
		return ErrGeneralFailure
	}
}
