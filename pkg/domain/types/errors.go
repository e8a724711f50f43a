package types

import "github.com/m-mizutani/goerr/v2"

// Error kinds surfaced by the mirror pipeline. Every failure returned from a
// use case carries exactly one of these tags.
var (
	ErrTagAuthFailure     = goerr.NewTag("auth_failure")
	ErrTagNotFound        = goerr.NewTag("not_found")
	ErrTagNameConflict    = goerr.NewTag("name_conflict")
	ErrTagRemoteService   = goerr.NewTag("remote_service_error")
	ErrTagPathCollision   = goerr.NewTag("path_collision")
	ErrTagCancelled       = goerr.NewTag("cancelled")
	ErrTagStructural      = goerr.NewTag("structural_error")
	ErrTagInvalidArgument = goerr.NewTag("invalid_argument")
)

// ErrorKind returns the name of the error kind tagged on err, or
// "internal_error" when err carries none of the known tags.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case goerr.HasTag(err, ErrTagCancelled):
		return "cancelled"
	case goerr.HasTag(err, ErrTagAuthFailure):
		return "auth_failure"
	case goerr.HasTag(err, ErrTagNotFound):
		return "not_found"
	case goerr.HasTag(err, ErrTagNameConflict):
		return "name_conflict"
	case goerr.HasTag(err, ErrTagPathCollision):
		return "path_collision"
	case goerr.HasTag(err, ErrTagStructural):
		return "structural_error"
	case goerr.HasTag(err, ErrTagInvalidArgument):
		return "invalid_argument"
	case goerr.HasTag(err, ErrTagRemoteService):
		return "remote_service_error"
	default:
		return "internal_error"
	}
}
