package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/drivemirror/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// classify wraps err with the error kind derived from the GitHub response.
// The decoded error body is kept as the "payload" value.
func classify(err error, msg string, opts ...goerr.Option) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return goerr.Wrap(err, msg, append(opts, goerr.T(types.ErrTagCancelled))...)
	}

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return goerr.Wrap(err, msg, append(opts, goerr.T(types.ErrTagRemoteService))...)
	}

	var respErr *github.ErrorResponse
	if !errors.As(err, &respErr) {
		return goerr.Wrap(err, msg, append(opts, goerr.T(types.ErrTagRemoteService))...)
	}

	status := 0
	if respErr.Response != nil {
		status = respErr.Response.StatusCode
	}
	opts = append(opts, goerr.V("status", status), goerr.V("payload", payloadOf(respErr)))

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return goerr.Wrap(err, msg, append(opts, goerr.T(types.ErrTagAuthFailure))...)
	case status == http.StatusNotFound:
		return goerr.Wrap(err, msg, append(opts, goerr.T(types.ErrTagNotFound))...)
	case status == http.StatusUnprocessableEntity && isNameConflict(respErr):
		return goerr.Wrap(err, msg, append(opts, goerr.T(types.ErrTagNameConflict))...)
	default:
		return goerr.Wrap(err, msg, append(opts, goerr.T(types.ErrTagRemoteService))...)
	}
}

func isNameConflict(respErr *github.ErrorResponse) bool {
	for _, e := range respErr.Errors {
		if e.Field == "name" && strings.Contains(e.Message, "already exists") {
			return true
		}
	}
	return strings.Contains(respErr.Message, "name already exists")
}

func payloadOf(respErr *github.ErrorResponse) string {
	raw, err := json.Marshal(respErr)
	if err != nil {
		return respErr.Message
	}
	return string(raw)
}
