package admin

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-sitetheme/pkg/layout"
	"github.com/goliatone/go-sitetheme/pkg/menu"
	"github.com/goliatone/go-sitetheme/pkg/style"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

func badRequest(err error) error {
	return StatusError{Code: http.StatusBadRequest, Err: err}
}

// statusOf maps action errors to response codes.
func statusOf(err error) int {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr) && httpErr != nil:
		return httpErr.StatusCode()
	case errors.Is(err, menu.ErrNotFound), errors.Is(err, style.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, menu.ErrInvalidParent),
		errors.Is(err, menu.ErrOrderMismatch),
		errors.Is(err, menu.ErrInvalidItem),
		errors.Is(err, style.ErrNoParams),
		errors.Is(err, style.ErrInvalidParams),
		errors.Is(err, layout.ErrEmptyLayout),
		errors.Is(err, layout.ErrInvalidColumnLayout),
		errors.Is(err, layout.ErrComponentAreaTaken):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
