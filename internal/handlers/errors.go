package handlers

import (
	"context"
	stderrors "errors"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/source"
)

// appError maps errors returned by the dashboard service to API errors.
func appError(err error) *errors.AppError {
	var appErr *errors.AppError
	switch {
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.Is(err, models.ErrInvalidFilter):
		return errors.ValidationWrap(err, err.Error())
	case stderrors.Is(err, source.ErrUpstream):
		return errors.UpstreamWrap(err, "Sales API unavailable")
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(err, errors.CodeServiceUnavail, "Request timed out")
	default:
		return errors.InternalWrap(err, "An unexpected error occurred")
	}
}
