package errors

import (
	"context"
	"errors"
	"net"
)

// MapTransportError maps failures raised while performing a request to AppError instances.
//   - context.DeadlineExceeded or a net timeout → Timeout
//   - context.Canceled → Canceled
//   - anything else → Transport
//
// AppErrors pass through unchanged.
func MapTransportError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out",
			Cause:   err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{
			Code:    ErrCodeCanceled,
			Message: "Request was canceled",
			Cause:   err,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &AppError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out",
			Cause:   err,
		}
	}

	return &AppError{
		Code:    ErrCodeTransport,
		Message: "Network error",
		Cause:   err,
	}
}
