// Package errors holds the domain error taxonomy and its translation to gRPC
// and HTTP statuses so services stay free of transport concerns.
package errors

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/rafipicu1/bartertalco-sub000/internal/utils/pagination"
)

var (
	ErrNoOfferingItems      = errors.New("user has no active items to offer")
	ErrItemNotFound         = errors.New("item not found")
	ErrItemInactive         = errors.New("item is not active")
	ErrNotItemOwner         = errors.New("item is not owned by user")
	ErrOwnItem              = errors.New("cannot act on your own item")
	ErrInvalidDirection     = errors.New("invalid swipe direction")
	ErrInvalidKind          = errors.New("invalid negotiation kind")
	ErrInvalidTopUpSide     = errors.New("invalid top-up direction")
	ErrZeroTopUp            = errors.New("top-up amount must be greater than zero for a value-adjusted offer")
	ErrNegativeTopUp        = errors.New("top-up amount must not be negative")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("user is not a participant of the conversation")
	ErrEmptyMessage         = errors.New("message content is empty")
)

// Retryable wraps a failed critical-path write (swipe record, match/conversation
// create) so callers can tell the user to retry the same action.
type Retryable struct {
	Op  string
	Err error
}

func (e *Retryable) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Retryable) Unwrap() error { return e.Err }

// NewRetryable wraps err as a retryable failure of op. Nil stays nil.
func NewRetryable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Retryable{Op: op, Err: err}
}

// IsRetryable reports whether err is a retryable write failure.
func IsRetryable(err error) bool {
	var r *Retryable
	return errors.As(err, &r)
}

// Map converts repo/infra errors into gRPC-friendly status errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if s, ok := status.FromError(err); ok && s.Code() != codes.Unknown {
		return err // already a status
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, ErrItemNotFound),
		errors.Is(err, ErrConversationNotFound):
		return status.Error(codes.NotFound, err.Error())

	case errors.Is(err, ErrInvalidDirection),
		errors.Is(err, ErrInvalidKind),
		errors.Is(err, ErrInvalidTopUpSide),
		errors.Is(err, ErrZeroTopUp),
		errors.Is(err, ErrNegativeTopUp),
		errors.Is(err, ErrEmptyMessage),
		errors.Is(err, ErrOwnItem),
		errors.Is(err, pagination.ErrInvalidToken):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, ErrNoOfferingItems),
		errors.Is(err, ErrItemInactive):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, ErrNotItemOwner),
		errors.Is(err, ErrNotParticipant):
		return status.Error(codes.PermissionDenied, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	case IsRetryable(err):
		return status.Error(codes.Unavailable, err.Error())

	default:
		// fallback → bubble up error message for debugging
		return status.Error(codes.Internal, err.Error())
	}
}

// HTTPStatus maps the same taxonomy onto HTTP status codes for the REST gateway.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch status.Code(Map(err)) {
	case codes.NotFound:
		return http.StatusNotFound
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.FailedPrecondition:
		return http.StatusConflict
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.Canceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}

// AlreadyExists creates a gRPC AlreadyExists error.
func AlreadyExists(msg string) error {
	return status.Error(codes.AlreadyExists, msg)
}
