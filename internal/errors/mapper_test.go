package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

func TestMap(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"record not found", gorm.ErrRecordNotFound, codes.NotFound},
		{"wrapped item not found", fmt.Errorf("load: %w", ErrItemNotFound), codes.NotFound},
		{"zero top-up", ErrZeroTopUp, codes.InvalidArgument},
		{"no offering items", ErrNoOfferingItems, codes.FailedPrecondition},
		{"not owner", ErrNotItemOwner, codes.PermissionDenied},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"retryable write", NewRetryable("record swipe", errors.New("db down")), codes.Unavailable},
		{"unknown", errors.New("boom"), codes.Internal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, status.Code(Map(tc.err)))
		})
	}
}

func TestMap_PassesThroughStatus(t *testing.T) {
	in := InvalidArgument("bad id")
	assert.Equal(t, in, Map(in))
	assert.Nil(t, Map(nil))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrNegativeTopUp))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(NewRetryable("create match", errors.New("x"))))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrNoOfferingItems))
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
}

func TestNewRetryable_NilStaysNil(t *testing.T) {
	assert.NoError(t, NewRetryable("op", nil))
	assert.False(t, IsRetryable(errors.New("plain")))
}
