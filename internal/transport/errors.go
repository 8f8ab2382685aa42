package transport

import (
	"context"
	"errors"
	"net/http"

	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/goodnatureofminers/btcgraph/internal/graph/store"
)

// statusCode maps service errors onto HTTP response codes.
func statusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, codec.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound), errors.Is(err, codec.ErrNoSuchPath):
		return http.StatusNotFound
	case errors.Is(err, codec.ErrIntegrity), errors.Is(err, codec.ErrMalformedEncoding):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
