package gateway

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
	"github.com/custodia-labs/weldsafe/internal/logger"
)

// statusFor maps a service error to an HTTP status and a client-safe message.
// Provider and storage details never reach the client.
func statusFor(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "invalid request"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrRetrievalInconsistency),
		errors.Is(err, domain.ErrIndexLoad),
		errors.Is(err, domain.ErrIndexNotBuilt):
		return fiber.StatusServiceUnavailable, "index unavailable"
	case errors.Is(err, domain.ErrEmbeddingCall),
		errors.Is(err, domain.ErrGenerationCall),
		errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrRateLimited):
		return fiber.StatusBadGateway, "upstream provider failed"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "timed out"
	default:
		return fiber.StatusInternalServerError, "internal error"
	}
}

// errorHandler is the fiber ErrorHandler: every failure becomes an ErrorResponse.
func errorHandler(c *fiber.Ctx, err error) error {
	code, message := statusFor(err)
	resp := ErrorResponse{
		Error:     message,
		RequestID: requestIDOf(c),
	}
	if kind := domain.KindOf(err); kind != 0 {
		resp.Kind = kind.String()
	}
	if code >= fiber.StatusInternalServerError {
		logger.Error("%s %s (request %s): %v", c.Method(), c.Path(), resp.RequestID, err)
	}
	return c.Status(code).JSON(resp)
}
