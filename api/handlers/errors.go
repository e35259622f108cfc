// ABOUTME: Error handling utilities for API handlers
// ABOUTME: Converts domain errors to appropriate HTTP responses

package handlers

import (
	stderrors "errors"

	"mememe-api/core/errors"

	"github.com/danielgtaylor/huma/v2"
)

// toHumaError converts domain errors to appropriate Huma HTTP errors
func toHumaError(err error) error {
	if err == nil {
		return nil
	}

	if stderrors.Is(err, errors.ErrNoCatalog) {
		return huma.Error503ServiceUnavailable("Template catalog unavailable, try again later")
	}

	if apiErr, ok := errors.AsExternalAPI(err); ok {
		switch {
		case apiErr.StatusCode >= 500:
			return huma.Error503ServiceUnavailable("External service error", err)
		case apiErr.StatusCode == 429:
			return huma.Error503ServiceUnavailable("Rate limited by external service", err)
		default:
			return huma.Error502BadGateway("Unexpected external service response", err)
		}
	}

	return huma.Error500InternalServerError("Internal server error", err)
}
