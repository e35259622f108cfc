// Package api provides the HTTP API layer for MemeMe.
// It uses the Huma framework on a chi router for OpenAPI documentation
// and request validation.
//
// # Architecture
//
// - server.go: Huma API configuration and middleware
// - handlers/: Template catalog and health handlers
// - dto/: Response objects and mappers from domain types
// - middleware/: Request logging and per-IP rate limiting
//
// The OpenAPI document is served at /openapi.json and the docs UI at /docs.
//
// # Usage Example
//
//	humaAPI, router := api.NewAPIWithMiddleware(api.APIConfig{
//	    Logger:      logger,
//	    RateLimiter: ratelimit.NewLimiter(store, logger, 10, time.Minute),
//	})
//
//	handlers.NewTemplatesHandler(catalogService).RegisterRoutes(humaAPI)
//	http.ListenAndServe(":8000", router)
//
// # Error Handling
//
// Errors use the RFC 7807 problem format. A catalog that cannot be built
// maps to 503; upstream failures map to 502 or 503.
package api
