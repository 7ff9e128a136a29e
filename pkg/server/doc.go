// Package server provides the trust core HTTP sidecar.
//
// The sidecar exposes the content filter and the location obfuscator to
// services that cannot link the Go packages directly.
//
// # Endpoints
//
//	POST /v1/content/validate  {"title": "...", "description": "..."}
//	POST /v1/content/check     {"text": "..."}
//	POST /v1/location/public   {"key": "...", "lat": 52.52, "lng": 13.40}
//	                           {"address": "...", "owner_id": "...", "lat": ..., "lng": ...}
//	GET  /health, /ready, /version, /metrics
//
// Content endpoints answer 200 {"valid": true} for clean content and 422
// {"valid": false, "category": "profanity"} for a violation. The matched term
// is added as "violating_term" only when safety.expose_terms is enabled.
//
// Invalid location arguments answer 400 with the offending field name. The
// response never echoes the rejected value, and the true coordinates are
// never logged.
//
// # Middleware
//
// From outermost: panic recovery, X-Request-ID propagation, request
// logging. Each API route additionally gets a server span, a body size
// limit (server.max_body_bytes), and request metrics.
//
// # Usage
//
//	srv, err := server.NewServer(cfg, server.Dependencies{
//		Store:     store,
//		Checker:   checker,
//		Collector: collector,
//		Tracer:    tracer,
//		Logger:    logger,
//	})
//	if err != nil {
//		return err
//	}
//	return srv.Start(ctx) // returns after ctx is cancelled
package server
