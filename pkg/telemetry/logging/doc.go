// Package logging provides structured logging with location and PII
// redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Redaction of true coordinates, addresses, and contact data
//   - Context-aware logging with request and trace IDs
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logger.InfoContext(ctx, "public location computed",
//	    "lat", truePoint.Lat, // replaced with [REDACTED]
//	    "duration_ms", 3,
//	)
//
// Components that accept a *slog.Logger get logger.Slog(); redaction is
// part of its handler, so it applies there too.
//
// # Redaction
//
// Values of sensitive keys (lat, lng, address, location_key, email, ...)
// are replaced entirely. Other string and error values are scanned:
//
//   - Coordinate pairs: 52.520008, 13.404954 → [coordinates]
//   - Emails: user@example.com → [email]
//   - Street addresses: Hauptstraße 12 → [address]
//   - Phone numbers: +49 30 1234567 → [phone]
package logging
