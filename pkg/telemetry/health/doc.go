// Package health provides liveness, readiness, and version endpoints for the
// trust core sidecar.
//
// # Endpoints
//
//   - /health: Liveness probe. Reports ok while the process is running.
//   - /ready: Readiness probe. Runs every registered check and returns 503
//     until all of them pass.
//   - /version: Build information.
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("termset", health.TermSetCheck(store))
//	checker.RegisterCheck("dictionary", health.DictionaryFileCheck(path))
//
//	mux := http.NewServeMux()
//	health.Register(mux, checker, cfg.Telemetry.Health, health.NewVersionInfo(version, commit, date))
//
// Readiness fails while no term set is loaded or the loaded set is empty, so
// traffic is only routed to instances that can actually reject content.
package health
