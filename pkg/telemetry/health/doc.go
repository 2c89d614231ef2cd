// Package health exposes liveness and readiness probes for the meridian
// daemon. Liveness only confirms the process is running; readiness runs the
// registered component checks (scope manager load state, audit storage
// connectivity) and degrades when any of them fail, so orchestrators can
// hold traffic until scopes are loaded.
package health
