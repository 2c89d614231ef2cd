// Package manager coordinates the lifecycle of scope configurations: loading
// them from YAML files, validating them, registering them in a thread-safe
// registry, watching the source for changes, and persisting a last-known-good
// snapshot for fail-closed recovery.
//
// The manager is the only component that mutates the active scope set. All
// reads go through the registry, which hands out deep copies so callers can
// never observe a partially applied reload.
//
// Reloads are atomic with error recovery: if a changed file fails to parse or
// validate, the previous scope set stays active and the error is reported.
package manager
