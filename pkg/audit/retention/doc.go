// Package retention enforces retention policies on the decision audit trail.
// The Pruner deletes records older than a configured age and caps the total
// record count; the Scheduler runs it on a cron schedule.
package retention
