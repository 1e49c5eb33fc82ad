// Package migration executes queue type migrations through the management
// API: validate, create a temporary holding queue, drain, recreate the queue
// with the target type, drain back, and clean up. Every structural change is
// recorded in a rollback ledger replayed in reverse when a step fails.
package migration
