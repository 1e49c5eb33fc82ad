// Package plan builds read-only migration plans: per-queue compatibility
// analysis against every migration target, advisory target suggestions, and
// the persisted JSON report consumed by operators before running a migration.
package plan
