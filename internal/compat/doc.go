// Package compat holds the per-target-type feature support matrix, the
// compatibility analyzer that classifies a queue snapshot into blockers and
// warnings, and the advisor that suggests plausible migration targets.
// Everything here is pure: no broker calls, no mutation of inputs.
package compat
