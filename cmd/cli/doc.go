// Package cli constructs the rabbitmigrate command-line interface, wiring
// the Cobra command hierarchy, configuration loader, structured logging, and
// the management API client shared by every subcommand.
package cli
