// Package utils exposes reusable helpers consumed by multiple commands.
//
// It currently houses the ConfigurationLoader, LoggerFactory, and
// CommandContextAccessor abstractions that integrate Viper, environment
// variables, zap logging, and context propagation for the CLI.
package utils
