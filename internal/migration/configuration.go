package migration

import "strings"

const defaultVHostConstant = "/"

// CommandConfiguration captures persisted configuration for the migrate command.
type CommandConfiguration struct {
	VHost string `mapstructure:"vhost"`
}

// DefaultCommandConfiguration returns baseline migrate command values.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{VHost: defaultVHostConstant}
}

// Sanitize trims configured values and substitutes defaults for empty entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.VHost = strings.TrimSpace(configuration.VHost)
	if len(sanitized.VHost) == 0 {
		sanitized.VHost = defaultVHostConstant
	}
	return sanitized
}
