package listing

import "strings"

const defaultVHostConstant = ""

// CommandConfiguration captures persisted configuration for the list-queues command.
type CommandConfiguration struct {
	VHost string `mapstructure:"vhost"`
}

// DefaultCommandConfiguration returns baseline list-queues command values.
// An empty vhost means queues from every virtual host are listed.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{VHost: defaultVHostConstant}
}

// Sanitize trims configured values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.VHost = strings.TrimSpace(configuration.VHost)
	return sanitized
}
