package management

import "strings"

const (
	defaultBrokerHostConstant            = "http://localhost:15672"
	defaultBrokerUsernameConstant        = "guest"
	defaultBrokerPasswordConstant        = "guest"
	defaultRequestTimeoutSecondsConstant = 30
	defaultRetryMaxConstant              = 3
)

// Configuration captures the broker endpoint and credentials resolved once at
// process start and passed into the client constructor.
type Configuration struct {
	Host                  string `mapstructure:"host"`
	Username              string `mapstructure:"username"`
	Password              string `mapstructure:"password"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds"`
	RetryMax              int    `mapstructure:"retry_max"`
}

// DefaultConfiguration returns baseline broker connection values.
func DefaultConfiguration() Configuration {
	return Configuration{
		Host:                  defaultBrokerHostConstant,
		Username:              defaultBrokerUsernameConstant,
		Password:              defaultBrokerPasswordConstant,
		RequestTimeoutSeconds: defaultRequestTimeoutSecondsConstant,
		RetryMax:              defaultRetryMaxConstant,
	}
}

// Sanitize trims configured values and substitutes defaults for empty or
// out-of-range entries.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.Host = strings.TrimRight(strings.TrimSpace(configuration.Host), "/")
	if len(sanitized.Host) == 0 {
		sanitized.Host = defaultBrokerHostConstant
	}
	if len(strings.TrimSpace(sanitized.Username)) == 0 {
		sanitized.Username = defaultBrokerUsernameConstant
	}
	if sanitized.RequestTimeoutSeconds <= 0 {
		sanitized.RequestTimeoutSeconds = defaultRequestTimeoutSecondsConstant
	}
	if sanitized.RetryMax < 0 {
		sanitized.RetryMax = defaultRetryMaxConstant
	}
	return sanitized
}
