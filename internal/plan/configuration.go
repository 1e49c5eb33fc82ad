package plan

import "strings"

const (
	defaultVHostConstant      = "/"
	defaultReportPathConstant = "migration_report.json"
)

// CommandConfiguration captures persisted configuration for the plan command.
type CommandConfiguration struct {
	VHost      string `mapstructure:"vhost"`
	ReportPath string `mapstructure:"report_path"`
}

// DefaultCommandConfiguration returns baseline plan command values.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		VHost:      defaultVHostConstant,
		ReportPath: defaultReportPathConstant,
	}
}

// Sanitize trims configured values and substitutes defaults for empty entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.VHost = strings.TrimSpace(configuration.VHost)
	if len(sanitized.VHost) == 0 {
		sanitized.VHost = defaultVHostConstant
	}
	sanitized.ReportPath = strings.TrimSpace(configuration.ReportPath)
	if len(sanitized.ReportPath) == 0 {
		sanitized.ReportPath = defaultReportPathConstant
	}
	return sanitized
}
