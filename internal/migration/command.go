package migration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seventhstate/rabbitmigrate/internal/queues"
)

const (
	commandUseConstant              = "migrate"
	commandShortDescriptionConstant = "Migrate a queue to a different queue type"
	commandLongDescriptionConstant  = "migrate drains a queue through a temporary holding queue, recreates it with the requested type, and drains the messages back. Structural changes roll back on failure; consumers must be detached for the duration."

	vhostFlagNameConstant     = "vhost"
	vhostFlagUsageConstant    = "Virtual host holding the queue"
	queueFlagNameConstant     = "queue"
	queueFlagUsageConstant    = "Queue to migrate"
	typeFlagNameConstant      = "type"
	typeFlagUsageConstant     = "Target queue type (quorum or stream)"
	tempNameFlagNameConstant  = "temp-name"
	tempNameFlagUsageConstant = "Override the temporary holding queue name"

	queueFlagRequiredMessageConstant     = "--queue is required"
	typeFlagRequiredMessageConstant      = "--type is required"
	brokerProviderMissingMessageConstant = "broker provider not configured"

	successTemplateConstant          = "Queue %s migrated to %s (%d messages moved out, %d moved back).\n"
	rolledBackTemplateConstant       = "Migration of %s failed and was rolled back: %v\n"
	failedTemplateConstant           = "Migration of %s failed before any broker change: %v\n"
	migrationFailedTemplateConstant  = "migration failed: %w"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// BrokerProvider constructs the management API surface for migration runs.
type BrokerProvider func() (BrokerOperations, error)

// CommandBuilder assembles the migrate Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	BrokerProvider        BrokerProvider
	ConfigurationProvider func() CommandConfiguration
}

var errBrokerProviderMissing = errors.New(brokerProviderMissingMessageConstant)

// Build constructs the migrate command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runMigrate,
	}

	command.Flags().String(vhostFlagNameConstant, "", vhostFlagUsageConstant)
	command.Flags().String(queueFlagNameConstant, "", queueFlagUsageConstant)
	command.Flags().String(typeFlagNameConstant, "", typeFlagUsageConstant)
	command.Flags().String(tempNameFlagNameConstant, "", tempNameFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runMigrate(command *cobra.Command, _ []string) error {
	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	broker, brokerError := builder.resolveBroker()
	if brokerError != nil {
		return brokerError
	}

	service, serviceError := NewService(ServiceDependencies{Logger: builder.resolveLogger(), Broker: broker})
	if serviceError != nil {
		return serviceError
	}

	result, executionError := service.Execute(command.Context(), options)
	if executionError != nil {
		if result.RolledBack {
			fmt.Fprintf(command.OutOrStdout(), rolledBackTemplateConstant, options.QueueName, executionError)
		} else {
			fmt.Fprintf(command.OutOrStdout(), failedTemplateConstant, options.QueueName, executionError)
		}
		return fmt.Errorf(migrationFailedTemplateConstant, executionError)
	}

	fmt.Fprintf(
		command.OutOrStdout(),
		successTemplateConstant,
		options.QueueName,
		options.TargetType,
		result.MessagesMovedToTemp,
		result.MessagesMovedBack,
	)
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (Options, error) {
	configuration := builder.resolveConfiguration()

	vhost := configuration.VHost
	if command.Flags().Changed(vhostFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(vhostFlagNameConstant)
		vhost = strings.TrimSpace(flagValue)
	}

	queueName, _ := command.Flags().GetString(queueFlagNameConstant)
	queueName = strings.TrimSpace(queueName)
	if len(queueName) == 0 {
		return Options{}, errors.New(queueFlagRequiredMessageConstant)
	}

	typeValue, _ := command.Flags().GetString(typeFlagNameConstant)
	typeValue = strings.TrimSpace(typeValue)
	if len(typeValue) == 0 {
		return Options{}, errors.New(typeFlagRequiredMessageConstant)
	}
	targetType, typeError := queues.ParseQueueType(typeValue)
	if typeError != nil {
		return Options{}, typeError
	}

	tempQueueName, _ := command.Flags().GetString(tempNameFlagNameConstant)

	return Options{
		VHost:         vhost,
		QueueName:     queueName,
		TargetType:    targetType,
		TempQueueName: strings.TrimSpace(tempQueueName),
	}, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider != nil {
		if logger := builder.LoggerProvider(); logger != nil {
			return logger
		}
	}
	return zap.NewNop()
}

func (builder *CommandBuilder) resolveBroker() (BrokerOperations, error) {
	if builder.BrokerProvider == nil {
		return nil, errBrokerProviderMissing
	}
	return builder.BrokerProvider()
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}
