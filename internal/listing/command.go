package listing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seventhstate/rabbitmigrate/internal/management"
	"github.com/seventhstate/rabbitmigrate/internal/ui"
)

const (
	commandUseConstant              = "list-queues"
	commandShortDescriptionConstant = "List queues known to the broker"
	commandLongDescriptionConstant  = "list-queues fetches queue summaries from the management API and renders them with depth, state, and argument details."

	vhostFlagNameConstant  = "vhost"
	vhostFlagUsageConstant = "Restrict listing to a single virtual host"
	nameFlagNameConstant   = "name"
	nameFlagUsageConstant  = "Keep only queues whose name contains this substring"
	jsonFlagNameConstant   = "json"
	jsonFlagUsageConstant  = "Emit JSON instead of a table"

	brokerProviderMissingMessageConstant = "broker provider not configured"
	listEncodingErrorTemplateConstant    = "unable to encode queue listing: %w"
	noQueuesMessageConstant              = "No queues matched.\n"

	listTableVHostHeaderConstant     = "VHost"
	listTableNameHeaderConstant      = "Name"
	listTableTypeHeaderConstant      = "Type"
	listTableMessagesHeaderConstant  = "Messages"
	listTableStateHeaderConstant     = "State"
	listTablePolicyHeaderConstant    = "Policy"
	listTablePublishHeaderConstant   = "Publish/s"
	listTableDeliverHeaderConstant   = "Deliver/s"
	listTableArgumentsHeaderConstant = "Arguments"

	argumentPairTemplateConstant   = "%s=%s"
	argumentJoinSeparatorConstant  = ", "
	rateRenderingPrecisionConstant = 2

	jsonIndentConstant = "  "
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// BrokerProvider constructs the management API surface for queue listing.
type BrokerProvider func() (BrokerOperations, error)

// CommandBuilder assembles the list-queues Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	BrokerProvider        BrokerProvider
	ConfigurationProvider func() CommandConfiguration
}

var errBrokerProviderMissing = errors.New(brokerProviderMissingMessageConstant)

// Build constructs the list-queues command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runListQueues,
	}

	command.Flags().String(vhostFlagNameConstant, "", vhostFlagUsageConstant)
	command.Flags().String(nameFlagNameConstant, "", nameFlagUsageConstant)
	command.Flags().Bool(jsonFlagNameConstant, false, jsonFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runListQueues(command *cobra.Command, _ []string) error {
	configuration := builder.resolveConfiguration()

	vhost := configuration.VHost
	if command.Flags().Changed(vhostFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(vhostFlagNameConstant)
		vhost = strings.TrimSpace(flagValue)
	}
	nameFilter, _ := command.Flags().GetString(nameFlagNameConstant)
	jsonOutput, _ := command.Flags().GetBool(jsonFlagNameConstant)

	broker, brokerError := builder.resolveBroker()
	if brokerError != nil {
		return brokerError
	}

	service, serviceError := NewService(ServiceDependencies{Logger: builder.resolveLogger(), Broker: broker})
	if serviceError != nil {
		return serviceError
	}

	summaries, listError := service.List(command.Context(), vhost, nameFilter)
	if listError != nil {
		return listError
	}

	if jsonOutput {
		encodedSummaries, encodingError := json.MarshalIndent(summaries, "", jsonIndentConstant)
		if encodingError != nil {
			return fmt.Errorf(listEncodingErrorTemplateConstant, encodingError)
		}
		fmt.Fprintln(command.OutOrStdout(), string(encodedSummaries))
		return nil
	}

	if len(summaries) == 0 {
		fmt.Fprint(command.OutOrStdout(), noQueuesMessageConstant)
		return nil
	}

	fmt.Fprint(command.OutOrStdout(), renderQueueTable(summaries))
	return nil
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

func renderQueueTable(summaries []management.QueueSummary) string {
	table := ui.NewTable([]string{
		listTableVHostHeaderConstant,
		listTableNameHeaderConstant,
		listTableTypeHeaderConstant,
		listTableMessagesHeaderConstant,
		listTableStateHeaderConstant,
		listTablePolicyHeaderConstant,
		listTablePublishHeaderConstant,
		listTableDeliverHeaderConstant,
		listTableArgumentsHeaderConstant,
	})

	for _, summary := range summaries {
		table.AddRow(
			summary.Descriptor.VHost,
			summary.Descriptor.Name,
			string(summary.Descriptor.Type),
			strconv.Itoa(summary.Messages),
			summary.State,
			summary.Policy,
			formatRate(summary.PublishRate),
			formatRate(summary.DeliverRate),
			renderArguments(summary),
		)
	}

	return table.Render()
}

func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', rateRenderingPrecisionConstant, 64)
}

func renderArguments(summary management.QueueSummary) string {
	argumentPairs := make([]string, 0, len(summary.Descriptor.Arguments))
	for _, argumentKey := range summary.Descriptor.Arguments.SortedKeys() {
		argumentValue := summary.Descriptor.Arguments[argumentKey]
		argumentPairs = append(argumentPairs, fmt.Sprintf(argumentPairTemplateConstant, argumentKey, argumentValue.String()))
	}
	return strings.Join(argumentPairs, argumentJoinSeparatorConstant)
}
