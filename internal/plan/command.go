package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seventhstate/rabbitmigrate/internal/queues"
	"github.com/seventhstate/rabbitmigrate/internal/ui"
)

const (
	commandUseConstant              = "plan"
	commandShortDescriptionConstant = "Analyze queues for migration readiness"
	commandLongDescriptionConstant  = "plan fetches queue snapshots and reports blockers and warnings per migration target type without mutating the broker."

	vhostFlagNameConstant  = "vhost"
	vhostFlagUsageConstant = "Virtual host holding the queues"
	queueFlagNameConstant  = "queue"
	queueFlagUsageConstant = "Analyze a single queue by name"
	allFlagNameConstant    = "all"
	allFlagUsageConstant   = "Analyze every queue in the vhost"
	jsonFlagNameConstant   = "json"
	jsonFlagUsageConstant  = "Emit JSON instead of a table"

	queueSelectionRequiredMessageConstant = "either --queue or --all must be provided"
	queueSelectionConflictMessageConstant = "--queue and --all are mutually exclusive"
	brokerProviderMissingMessageConstant  = "broker provider not configured"
	planEncodingErrorTemplateConstant     = "unable to encode plan output: %w"
	reportWrittenMessageConstant          = "Migration report written"
	logFieldReportPathConstant            = "report_path"

	planTableQueueHeaderConstant     = "Queue"
	planTableTypeHeaderConstant      = "Current Type"
	planTableSuggestedHeaderConstant = "Suggested"
	planTableBlockersHeaderConstant  = "Blockers"
	planTableWarningsHeaderConstant  = "Warnings"

	singlePlanQueueLineTemplateConstant     = "Queue: %s (vhost %s, type %s)\n"
	singlePlanSuggestedLineTemplateConstant = "Suggested targets: %s\n"
	singlePlanTargetLineTemplateConstant    = "\nTarget %s:\n"
	singlePlanBlockerLineTemplateConstant   = "  blocker: %s\n"
	singlePlanWarningLineTemplateConstant   = "  warning: %s\n"
	singlePlanCleanLineConstant             = "  no blockers or warnings\n"

	targetTypeJoinSeparatorConstant = ", "
	countPairTemplateConstant       = "%s:%d"
	countJoinSeparatorConstant      = " "
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// BrokerProvider constructs the management API surface for plan building.
type BrokerProvider func() (BrokerOperations, error)

// CommandBuilder assembles the plan Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	BrokerProvider        BrokerProvider
	ConfigurationProvider func() CommandConfiguration
}

type commandOptions struct {
	vhost      string
	queueName  string
	planAll    bool
	jsonOutput bool
	reportPath string
}

var errBrokerProviderMissing = errors.New(brokerProviderMissingMessageConstant)

// Build constructs the plan command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runPlan,
	}

	command.Flags().String(vhostFlagNameConstant, "", vhostFlagUsageConstant)
	command.Flags().String(queueFlagNameConstant, "", queueFlagUsageConstant)
	command.Flags().Bool(allFlagNameConstant, false, allFlagUsageConstant)
	command.Flags().Bool(jsonFlagNameConstant, false, jsonFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runPlan(command *cobra.Command, _ []string) error {
	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()

	broker, brokerError := builder.resolveBroker()
	if brokerError != nil {
		return brokerError
	}

	planBuilder, builderError := NewBuilder(BuilderDependencies{Logger: logger, Broker: broker})
	if builderError != nil {
		return builderError
	}

	if options.planAll {
		return builder.runBatchPlan(command, planBuilder, logger, options)
	}
	return builder.runSinglePlan(command, planBuilder, options)
}

func (builder *CommandBuilder) runSinglePlan(command *cobra.Command, planBuilder *Builder, options commandOptions) error {
	migrationPlan, planError := planBuilder.BuildPlan(command.Context(), options.vhost, options.queueName)
	if planError != nil {
		return planError
	}

	if options.jsonOutput {
		return writeJSON(command, migrationPlan)
	}

	fmt.Fprint(command.OutOrStdout(), renderSinglePlan(migrationPlan))
	return nil
}

func (builder *CommandBuilder) runBatchPlan(command *cobra.Command, planBuilder *Builder, logger *zap.Logger, options commandOptions) error {
	migrationPlans, planError := planBuilder.BuildPlanForAll(command.Context(), options.vhost)
	if planError != nil {
		return planError
	}

	if options.jsonOutput {
		return writeJSON(command, migrationPlans)
	}

	fmt.Fprint(command.OutOrStdout(), renderPlanTable(migrationPlans))

	if reportError := WriteReport(options.reportPath, migrationPlans); reportError != nil {
		return reportError
	}
	logger.Info(reportWrittenMessageConstant, zap.String(logFieldReportPathConstant, options.reportPath))

	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (commandOptions, error) {
	configuration := builder.resolveConfiguration()

	vhost := configuration.VHost
	if command.Flags().Changed(vhostFlagNameConstant) {
		flagValue, _ := command.Flags().GetString(vhostFlagNameConstant)
		vhost = strings.TrimSpace(flagValue)
	}

	queueName, _ := command.Flags().GetString(queueFlagNameConstant)
	queueName = strings.TrimSpace(queueName)
	planAll, _ := command.Flags().GetBool(allFlagNameConstant)
	jsonOutput, _ := command.Flags().GetBool(jsonFlagNameConstant)

	if len(queueName) == 0 && !planAll {
		return commandOptions{}, errors.New(queueSelectionRequiredMessageConstant)
	}
	if len(queueName) > 0 && planAll {
		return commandOptions{}, errors.New(queueSelectionConflictMessageConstant)
	}

	return commandOptions{
		vhost:      vhost,
		queueName:  queueName,
		planAll:    planAll,
		jsonOutput: jsonOutput,
		reportPath: configuration.ReportPath,
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

func writeJSON(command *cobra.Command, payload any) error {
	encodedPayload, encodingError := json.MarshalIndent(payload, "", reportIndentConstant)
	if encodingError != nil {
		return fmt.Errorf(planEncodingErrorTemplateConstant, encodingError)
	}
	fmt.Fprintln(command.OutOrStdout(), string(encodedPayload))
	return nil
}

func renderSinglePlan(migrationPlan MigrationPlan) string {
	var rendered strings.Builder

	fmt.Fprintf(&rendered, singlePlanQueueLineTemplateConstant, migrationPlan.QueueName, migrationPlan.VHost, migrationPlan.CurrentType)
	fmt.Fprintf(&rendered, singlePlanSuggestedLineTemplateConstant, joinTargetTypes(migrationPlan.SuggestedTargetTypes))

	for _, targetType := range queues.TargetTypes() {
		fmt.Fprintf(&rendered, singlePlanTargetLineTemplateConstant, targetType)

		blockers := migrationPlan.BlockersFor(targetType)
		warnings := migrationPlan.WarningsFor(targetType)
		if len(blockers) == 0 && len(warnings) == 0 {
			rendered.WriteString(singlePlanCleanLineConstant)
			continue
		}
		for _, blocker := range blockers {
			fmt.Fprintf(&rendered, singlePlanBlockerLineTemplateConstant, blocker)
		}
		for _, warning := range warnings {
			fmt.Fprintf(&rendered, singlePlanWarningLineTemplateConstant, warning)
		}
	}

	return rendered.String()
}

func renderPlanTable(migrationPlans []MigrationPlan) string {
	table := ui.NewTable([]string{
		planTableQueueHeaderConstant,
		planTableTypeHeaderConstant,
		planTableSuggestedHeaderConstant,
		planTableBlockersHeaderConstant,
		planTableWarningsHeaderConstant,
	})

	for _, migrationPlan := range migrationPlans {
		table.AddRow(
			migrationPlan.QueueName,
			string(migrationPlan.CurrentType),
			joinTargetTypes(migrationPlan.SuggestedTargetTypes),
			joinTargetCounts(migrationPlan.Blockers),
			joinTargetCounts(migrationPlan.Warnings),
		)
	}

	return table.Render()
}

func joinTargetTypes(targetTypes []queues.QueueType) string {
	typeNames := make([]string, 0, len(targetTypes))
	for _, targetType := range targetTypes {
		typeNames = append(typeNames, string(targetType))
	}
	return strings.Join(typeNames, targetTypeJoinSeparatorConstant)
}

func joinTargetCounts(entriesByTarget map[queues.QueueType][]string) string {
	countPairs := make([]string, 0, len(entriesByTarget))
	for _, targetType := range queues.TargetTypes() {
		countPairs = append(countPairs, fmt.Sprintf(countPairTemplateConstant, targetType, len(entriesByTarget[targetType])))
	}
	return strings.Join(countPairs, countJoinSeparatorConstant)
}
