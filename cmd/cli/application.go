package cli

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/seventhstate/rabbitmigrate/internal/listing"
	"github.com/seventhstate/rabbitmigrate/internal/management"
	"github.com/seventhstate/rabbitmigrate/internal/migration"
	"github.com/seventhstate/rabbitmigrate/internal/plan"
	"github.com/seventhstate/rabbitmigrate/internal/utils"
)

const (
	applicationNameConstant                 = "rabbitmigrate"
	applicationShortDescriptionConstant     = "Command-line toolkit for RabbitMQ queue type migrations"
	applicationLongDescriptionConstant      = "rabbitmigrate inspects queues through the RabbitMQ management API, reports their readiness for quorum or stream migration, and executes migrations with automatic rollback."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	commonLogFileConfigKeyConstant          = commonConfigurationKeyConstant + ".log_file"
	brokerConfigurationKeyConstant          = "broker"
	brokerHostConfigKeyConstant             = brokerConfigurationKeyConstant + ".host"
	brokerUsernameConfigKeyConstant         = brokerConfigurationKeyConstant + ".username"
	brokerPasswordConfigKeyConstant         = brokerConfigurationKeyConstant + ".password"
	brokerTimeoutConfigKeyConstant          = brokerConfigurationKeyConstant + ".request_timeout_seconds"
	brokerRetryMaxConfigKeyConstant         = brokerConfigurationKeyConstant + ".retry_max"
	toolsConfigurationKeyConstant           = "tools"
	listQueuesVHostConfigKeyConstant        = toolsConfigurationKeyConstant + ".list_queues.vhost"
	planVHostConfigKeyConstant              = toolsConfigurationKeyConstant + ".plan.vhost"
	planReportPathConfigKeyConstant         = toolsConfigurationKeyConstant + ".plan.report_path"
	migrateVHostConfigKeyConstant           = toolsConfigurationKeyConstant + ".migrate.vhost"
	environmentPrefixConstant               = "RABBITMIGRATE"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationBrokerHostFieldConstant    = "broker_host"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	rootCommandInfoMessageConstant          = "rabbitmigrate CLI executed"
	rootCommandDebugMessageConstant         = "rabbitmigrate CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Broker management.Configuration       `mapstructure:"broker"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands grouped by tool.
type ApplicationToolsConfiguration struct {
	ListQueues listing.CommandConfiguration   `mapstructure:"list_queues"`
	Plan       plan.CommandConfiguration      `mapstructure:"plan"`
	Migrate    migration.CommandConfiguration `mapstructure:"migrate"`
}

// Application wires the Cobra root command, configuration loader, structured
// logger, and the shared management API client.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadResult
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)

	embeddedConfiguration, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration, embeddedConfigurationType)

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	listQueuesBuilder := listing.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		BrokerProvider: func() (listing.BrokerOperations, error) {
			return application.brokerClient()
		},
		ConfigurationProvider: func() listing.CommandConfiguration {
			return application.configuration.Tools.ListQueues
		},
	}
	listQueuesCommand, listQueuesBuildError := listQueuesBuilder.Build()
	if listQueuesBuildError == nil {
		cobraCommand.AddCommand(listQueuesCommand)
	}

	planBuilder := plan.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		BrokerProvider: func() (plan.BrokerOperations, error) {
			return application.brokerClient()
		},
		ConfigurationProvider: func() plan.CommandConfiguration {
			return application.configuration.Tools.Plan
		},
	}
	planCommand, planBuildError := planBuilder.Build()
	if planBuildError == nil {
		cobraCommand.AddCommand(planCommand)
	}

	migrateBuilder := migration.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		BrokerProvider: func() (migration.BrokerOperations, error) {
			return application.brokerClient()
		},
		ConfigurationProvider: func() migration.CommandConfiguration {
			return application.configuration.Tools.Migrate
		},
	}
	migrateCommand, migrateBuildError := migrateBuilder.Build()
	if migrateBuildError == nil {
		cobraCommand.AddCommand(migrateCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) brokerClient() (*management.Client, error) {
	return management.NewClient(application.configuration.Broker)
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	brokerDefaults := management.DefaultConfiguration()
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
		commonLogFileConfigKeyConstant:   "",
		brokerHostConfigKeyConstant:      brokerDefaults.Host,
		brokerUsernameConfigKeyConstant:  brokerDefaults.Username,
		brokerPasswordConfigKeyConstant:  brokerDefaults.Password,
		brokerTimeoutConfigKeyConstant:   brokerDefaults.RequestTimeoutSeconds,
		brokerRetryMaxConfigKeyConstant:  brokerDefaults.RetryMax,
		listQueuesVHostConfigKeyConstant: listing.DefaultCommandConfiguration().VHost,
		planVHostConfigKeyConstant:       plan.DefaultCommandConfiguration().VHost,
		planReportPathConfigKeyConstant:  plan.DefaultCommandConfiguration().ReportPath,
		migrateVHostConfigKeyConstant:    migration.DefaultCommandConfiguration().VHost,
	}

	loadResult, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadResult

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(utils.LoggerOptions{
		Level:       utils.LogLevel(application.configuration.Common.LogLevel),
		Format:      utils.LogFormat(application.configuration.Common.LogFormat),
		LogFilePath: application.configuration.Common.LogFile,
	})
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.String(configurationBrokerHostFieldConstant, application.configuration.Broker.Sanitize().Host),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	return application.syncLoggerInstance(application.logger)
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
