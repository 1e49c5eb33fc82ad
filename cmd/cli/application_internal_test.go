package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testConfigurationFileNameConstant   = "config.yaml"
	testConfigurationContentConstant    = "common:\n  log_level: debug\n  log_format: console\nbroker:\n  host: http://rabbit.internal:15672/\n  username: migrator\n  password: secret\ntools:\n  plan:\n    vhost: tenant-a\n"
	testExpectedSubcommandsErrorMessage = "expected subcommand %q to be registered"
)

func TestNewApplicationRegistersSubcommands(testInstance *testing.T) {
	application := NewApplication()

	registeredNames := map[string]bool{}
	for _, registeredCommand := range application.rootCommand.Commands() {
		registeredNames[registeredCommand.Name()] = true
	}

	for _, expectedName := range []string{"list-queues", "plan", "migrate"} {
		require.True(testInstance, registeredNames[expectedName], fmt.Sprintf(testExpectedSubcommandsErrorMessage, expectedName))
	}
}

func TestInitializeConfigurationLoadsFileAndFlagOverrides(testInstance *testing.T) {
	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o600))

	application := NewApplication()
	application.configurationFilePath = configurationPath

	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "warn"))

	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, "warn", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "console", application.configuration.Common.LogFormat)
	require.Equal(testInstance, "migrator", application.configuration.Broker.Username)
	require.Equal(testInstance, "tenant-a", application.configuration.Tools.Plan.VHost)
	require.Equal(testInstance, configurationPath, application.configurationMetadata.ConfigFileUsed)

	// Sanitize strips the trailing slash the file carries.
	require.Equal(testInstance, "http://rabbit.internal:15672", application.configuration.Broker.Sanitize().Host)
}

func TestInitializeConfigurationAppliesEnvironmentOverride(testInstance *testing.T) {
	testInstance.Setenv("RABBITMIGRATE_BROKER_USERNAME", "operator")

	application := NewApplication()
	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	require.Equal(testInstance, "operator", application.configuration.Broker.Username)
}

func TestBrokerClientUsesLoadedConfiguration(testInstance *testing.T) {
	application := NewApplication()
	require.NoError(testInstance, application.initializeConfiguration(application.rootCommand))

	client, clientError := application.brokerClient()
	require.NoError(testInstance, clientError)
	require.NotNil(testInstance, client)
}
