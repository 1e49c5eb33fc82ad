package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

type readmeConfiguration struct {
	Common struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
		LogFile   string `yaml:"log_file"`
	} `yaml:"common"`
	Broker struct {
		Host                  string `yaml:"host"`
		Username              string `yaml:"username"`
		Password              string `yaml:"password"`
		RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
		RetryMax              int    `yaml:"retry_max"`
	} `yaml:"broker"`
	Tools struct {
		ListQueues struct {
			VHost string `yaml:"vhost"`
		} `yaml:"list_queues"`
		Plan struct {
			VHost      string `yaml:"vhost"`
			ReportPath string `yaml:"report_path"`
		} `yaml:"plan"`
		Migrate struct {
			VHost string `yaml:"vhost"`
		} `yaml:"migrate"`
	} `yaml:"tools"`
}

func TestReadmeConfigurationSnippetParses(testInstance *testing.T) {
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	snippetContent := strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])

	var configuration readmeConfiguration
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippetContent), &configuration))

	require.Equal(testInstance, "info", configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", configuration.Common.LogFormat)
	require.Equal(testInstance, "http://localhost:15672", configuration.Broker.Host)
	require.Equal(testInstance, 30, configuration.Broker.RequestTimeoutSeconds)
	require.Equal(testInstance, 3, configuration.Broker.RetryMax)
	require.Equal(testInstance, "/", configuration.Tools.Plan.VHost)
	require.Equal(testInstance, "migration_report.json", configuration.Tools.Plan.ReportPath)
	require.Equal(testInstance, "/", configuration.Tools.Migrate.VHost)
	require.Empty(testInstance, configuration.Tools.ListQueues.VHost)
}
