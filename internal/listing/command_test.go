package listing_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seventhstate/rabbitmigrate/internal/listing"
	"github.com/seventhstate/rabbitmigrate/internal/management"
	"github.com/seventhstate/rabbitmigrate/internal/queues"
)

func buildListCommandOutput(testInstance *testing.T, broker listing.BrokerOperations, arguments []string) string {
	testInstance.Helper()

	builder := &listing.CommandBuilder{
		BrokerProvider: func() (listing.BrokerOperations, error) { return broker, nil },
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	var output bytes.Buffer
	command.SetOut(&output)
	command.SetErr(&output)
	command.SetArgs(arguments)
	command.SetContext(context.Background())

	require.NoError(testInstance, command.Execute())
	return output.String()
}

func TestListQueuesCommandRendersTable(testInstance *testing.T) {
	broker := &stubBrokerOperations{summaries: []management.QueueSummary{
		{
			Descriptor: queues.QueueDescriptor{
				Name:    "orders",
				VHost:   "/",
				Type:    queues.QueueTypeClassic,
				Durable: true,
				Arguments: queues.Arguments{
					"x-message-ttl": queues.NumberArgument(30000),
				},
			},
			Messages: 12,
			State:    "running",
		},
	}}

	output := buildListCommandOutput(testInstance, broker, []string{})

	require.Contains(testInstance, output, "orders")
	require.Contains(testInstance, output, "classic")
	require.Contains(testInstance, output, "12")
	require.Contains(testInstance, output, "x-message-ttl=30000")
}

func TestListQueuesCommandRendersJSON(testInstance *testing.T) {
	broker := &stubBrokerOperations{summaries: []management.QueueSummary{
		queueSummary("/", "orders"),
	}}

	output := buildListCommandOutput(testInstance, broker, []string{"--json"})

	var decodedSummaries []map[string]any
	require.NoError(testInstance, json.Unmarshal([]byte(output), &decodedSummaries))
	require.Len(testInstance, decodedSummaries, 1)
}

func TestListQueuesCommandReportsMissingBrokerProvider(testInstance *testing.T) {
	builder := &listing.CommandBuilder{}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	var output bytes.Buffer
	command.SetOut(&output)
	command.SetErr(&output)
	command.SetArgs([]string{})

	require.Error(testInstance, command.Execute())
}

func TestListQueuesCommandPrintsPlaceholderWhenEmpty(testInstance *testing.T) {
	output := buildListCommandOutput(testInstance, &stubBrokerOperations{}, []string{"--name", "billing"})
	require.Contains(testInstance, output, "No queues matched.")
}
