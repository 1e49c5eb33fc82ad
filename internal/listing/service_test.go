package listing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seventhstate/rabbitmigrate/internal/listing"
	"github.com/seventhstate/rabbitmigrate/internal/management"
	"github.com/seventhstate/rabbitmigrate/internal/queues"
)

type stubBrokerOperations struct {
	summaries      []management.QueueSummary
	listError      error
	requestedVHost string
}

func (broker *stubBrokerOperations) ListQueues(_ context.Context, vhost string) ([]management.QueueSummary, error) {
	broker.requestedVHost = vhost
	if broker.listError != nil {
		return nil, broker.listError
	}
	return broker.summaries, nil
}

func queueSummary(vhost string, queueName string) management.QueueSummary {
	return management.QueueSummary{Descriptor: queues.QueueDescriptor{
		Name:    queueName,
		VHost:   vhost,
		Type:    queues.QueueTypeClassic,
		Durable: true,
	}}
}

func TestListFiltersByNameSubstringAndSorts(testInstance *testing.T) {
	broker := &stubBrokerOperations{summaries: []management.QueueSummary{
		queueSummary("tenant-b", "orders.outbound"),
		queueSummary("tenant-a", "orders.inbound"),
		queueSummary("tenant-a", "audit.events"),
	}}

	service, serviceError := listing.NewService(listing.ServiceDependencies{Broker: broker})
	require.NoError(testInstance, serviceError)

	testCases := []struct {
		name               string
		nameFilter         string
		expectedQueueNames []string
	}{
		{
			name:               "no_filter_returns_all_sorted",
			nameFilter:         "",
			expectedQueueNames: []string{"audit.events", "orders.inbound", "orders.outbound"},
		},
		{
			name:               "substring_filter",
			nameFilter:         "orders",
			expectedQueueNames: []string{"orders.inbound", "orders.outbound"},
		},
		{
			name:               "filter_is_trimmed",
			nameFilter:         "  audit  ",
			expectedQueueNames: []string{"audit.events"},
		},
		{
			name:               "no_match_returns_empty",
			nameFilter:         "billing",
			expectedQueueNames: []string{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			summaries, listError := service.List(context.Background(), "", testCase.nameFilter)
			require.NoError(testInstance, listError)

			queueNames := make([]string, 0, len(summaries))
			for _, summary := range summaries {
				queueNames = append(queueNames, summary.Descriptor.Name)
			}
			require.Equal(testInstance, testCase.expectedQueueNames, queueNames)
		})
	}
}

func TestListPassesVHostThrough(testInstance *testing.T) {
	broker := &stubBrokerOperations{}
	service, serviceError := listing.NewService(listing.ServiceDependencies{Broker: broker})
	require.NoError(testInstance, serviceError)

	_, listError := service.List(context.Background(), "tenant-a", "")
	require.NoError(testInstance, listError)
	require.Equal(testInstance, "tenant-a", broker.requestedVHost)
}

func TestListSurfacesBrokerFailure(testInstance *testing.T) {
	expectedError := errors.New("management api unreachable")
	service, serviceError := listing.NewService(listing.ServiceDependencies{Broker: &stubBrokerOperations{listError: expectedError}})
	require.NoError(testInstance, serviceError)

	_, listError := service.List(context.Background(), "", "")
	require.ErrorIs(testInstance, listError, expectedError)
}

func TestNewServiceRequiresBroker(testInstance *testing.T) {
	_, serviceError := listing.NewService(listing.ServiceDependencies{})
	require.Error(testInstance, serviceError)
}
