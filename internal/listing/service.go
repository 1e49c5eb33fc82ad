package listing

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/seventhstate/rabbitmigrate/internal/management"
)

const (
	brokerMissingMessageConstant = "broker operations not configured"
	queuesListedMessageConstant  = "Queues listed"
	logFieldVHostConstant        = "vhost"
	logFieldNameFilterConstant   = "name_filter"
	logFieldQueueCountConstant   = "queue_count"
)

// BrokerOperations is the management API surface queue listing requires.
type BrokerOperations interface {
	ListQueues(executionContext context.Context, vhost string) ([]management.QueueSummary, error)
}

// ServiceDependencies describes required collaborators for queue listing.
type ServiceDependencies struct {
	Logger *zap.Logger
	Broker BrokerOperations
}

// Service lists queues and applies name filtering on the results.
type Service struct {
	logger *zap.Logger
	broker BrokerOperations
}

var errBrokerMissing = errors.New(brokerMissingMessageConstant)

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Broker == nil {
		return nil, errBrokerMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{logger: logger, broker: dependencies.Broker}, nil
}

// List returns queue summaries for the vhost, keeping only queues whose name
// contains nameFilter when the filter is non-empty. An empty vhost lists
// queues across every virtual host. Results sort by vhost then queue name.
func (service *Service) List(executionContext context.Context, vhost string, nameFilter string) ([]management.QueueSummary, error) {
	summaries, listError := service.broker.ListQueues(executionContext, vhost)
	if listError != nil {
		return nil, listError
	}

	trimmedFilter := strings.TrimSpace(nameFilter)
	filteredSummaries := make([]management.QueueSummary, 0, len(summaries))
	for _, summary := range summaries {
		if len(trimmedFilter) > 0 && !strings.Contains(summary.Descriptor.Name, trimmedFilter) {
			continue
		}
		filteredSummaries = append(filteredSummaries, summary)
	}

	sort.SliceStable(filteredSummaries, func(firstIndex int, secondIndex int) bool {
		if filteredSummaries[firstIndex].Descriptor.VHost != filteredSummaries[secondIndex].Descriptor.VHost {
			return filteredSummaries[firstIndex].Descriptor.VHost < filteredSummaries[secondIndex].Descriptor.VHost
		}
		return filteredSummaries[firstIndex].Descriptor.Name < filteredSummaries[secondIndex].Descriptor.Name
	})

	service.logger.Debug(
		queuesListedMessageConstant,
		zap.String(logFieldVHostConstant, vhost),
		zap.String(logFieldNameFilterConstant, trimmedFilter),
		zap.Int(logFieldQueueCountConstant, len(filteredSummaries)),
	)

	return filteredSummaries, nil
}
