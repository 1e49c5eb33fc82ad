package plan

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/seventhstate/rabbitmigrate/internal/compat"
	"github.com/seventhstate/rabbitmigrate/internal/management"
	"github.com/seventhstate/rabbitmigrate/internal/queues"
)

const (
	brokerMissingMessageConstant         = "broker operations not configured"
	queueSkippedMessageConstant          = "Skipping queue: descriptor could not be fetched"
	logFieldQueueNameConstant            = "queue_name"
	logFieldVHostConstant                = "vhost"
	planBuiltMessageConstant             = "Migration plan built"
	logFieldSuggestedTargetTypesConstant = "suggested_target_types"
)

// BrokerOperations is the management API surface the plan builder requires.
type BrokerOperations interface {
	GetQueue(executionContext context.Context, vhost string, queueName string) (queues.QueueDescriptor, error)
	ListQueues(executionContext context.Context, vhost string) ([]management.QueueSummary, error)
}

// BuilderDependencies describes required collaborators for plan building.
type BuilderDependencies struct {
	Logger *zap.Logger
	Broker BrokerOperations
}

// Builder assembles migration plans from fresh queue snapshots.
type Builder struct {
	logger *zap.Logger
	broker BrokerOperations
}

var errBrokerMissing = errors.New(brokerMissingMessageConstant)

// NewBuilder constructs a Builder with the provided dependencies.
func NewBuilder(dependencies BuilderDependencies) (*Builder, error) {
	if dependencies.Broker == nil {
		return nil, errBrokerMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Builder{logger: logger, broker: dependencies.Broker}, nil
}

// BuildPlan fetches a fresh descriptor and analyzes it against every
// migration target type. Queue lookup failures surface to the caller.
func (builder *Builder) BuildPlan(executionContext context.Context, vhost string, queueName string) (MigrationPlan, error) {
	descriptor, lookupError := builder.broker.GetQueue(executionContext, vhost, queueName)
	if lookupError != nil {
		return MigrationPlan{}, lookupError
	}

	suggestedTargetTypes := compat.Suggest(descriptor)

	blockersByTarget := make(map[queues.QueueType][]string, 2)
	warningsByTarget := make(map[queues.QueueType][]string, 2)
	for _, targetType := range queues.TargetTypes() {
		blockers, warnings := compat.Analyze(descriptor, targetType)
		blockersByTarget[targetType] = blockers
		warningsByTarget[targetType] = warnings
	}

	migrationPlan := MigrationPlan{
		QueueName:            descriptor.Name,
		VHost:                descriptor.VHost,
		CurrentType:          descriptor.Type,
		SuggestedTargetTypes: suggestedTargetTypes,
		Blockers:             blockersByTarget,
		Warnings:             warningsByTarget,
		Snapshot:             descriptor,
	}

	builder.logger.Debug(
		planBuiltMessageConstant,
		zap.String(logFieldQueueNameConstant, descriptor.Name),
		zap.String(logFieldVHostConstant, descriptor.VHost),
		zap.Any(logFieldSuggestedTargetTypesConstant, suggestedTargetTypes),
	)

	return migrationPlan, nil
}

// BuildPlanForAll lists every queue in the vhost and builds one plan per
// queue. Queues whose descriptor cannot be fetched are skipped with a logged
// note; a read-only report prefers partial success over aborting the batch.
func (builder *Builder) BuildPlanForAll(executionContext context.Context, vhost string) ([]MigrationPlan, error) {
	summaries, listError := builder.broker.ListQueues(executionContext, vhost)
	if listError != nil {
		return nil, listError
	}

	migrationPlans := make([]MigrationPlan, 0, len(summaries))
	for _, summary := range summaries {
		migrationPlan, planError := builder.BuildPlan(executionContext, summary.Descriptor.VHost, summary.Descriptor.Name)
		if planError != nil {
			builder.logger.Warn(
				queueSkippedMessageConstant,
				zap.String(logFieldQueueNameConstant, summary.Descriptor.Name),
				zap.String(logFieldVHostConstant, summary.Descriptor.VHost),
				zap.Error(planError),
			)
			continue
		}
		migrationPlans = append(migrationPlans, migrationPlan)
	}

	return migrationPlans, nil
}
