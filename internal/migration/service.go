package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/seventhstate/rabbitmigrate/internal/compat"
	"github.com/seventhstate/rabbitmigrate/internal/queues"
)

const (
	drainBatchSizeConstant = 1000

	tempQueueSuffixConstant = "_temp_migrated"

	brokerMissingMessageConstant         = "broker operations not configured"
	vhostRequiredMessageConstant         = "vhost must not be empty"
	queueNameRequiredMessageConstant     = "queue name must not be empty"
	targetTypeInvalidTemplateConstant    = "target type must be one of %s: %w"
	queueDrainedMessageConstant          = "Queue drained"
	stateAdvancedMessageConstant         = "Migration state advanced"
	nonAtomicWindowWarningConstant       = "Deleting original queue; messages published before the replacement exists are not captured"
	rollbackStartedMessageConstant       = "Rolling back migration"
	rollbackStepFailedMessageConstant    = "Rollback step failed; continuing with remaining steps"
	rollbackFinishedMessageConstant      = "Rollback finished"
	migrationCompletedMessageConstant    = "Migration completed"
	logFieldVHostConstant                = "vhost"
	logFieldQueueNameConstant            = "queue_name"
	logFieldTempQueueNameConstant        = "temp_queue_name"
	logFieldTargetTypeConstant           = "target_type"
	logFieldRunStateConstant             = "run_state"
	logFieldSourceQueueConstant          = "source_queue"
	logFieldDestinationQueueConstant     = "destination_queue"
	logFieldMessageCountConstant         = "message_count"
	logFieldRollbackActionConstant       = "rollback_action"
	logFieldRollbackStepCountConstant    = "rollback_step_count"
	logFieldMessagesMovedToTempConstant  = "messages_moved_to_temp"
	logFieldMessagesMovedBackConstant    = "messages_moved_back"
	targetTypeJoinSeparatorConstant      = ", "
)

// BrokerOperations is the management API surface the executor requires.
type BrokerOperations interface {
	GetQueue(executionContext context.Context, vhost string, queueName string) (queues.QueueDescriptor, error)
	CreateQueue(executionContext context.Context, vhost string, queueName string, durable bool, arguments queues.Arguments) error
	DeleteQueue(executionContext context.Context, vhost string, queueName string) error
	FetchMessages(executionContext context.Context, vhost string, queueName string, batchSize int) ([]queues.Message, error)
	PublishMessage(executionContext context.Context, vhost string, queueName string, message queues.Message) error
}

// ServiceDependencies describes required collaborators for migration runs.
type ServiceDependencies struct {
	Logger *zap.Logger
	Broker BrokerOperations
}

// Options configures a single migration run.
type Options struct {
	VHost         string
	QueueName     string
	TargetType    queues.QueueType
	TempQueueName string
}

// Result captures the observable outcome of a migration run.
type Result struct {
	FinalState          RunState
	RolledBack          bool
	MessagesMovedToTemp int
	MessagesMovedBack   int
	TempQueueName       string
}

// Service executes queue migrations sequentially against one broker.
type Service struct {
	logger *zap.Logger
	broker BrokerOperations
}

var (
	errBrokerMissing     = errors.New(brokerMissingMessageConstant)
	errVHostRequired     = errors.New(vhostRequiredMessageConstant)
	errQueueNameRequired = errors.New(queueNameRequiredMessageConstant)
)

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

// DefaultTempQueueName derives the holding queue name for a source queue.
func DefaultTempQueueName(queueName string) string {
	return queueName + tempQueueSuffixConstant
}

type runContext struct {
	options      Options
	state        RunState
	ledger       Ledger
	original     queues.QueueDescriptor
	adjustedArgs queues.Arguments
	result       Result
}

// Execute runs the full migration state machine for one queue. Any error
// after the first structural change triggers a best-effort reverse replay of
// the rollback ledger; the triggering error is always the one returned.
func (service *Service) Execute(executionContext context.Context, options Options) (Result, error) {
	normalizedOptions, optionsError := normalizeOptions(options)
	if optionsError != nil {
		return Result{FinalState: RunStateFailed}, optionsError
	}

	run := &runContext{
		options: normalizedOptions,
		state:   RunStateStart,
		result:  Result{TempQueueName: normalizedOptions.TempQueueName},
	}

	if runError := service.executeForward(executionContext, run); runError != nil {
		if run.ledger.Len() > 0 {
			service.rollback(executionContext, run)
			run.result.RolledBack = true
		}
		run.result.FinalState = RunStateFailed
		return run.result, runError
	}

	run.ledger.Clear()
	run.result.FinalState = RunStateCompleted

	service.logger.Info(
		migrationCompletedMessageConstant,
		zap.String(logFieldVHostConstant, run.options.VHost),
		zap.String(logFieldQueueNameConstant, run.options.QueueName),
		zap.String(logFieldTargetTypeConstant, string(run.options.TargetType)),
		zap.Int(logFieldMessagesMovedToTempConstant, run.result.MessagesMovedToTemp),
		zap.Int(logFieldMessagesMovedBackConstant, run.result.MessagesMovedBack),
	)

	return run.result, nil
}

func (service *Service) executeForward(executionContext context.Context, run *runContext) error {
	if fetchError := service.fetchSettings(executionContext, run); fetchError != nil {
		return fetchError
	}
	if validationError := service.validate(run); validationError != nil {
		return validationError
	}
	if createError := service.createTempQueue(executionContext, run); createError != nil {
		return createError
	}
	if drainError := service.drainToTemp(executionContext, run); drainError != nil {
		return drainError
	}
	if deleteError := service.deleteOriginalQueue(executionContext, run); deleteError != nil {
		return deleteError
	}
	if createError := service.createFinalQueue(executionContext, run); createError != nil {
		return createError
	}
	if drainError := service.drainBack(executionContext, run); drainError != nil {
		return drainError
	}
	return service.deleteTempQueue(executionContext, run)
}

func (service *Service) fetchSettings(executionContext context.Context, run *runContext) error {
	descriptor, lookupError := service.broker.GetQueue(executionContext, run.options.VHost, run.options.QueueName)
	if lookupError != nil {
		return lookupError
	}
	run.original = descriptor
	service.advance(run, RunStateSettingsFetched)
	return nil
}

func (service *Service) validate(run *runContext) error {
	blockers, _ := compat.Analyze(run.original, run.options.TargetType)
	if len(blockers) > 0 {
		return IncompatibleQueueError{TargetType: run.options.TargetType, Blockers: blockers}
	}

	adjustedArguments, adjustmentError := adjustArguments(run.original.Arguments, run.options.TargetType)
	if adjustmentError != nil {
		return adjustmentError
	}
	run.adjustedArgs = adjustedArguments

	service.advance(run, RunStateValidated)
	return nil
}

func (service *Service) createTempQueue(executionContext context.Context, run *runContext) error {
	createError := service.broker.CreateQueue(executionContext, run.options.VHost, run.options.TempQueueName, true, run.adjustedArgs)
	if createError != nil {
		return QueueCreationFailedError{QueueName: run.options.TempQueueName, Cause: createError}
	}
	run.ledger.RecordQueueCreated(run.options.VHost, run.options.TempQueueName)
	service.advance(run, RunStateTempCreated)
	return nil
}

func (service *Service) drainToTemp(executionContext context.Context, run *runContext) error {
	movedCount, drainError := service.drainQueue(executionContext, run.options.VHost, run.options.QueueName, run.options.TempQueueName)
	run.result.MessagesMovedToTemp = movedCount
	if drainError != nil {
		return drainError
	}
	service.advance(run, RunStateDrainedToTemp)
	return nil
}

func (service *Service) deleteOriginalQueue(executionContext context.Context, run *runContext) error {
	service.logger.Warn(
		nonAtomicWindowWarningConstant,
		zap.String(logFieldVHostConstant, run.options.VHost),
		zap.String(logFieldQueueNameConstant, run.options.QueueName),
	)

	if deleteError := service.broker.DeleteQueue(executionContext, run.options.VHost, run.options.QueueName); deleteError != nil {
		return deleteError
	}
	run.ledger.RecordQueueDeleted(run.options.VHost, run.options.QueueName, OriginalSettings{
		Durable:   run.original.Durable,
		Arguments: run.original.Arguments.Clone(),
	})
	service.advance(run, RunStateOriginalDeleted)
	return nil
}

func (service *Service) createFinalQueue(executionContext context.Context, run *runContext) error {
	createError := service.broker.CreateQueue(executionContext, run.options.VHost, run.options.QueueName, true, run.adjustedArgs)
	if createError != nil {
		return QueueCreationFailedError{QueueName: run.options.QueueName, Cause: createError}
	}
	run.ledger.RecordQueueCreated(run.options.VHost, run.options.QueueName)
	service.advance(run, RunStateFinalCreated)
	return nil
}

func (service *Service) drainBack(executionContext context.Context, run *runContext) error {
	movedCount, drainError := service.drainQueue(executionContext, run.options.VHost, run.options.TempQueueName, run.options.QueueName)
	run.result.MessagesMovedBack = movedCount
	if drainError != nil {
		return drainError
	}
	service.advance(run, RunStateDrainedBack)
	return nil
}

func (service *Service) deleteTempQueue(executionContext context.Context, run *runContext) error {
	if deleteError := service.broker.DeleteQueue(executionContext, run.options.VHost, run.options.TempQueueName); deleteError != nil {
		return deleteError
	}
	service.advance(run, RunStateTempDeleted)
	return nil
}

// drainQueue moves every message from source to destination, fetching in
// bounded batches until the source reports an empty batch. Ordering within
// the run is preserved by publishing one message at a time.
func (service *Service) drainQueue(executionContext context.Context, vhost string, sourceQueue string, destinationQueue string) (int, error) {
	movedCount := 0
	for {
		messages, fetchError := service.broker.FetchMessages(executionContext, vhost, sourceQueue, drainBatchSizeConstant)
		if fetchError != nil {
			return movedCount, MessageTransferFailedError{Source: sourceQueue, Destination: destinationQueue, Cause: fetchError}
		}
		if len(messages) == 0 {
			break
		}
		for _, message := range messages {
			if publishError := service.broker.PublishMessage(executionContext, vhost, destinationQueue, message); publishError != nil {
				return movedCount, MessageTransferFailedError{Source: sourceQueue, Destination: destinationQueue, Cause: publishError}
			}
			movedCount++
		}
	}

	service.logger.Info(
		queueDrainedMessageConstant,
		zap.String(logFieldVHostConstant, vhost),
		zap.String(logFieldSourceQueueConstant, sourceQueue),
		zap.String(logFieldDestinationQueueConstant, destinationQueue),
		zap.Int(logFieldMessageCountConstant, movedCount),
	)

	return movedCount, nil
}

// rollback replays the ledger newest-first. Failures are logged and skipped
// so later steps still run; the error that triggered the rollback is the one
// the caller reports.
func (service *Service) rollback(executionContext context.Context, run *runContext) {
	service.advance(run, RunStateRollingBack)
	service.logger.Warn(
		rollbackStartedMessageConstant,
		zap.String(logFieldVHostConstant, run.options.VHost),
		zap.String(logFieldQueueNameConstant, run.options.QueueName),
		zap.Int(logFieldRollbackStepCountConstant, run.ledger.Len()),
	)

	for _, step := range run.ledger.StepsInReverse() {
		var stepError error
		switch step.Action {
		case RollbackActionDeleteQueue:
			stepError = service.broker.DeleteQueue(executionContext, step.VHost, step.QueueName)
		case RollbackActionRecreateQueue:
			stepError = service.broker.CreateQueue(executionContext, step.VHost, step.QueueName, step.OriginalSettings.Durable, step.OriginalSettings.Arguments)
		}
		if stepError != nil {
			service.logger.Error(
				rollbackStepFailedMessageConstant,
				zap.String(logFieldRollbackActionConstant, string(step.Action)),
				zap.String(logFieldVHostConstant, step.VHost),
				zap.String(logFieldQueueNameConstant, step.QueueName),
				zap.Error(stepError),
			)
		}
	}

	run.ledger.Clear()
	service.logger.Warn(
		rollbackFinishedMessageConstant,
		zap.String(logFieldVHostConstant, run.options.VHost),
		zap.String(logFieldQueueNameConstant, run.options.QueueName),
	)
}

func (service *Service) advance(run *runContext, nextState RunState) {
	run.state = nextState
	service.logger.Debug(
		stateAdvancedMessageConstant,
		zap.String(logFieldQueueNameConstant, run.options.QueueName),
		zap.String(logFieldTempQueueNameConstant, run.options.TempQueueName),
		zap.String(logFieldRunStateConstant, string(nextState)),
	)
}

func normalizeOptions(options Options) (Options, error) {
	normalized := options
	normalized.VHost = strings.TrimSpace(options.VHost)
	normalized.QueueName = strings.TrimSpace(options.QueueName)
	normalized.TempQueueName = strings.TrimSpace(options.TempQueueName)

	if len(normalized.VHost) == 0 {
		return Options{}, errVHostRequired
	}
	if len(normalized.QueueName) == 0 {
		return Options{}, errQueueNameRequired
	}
	if !queues.IsTargetType(normalized.TargetType) {
		return Options{}, fmt.Errorf(
			targetTypeInvalidTemplateConstant,
			joinTargetTypes(queues.TargetTypes()),
			queues.UnknownQueueTypeError{Value: string(normalized.TargetType)},
		)
	}
	if len(normalized.TempQueueName) == 0 {
		normalized.TempQueueName = DefaultTempQueueName(normalized.QueueName)
	}

	return normalized, nil
}

// adjustArguments derives the declaration arguments for the target type:
// unsupported keys are stripped, the type discriminator is set, and
// per-type defaults fill in only when the original left them unset.
func adjustArguments(originalArguments queues.Arguments, targetType queues.QueueType) (queues.Arguments, error) {
	matrix, matrixError := compat.SupportFor(targetType)
	if matrixError != nil {
		return nil, matrixError
	}

	adjusted := originalArguments.Clone()
	if adjusted == nil {
		adjusted = queues.Arguments{}
	}
	for unsupportedKey := range matrix.UnsupportedArguments {
		delete(adjusted, unsupportedKey)
	}
	adjusted[compat.ArgumentQueueType] = queues.StringArgument(string(targetType))
	for defaultKey, defaultValue := range compat.CreationDefaults(targetType) {
		if _, alreadySet := adjusted[defaultKey]; !alreadySet {
			adjusted[defaultKey] = defaultValue
		}
	}

	return adjusted, nil
}

func joinTargetTypes(targetTypes []queues.QueueType) string {
	typeNames := make([]string, 0, len(targetTypes))
	for _, targetType := range targetTypes {
		typeNames = append(typeNames, string(targetType))
	}
	return strings.Join(typeNames, targetTypeJoinSeparatorConstant)
}
