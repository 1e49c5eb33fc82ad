package compat

import (
	"fmt"

	"github.com/seventhstate/rabbitmigrate/internal/queues"
)

const (
	unknownTargetTypeTemplateConstant = "unknown migration target type: %s"
)

// Queue argument keys referenced by the support matrices and the advisor.
const (
	ArgumentQueueType              = "x-queue-type"
	ArgumentExpires                = "x-expires"
	ArgumentMaxLength              = "x-max-length"
	ArgumentMessageTTL             = "x-message-ttl"
	ArgumentDeadLetterExchange     = "x-dead-letter-exchange"
	ArgumentDeadLetterRoutingKey   = "x-dead-letter-routing-key"
	ArgumentMaxLengthBytes         = "x-max-length-bytes"
	ArgumentMaxPriority            = "x-max-priority"
	ArgumentSingleActiveConsumer   = "x-single-active-consumer"
	ArgumentOverflow               = "overflow"
	ArgumentOverflowBehavior       = "overflow-behavior"
	ArgumentDeliveryLimit          = "delivery-limit"
	ArgumentInitialClusterSize     = "queue-initial-cluster-size"
	ArgumentDeadLetterStrategy     = "dead-letter-strategy"
	ArgumentLeaderLocator          = "leader-locator"
	ArgumentMasterLocator          = "master-locator"
	ArgumentQueueVersion           = "version"
	ArgumentMaxTimeRetention       = "max-time-retention"
	ArgumentMaxSegmentSizeBytes    = "max-segment-size-bytes"
	overflowRejectPublishDLXValue  = "reject-publish-dlx"
)

// FeatureSupportMatrix describes what one target queue type requires and
// which queue arguments it honors. Instances are process-wide constants.
type FeatureSupportMatrix struct {
	RequiresDurable           bool
	SupportedArguments        map[string]struct{}
	UnsupportedArguments      map[string]struct{}
	UnsupportedArgumentValues map[string][]queues.ArgumentValue
}

// UnknownTargetTypeError reports a support matrix lookup for a type that is
// not a recognized migration target.
type UnknownTargetTypeError struct {
	TargetType queues.QueueType
}

// Error describes the unrecognized target type.
func (typeError UnknownTargetTypeError) Error() string {
	return fmt.Sprintf(unknownTargetTypeTemplateConstant, typeError.TargetType)
}

var quorumSupportMatrix = FeatureSupportMatrix{
	RequiresDurable: true,
	SupportedArguments: argumentSet(
		ArgumentExpires,
		ArgumentMaxLength,
		ArgumentMessageTTL,
		ArgumentDeadLetterExchange,
		ArgumentDeadLetterRoutingKey,
		ArgumentMaxLengthBytes,
		ArgumentDeliveryLimit,
		ArgumentInitialClusterSize,
		ArgumentDeadLetterStrategy,
		ArgumentLeaderLocator,
	),
	UnsupportedArguments: argumentSet(
		ArgumentMaxPriority,
		ArgumentMasterLocator,
		ArgumentQueueVersion,
	),
	UnsupportedArgumentValues: map[string][]queues.ArgumentValue{
		ArgumentOverflow: {queues.StringArgument(overflowRejectPublishDLXValue)},
	},
}

var streamSupportMatrix = FeatureSupportMatrix{
	RequiresDurable: true,
	SupportedArguments: argumentSet(
		ArgumentMaxLengthBytes,
		ArgumentInitialClusterSize,
		ArgumentLeaderLocator,
		ArgumentMaxTimeRetention,
	),
	UnsupportedArguments: argumentSet(
		ArgumentMaxPriority,
		ArgumentMessageTTL,
		ArgumentDeadLetterExchange,
		ArgumentDeadLetterRoutingKey,
		ArgumentMaxLength,
		ArgumentSingleActiveConsumer,
		ArgumentOverflow,
		ArgumentOverflowBehavior,
	),
	UnsupportedArgumentValues: map[string][]queues.ArgumentValue{},
}

// SupportFor returns the feature support matrix for a migration target type.
func SupportFor(targetType queues.QueueType) (FeatureSupportMatrix, error) {
	switch targetType {
	case queues.QueueTypeQuorum:
		return quorumSupportMatrix, nil
	case queues.QueueTypeStream:
		return streamSupportMatrix, nil
	default:
		return FeatureSupportMatrix{}, UnknownTargetTypeError{TargetType: targetType}
	}
}

// CreationDefaults returns the target-type-specific argument defaults applied
// during queue creation when the original arguments do not already set them.
func CreationDefaults(targetType queues.QueueType) queues.Arguments {
	switch targetType {
	case queues.QueueTypeQuorum:
		return queues.Arguments{
			ArgumentInitialClusterSize: queues.NumberArgument(3),
			ArgumentLeaderLocator:      queues.StringArgument("client-local"),
		}
	case queues.QueueTypeStream:
		return queues.Arguments{
			ArgumentMaxSegmentSizeBytes: queues.NumberArgument(10485760),
			ArgumentMaxTimeRetention:    queues.NumberArgument(86400000),
		}
	default:
		return queues.Arguments{}
	}
}

func argumentSet(argumentKeys ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(argumentKeys))
	for _, argumentKey := range argumentKeys {
		set[argumentKey] = struct{}{}
	}
	return set
}
