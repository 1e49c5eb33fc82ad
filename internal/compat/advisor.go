package compat

import "github.com/seventhstate/rabbitmigrate/internal/queues"

var quorumAffinityArgumentKeys = []string{
	ArgumentDeadLetterExchange,
	ArgumentMessageTTL,
	ArgumentMaxLength,
}

var streamAffinityArgumentKeys = []string{
	ArgumentMaxLengthBytes,
	ArgumentInitialClusterSize,
	ArgumentLeaderLocator,
}

// Suggest proposes plausible migration target types for a queue based on its
// current type and argument set. Suggestions are advisory only: they never
// override blockers found by Analyze.
func Suggest(descriptor queues.QueueDescriptor) []queues.QueueType {
	// A queue already on a target type is only a candidate for the other one.
	switch descriptor.Type {
	case queues.QueueTypeQuorum:
		return []queues.QueueType{queues.QueueTypeStream}
	case queues.QueueTypeStream:
		return []queues.QueueType{queues.QueueTypeQuorum}
	}

	suggestions := make([]queues.QueueType, 0, 2)
	if hasAnyArgument(descriptor.Arguments, quorumAffinityArgumentKeys) {
		suggestions = append(suggestions, queues.QueueTypeQuorum)
	}
	if hasAnyArgument(descriptor.Arguments, streamAffinityArgumentKeys) {
		suggestions = append(suggestions, queues.QueueTypeStream)
	}

	if len(suggestions) == 0 {
		return queues.TargetTypes()
	}

	return suggestions
}

func hasAnyArgument(arguments queues.Arguments, argumentKeys []string) bool {
	for _, argumentKey := range argumentKeys {
		if _, present := arguments[argumentKey]; present {
			return true
		}
	}
	return false
}
