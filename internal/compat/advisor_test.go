package compat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seventhstate/rabbitmigrate/internal/compat"
	"github.com/seventhstate/rabbitmigrate/internal/queues"
)

func TestSuggestReturnsComplementaryTargetForMigratedQueues(testInstance *testing.T) {
	quorumDescriptor := migratableDescriptor(nil)
	quorumDescriptor.Type = queues.QueueTypeQuorum
	require.Equal(testInstance, []queues.QueueType{queues.QueueTypeStream}, compat.Suggest(quorumDescriptor))

	streamDescriptor := migratableDescriptor(nil)
	streamDescriptor.Type = queues.QueueTypeStream
	require.Equal(testInstance, []queues.QueueType{queues.QueueTypeQuorum}, compat.Suggest(streamDescriptor))
}

func TestSuggestUsesArgumentAffinity(testInstance *testing.T) {
	testCases := []struct {
		name                string
		arguments           queues.Arguments
		expectedSuggestions []queues.QueueType
	}{
		{
			name:                "dead_letter_routing_suggests_quorum",
			arguments:           queues.Arguments{compat.ArgumentDeadLetterExchange: queues.StringArgument("dlx")},
			expectedSuggestions: []queues.QueueType{queues.QueueTypeQuorum},
		},
		{
			name:                "max_length_bytes_suggests_stream",
			arguments:           queues.Arguments{compat.ArgumentMaxLengthBytes: queues.NumberArgument(1048576)},
			expectedSuggestions: []queues.QueueType{queues.QueueTypeStream},
		},
		{
			name: "mixed_affinity_suggests_both",
			arguments: queues.Arguments{
				compat.ArgumentMessageTTL:    queues.NumberArgument(30000),
				compat.ArgumentLeaderLocator: queues.StringArgument("balanced"),
			},
			expectedSuggestions: []queues.QueueType{queues.QueueTypeQuorum, queues.QueueTypeStream},
		},
		{
			name:                "no_affinity_suggests_both",
			arguments:           nil,
			expectedSuggestions: []queues.QueueType{queues.QueueTypeQuorum, queues.QueueTypeStream},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			descriptor := migratableDescriptor(testCase.arguments)
			require.Equal(subtestInstance, testCase.expectedSuggestions, compat.Suggest(descriptor))
		})
	}
}

func TestSuggestIsIdempotent(testInstance *testing.T) {
	descriptor := migratableDescriptor(queues.Arguments{
		compat.ArgumentMessageTTL: queues.NumberArgument(30000),
	})

	firstRun := compat.Suggest(descriptor)
	secondRun := compat.Suggest(descriptor)
	require.Equal(testInstance, firstRun, secondRun)
}
