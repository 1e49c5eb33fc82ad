package compat

import (
	"fmt"

	"github.com/seventhstate/rabbitmigrate/internal/queues"
)

const (
	durabilityBlockerTemplateConstant       = "queue is not durable; %s queues require durability"
	exclusiveBlockerMessageConstant         = "exclusive queues cannot be migrated"
	autoDeleteBlockerMessageConstant        = "auto-delete queues cannot be migrated"
	unknownTargetBlockerTemplateConstant    = "unknown migration target type: %s"
	lostArgumentWarningTemplateConstant     = "setting '%s' will be lost after migration"
	incompatibleValueWarningTemplateConstant = "argument '%s=%s' is not compatible with the target type"
)

// Analyze classifies a queue snapshot against a migration target type.
// Blockers make the migration impossible; warnings flag settings that will
// be dropped or ignored. The function never fails: an unrecognized target
// type is itself reported as a blocker.
func Analyze(descriptor queues.QueueDescriptor, targetType queues.QueueType) (blockers []string, warnings []string) {
	blockers = []string{}
	warnings = []string{}

	matrix, matrixError := SupportFor(targetType)
	if matrixError != nil {
		blockers = append(blockers, fmt.Sprintf(unknownTargetBlockerTemplateConstant, targetType))
		return blockers, warnings
	}

	if !descriptor.Durable && matrix.RequiresDurable {
		blockers = append(blockers, fmt.Sprintf(durabilityBlockerTemplateConstant, targetType))
	}
	if descriptor.Exclusive {
		blockers = append(blockers, exclusiveBlockerMessageConstant)
	}
	if descriptor.AutoDelete {
		blockers = append(blockers, autoDeleteBlockerMessageConstant)
	}

	// Argument keys are visited in lexical order so output is deterministic.
	for _, argumentKey := range descriptor.Arguments.SortedKeys() {
		if _, unsupported := matrix.UnsupportedArguments[argumentKey]; unsupported {
			warnings = append(warnings, fmt.Sprintf(lostArgumentWarningTemplateConstant, argumentKey))
		}
	}

	for _, argumentKey := range descriptor.Arguments.SortedKeys() {
		disallowedValues, restricted := matrix.UnsupportedArgumentValues[argumentKey]
		if !restricted {
			continue
		}
		currentValue := descriptor.Arguments[argumentKey]
		for _, disallowedValue := range disallowedValues {
			if currentValue.Equal(disallowedValue) {
				warnings = append(warnings, fmt.Sprintf(incompatibleValueWarningTemplateConstant, argumentKey, currentValue.String()))
				break
			}
		}
	}

	return blockers, warnings
}
