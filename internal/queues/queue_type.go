package queues

import (
	"fmt"
	"strings"
)

const (
	classicQueueTypeStringConstant = "classic"
	quorumQueueTypeStringConstant  = "quorum"
	streamQueueTypeStringConstant  = "stream"

	unknownQueueTypeTemplateConstant = "unknown queue type: %s"
)

// QueueType identifies the replication model of a RabbitMQ queue.
type QueueType string

// Recognized queue types.
const (
	QueueTypeClassic QueueType = QueueType(classicQueueTypeStringConstant)
	QueueTypeQuorum  QueueType = QueueType(quorumQueueTypeStringConstant)
	QueueTypeStream  QueueType = QueueType(streamQueueTypeStringConstant)
)

// UnknownQueueTypeError reports an unrecognized queue type value.
type UnknownQueueTypeError struct {
	Value string
}

// Error describes the unrecognized value.
func (typeError UnknownQueueTypeError) Error() string {
	return fmt.Sprintf(unknownQueueTypeTemplateConstant, typeError.Value)
}

// ParseQueueType resolves a queue type string to its enumeration value.
func ParseQueueType(value string) (QueueType, error) {
	switch QueueType(strings.ToLower(strings.TrimSpace(value))) {
	case QueueTypeClassic:
		return QueueTypeClassic, nil
	case QueueTypeQuorum:
		return QueueTypeQuorum, nil
	case QueueTypeStream:
		return QueueTypeStream, nil
	default:
		return QueueType(""), UnknownQueueTypeError{Value: value}
	}
}

// TargetTypes enumerates the queue types a migration may convert to, in
// deterministic quorum-then-stream order.
func TargetTypes() []QueueType {
	return []QueueType{QueueTypeQuorum, QueueTypeStream}
}

// IsTargetType reports whether the queue type is a recognized migration target.
func IsTargetType(queueType QueueType) bool {
	return queueType == QueueTypeQuorum || queueType == QueueTypeStream
}
