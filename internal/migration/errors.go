package migration

import (
	"fmt"
	"strings"

	"github.com/seventhstate/rabbitmigrate/internal/queues"
)

const (
	incompatibleQueueTemplateConstant     = "queue cannot migrate to %s: %s"
	queueCreationFailedTemplateConstant   = "unable to create queue %s: %v"
	messageTransferFailedTemplateConstant = "message transfer from %s to %s failed: %v"
	blockerJoinSeparatorConstant          = "; "
)

// IncompatibleQueueError reports that validation found blockers for the
// requested target type. The run performs no structural changes.
type IncompatibleQueueError struct {
	TargetType queues.QueueType
	Blockers   []string
}

// Error describes the blockers preventing migration.
func (incompatibleError IncompatibleQueueError) Error() string {
	return fmt.Sprintf(incompatibleQueueTemplateConstant, incompatibleError.TargetType, strings.Join(incompatibleError.Blockers, blockerJoinSeparatorConstant))
}

// QueueCreationFailedError reports a failed queue declaration.
type QueueCreationFailedError struct {
	QueueName string
	Cause     error
}

// Error describes the failed creation.
func (creationError QueueCreationFailedError) Error() string {
	return fmt.Sprintf(queueCreationFailedTemplateConstant, creationError.QueueName, creationError.Cause)
}

// Unwrap exposes the underlying cause.
func (creationError QueueCreationFailedError) Unwrap() error {
	return creationError.Cause
}

// MessageTransferFailedError reports a failed drain between two queues.
// Messages already fetched from the source may be lost when this surfaces.
type MessageTransferFailedError struct {
	Source      string
	Destination string
	Cause       error
}

// Error describes the failed transfer.
func (transferError MessageTransferFailedError) Error() string {
	return fmt.Sprintf(messageTransferFailedTemplateConstant, transferError.Source, transferError.Destination, transferError.Cause)
}

// Unwrap exposes the underlying cause.
func (transferError MessageTransferFailedError) Unwrap() error {
	return transferError.Cause
}
