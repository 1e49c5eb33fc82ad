package migration

import "github.com/seventhstate/rabbitmigrate/internal/queues"

// RollbackAction names the structural operation a rollback step performs.
type RollbackAction string

const (
	RollbackActionDeleteQueue   RollbackAction = "DELETE_QUEUE"
	RollbackActionRecreateQueue RollbackAction = "RECREATE_QUEUE"
)

// OriginalSettings captures the pre-migration declaration of a queue so a
// rollback can restore it exactly as it was.
type OriginalSettings struct {
	Durable   bool
	Arguments queues.Arguments
}

// RollbackStep is one recorded structural change. Steps are appended only
// after the corresponding forward operation succeeded.
type RollbackStep struct {
	Action           RollbackAction
	VHost            string
	QueueName        string
	OriginalSettings OriginalSettings
}

// Ledger accumulates rollback steps in forward order.
type Ledger struct {
	steps []RollbackStep
}

// RecordQueueCreated registers that a queue now exists and must be deleted on
// rollback.
func (ledger *Ledger) RecordQueueCreated(vhost string, queueName string) {
	ledger.steps = append(ledger.steps, RollbackStep{
		Action:    RollbackActionDeleteQueue,
		VHost:     vhost,
		QueueName: queueName,
	})
}

// RecordQueueDeleted registers that a queue was removed and must be recreated
// with its original settings on rollback.
func (ledger *Ledger) RecordQueueDeleted(vhost string, queueName string, settings OriginalSettings) {
	ledger.steps = append(ledger.steps, RollbackStep{
		Action:           RollbackActionRecreateQueue,
		VHost:            vhost,
		QueueName:        queueName,
		OriginalSettings: settings,
	})
}

// StepsInReverse returns the recorded steps in replay order, newest first.
func (ledger *Ledger) StepsInReverse() []RollbackStep {
	reversed := make([]RollbackStep, 0, len(ledger.steps))
	for stepIndex := len(ledger.steps) - 1; stepIndex >= 0; stepIndex-- {
		reversed = append(reversed, ledger.steps[stepIndex])
	}
	return reversed
}

// Len reports how many structural changes are currently recorded.
func (ledger *Ledger) Len() int {
	return len(ledger.steps)
}

// Clear drops all recorded steps once the run completes.
func (ledger *Ledger) Clear() {
	ledger.steps = nil
}
