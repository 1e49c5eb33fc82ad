package plan

import "github.com/seventhstate/rabbitmigrate/internal/queues"

// MigrationPlan is the per-queue analysis result. A plan carrying blockers
// for a target type must never be executed against that type.
type MigrationPlan struct {
	QueueName            string                        `json:"queue_name"`
	VHost                string                        `json:"vhost"`
	CurrentType          queues.QueueType              `json:"current_type"`
	SuggestedTargetTypes []queues.QueueType            `json:"suggested_target_types"`
	Blockers             map[queues.QueueType][]string `json:"blockers"`
	Warnings             map[queues.QueueType][]string `json:"warnings"`
	Snapshot             queues.QueueDescriptor        `json:"snapshot"`
}

// BlockersFor returns the blockers recorded against one target type.
func (migrationPlan MigrationPlan) BlockersFor(targetType queues.QueueType) []string {
	return migrationPlan.Blockers[targetType]
}

// WarningsFor returns the warnings recorded against one target type.
func (migrationPlan MigrationPlan) WarningsFor(targetType queues.QueueType) []string {
	return migrationPlan.Warnings[targetType]
}

// HasBlockers reports whether any target type carries blockers.
func (migrationPlan MigrationPlan) HasBlockers() bool {
	for _, blockers := range migrationPlan.Blockers {
		if len(blockers) > 0 {
			return true
		}
	}
	return false
}
