package plan_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seventhstate/rabbitmigrate/internal/compat"
	"github.com/seventhstate/rabbitmigrate/internal/management"
	"github.com/seventhstate/rabbitmigrate/internal/plan"
	"github.com/seventhstate/rabbitmigrate/internal/queues"
)

type stubBrokerOperations struct {
	descriptors  map[string]queues.QueueDescriptor
	lookupErrors map[string]error
	listError    error
}

func (broker *stubBrokerOperations) GetQueue(_ context.Context, _ string, queueName string) (queues.QueueDescriptor, error) {
	if lookupError, failing := broker.lookupErrors[queueName]; failing {
		return queues.QueueDescriptor{}, lookupError
	}
	descriptor, present := broker.descriptors[queueName]
	if !present {
		return queues.QueueDescriptor{}, management.QueueNotFoundError{VHost: "/", QueueName: queueName}
	}
	return descriptor, nil
}

func (broker *stubBrokerOperations) ListQueues(context.Context, string) ([]management.QueueSummary, error) {
	if broker.listError != nil {
		return nil, broker.listError
	}
	summaries := make([]management.QueueSummary, 0, len(broker.descriptors)+len(broker.lookupErrors))
	for _, descriptor := range broker.descriptors {
		summaries = append(summaries, management.QueueSummary{Descriptor: descriptor})
	}
	for queueName := range broker.lookupErrors {
		summaries = append(summaries, management.QueueSummary{Descriptor: queues.QueueDescriptor{Name: queueName, VHost: "/"}})
	}
	return summaries, nil
}

func classicDescriptor(queueName string, arguments queues.Arguments) queues.QueueDescriptor {
	return queues.QueueDescriptor{
		Name:      queueName,
		VHost:     "/",
		Type:      queues.QueueTypeClassic,
		Durable:   true,
		Arguments: arguments,
	}
}

func TestBuildPlanAssemblesAnalysisForBothTargets(testInstance *testing.T) {
	broker := &stubBrokerOperations{descriptors: map[string]queues.QueueDescriptor{
		"orders": classicDescriptor("orders", queues.Arguments{
			compat.ArgumentMessageTTL: queues.NumberArgument(30000),
		}),
	}}

	builder, builderError := plan.NewBuilder(plan.BuilderDependencies{Logger: zap.NewNop(), Broker: broker})
	require.NoError(testInstance, builderError)

	migrationPlan, planError := builder.BuildPlan(context.Background(), "/", "orders")
	require.NoError(testInstance, planError)

	require.Equal(testInstance, "orders", migrationPlan.QueueName)
	require.Equal(testInstance, queues.QueueTypeClassic, migrationPlan.CurrentType)
	require.Equal(testInstance, []queues.QueueType{queues.QueueTypeQuorum}, migrationPlan.SuggestedTargetTypes)
	require.Empty(testInstance, migrationPlan.BlockersFor(queues.QueueTypeQuorum))
	require.Empty(testInstance, migrationPlan.WarningsFor(queues.QueueTypeQuorum))
	require.Empty(testInstance, migrationPlan.BlockersFor(queues.QueueTypeStream))
	require.Len(testInstance, migrationPlan.WarningsFor(queues.QueueTypeStream), 1)
	require.False(testInstance, migrationPlan.HasBlockers())
}

func TestBuildPlanSurfacesQueueNotFound(testInstance *testing.T) {
	builder, builderError := plan.NewBuilder(plan.BuilderDependencies{Broker: &stubBrokerOperations{}})
	require.NoError(testInstance, builderError)

	_, planError := builder.BuildPlan(context.Background(), "/", "missing")
	require.Error(testInstance, planError)

	var notFoundError management.QueueNotFoundError
	require.ErrorAs(testInstance, planError, &notFoundError)
}

func TestBuildPlanForAllSkipsUnfetchableQueues(testInstance *testing.T) {
	broker := &stubBrokerOperations{
		descriptors: map[string]queues.QueueDescriptor{
			"orders": classicDescriptor("orders", nil),
		},
		lookupErrors: map[string]error{
			"flaky": management.TransportError{Operation: management.GetQueueOperationName, Cause: context.DeadlineExceeded},
		},
	}

	builder, builderError := plan.NewBuilder(plan.BuilderDependencies{Logger: zap.NewNop(), Broker: broker})
	require.NoError(testInstance, builderError)

	migrationPlans, planError := builder.BuildPlanForAll(context.Background(), "/")
	require.NoError(testInstance, planError)
	require.Len(testInstance, migrationPlans, 1)
	require.Equal(testInstance, "orders", migrationPlans[0].QueueName)
}

func TestNewBuilderRequiresBroker(testInstance *testing.T) {
	_, builderError := plan.NewBuilder(plan.BuilderDependencies{})
	require.Error(testInstance, builderError)
}

func TestWriteReportPersistsPlansAsJSONArray(testInstance *testing.T) {
	reportPath := filepath.Join(testInstance.TempDir(), "migration_report.json")

	broker := &stubBrokerOperations{descriptors: map[string]queues.QueueDescriptor{
		"orders": classicDescriptor("orders", nil),
	}}
	builder, builderError := plan.NewBuilder(plan.BuilderDependencies{Broker: broker})
	require.NoError(testInstance, builderError)

	migrationPlans, planError := builder.BuildPlanForAll(context.Background(), "/")
	require.NoError(testInstance, planError)
	require.NoError(testInstance, plan.WriteReport(reportPath, migrationPlans))

	reportContents, readError := os.ReadFile(reportPath)
	require.NoError(testInstance, readError)

	var decodedPlans []plan.MigrationPlan
	require.NoError(testInstance, json.Unmarshal(reportContents, &decodedPlans))
	require.Len(testInstance, decodedPlans, 1)
	require.Equal(testInstance, "orders", decodedPlans[0].QueueName)
}
