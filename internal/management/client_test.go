package management_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seventhstate/rabbitmigrate/internal/management"
	"github.com/seventhstate/rabbitmigrate/internal/queues"
)

func newTestClient(testInstance *testing.T, handler http.Handler) (*management.Client, *httptest.Server) {
	testInstance.Helper()

	server := httptest.NewServer(handler)
	testInstance.Cleanup(server.Close)

	configuration := management.DefaultConfiguration()
	configuration.Host = server.URL
	configuration.Username = "operator"
	configuration.Password = "secret"
	configuration.RetryMax = 1

	client, clientError := management.NewClient(configuration)
	require.NoError(testInstance, clientError)

	return client, server
}

func TestGetQueueMapsNotFound(testInstance *testing.T) {
	client, _ := newTestClient(testInstance, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	}))

	_, lookupError := client.GetQueue(context.Background(), "/", "missing")
	require.Error(testInstance, lookupError)

	var notFoundError management.QueueNotFoundError
	require.ErrorAs(testInstance, lookupError, &notFoundError)
	require.Equal(testInstance, "missing", notFoundError.QueueName)
}

func TestGetQueueDecodesDescriptorAndAuthenticates(testInstance *testing.T) {
	var observedPath string
	var observedAuthorization string

	client, _ := newTestClient(testInstance, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		observedPath = request.URL.EscapedPath()
		observedAuthorization = request.Header.Get("Authorization")
		writer.Header().Set("Content-Type", "application/json")
		io.WriteString(writer, `{"name":"orders","vhost":"/","type":"classic","durable":true,"arguments":{"x-message-ttl":30000}}`)
	}))

	descriptor, lookupError := client.GetQueue(context.Background(), "/", "orders")
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, "/api/queues/%2F/orders", observedPath)
	require.NotEmpty(testInstance, observedAuthorization)
	require.Equal(testInstance, queues.QueueTypeClassic, descriptor.Type)
	require.Equal(testInstance, "30000", descriptor.Arguments["x-message-ttl"].String())
}

func TestGetQueueRetriesTransientFailures(testInstance *testing.T) {
	var requestCount atomic.Int32

	client, _ := newTestClient(testInstance, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if requestCount.Add(1) == 1 {
			writer.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(writer, `{"name":"orders","vhost":"/"}`)
	}))

	descriptor, lookupError := client.GetQueue(context.Background(), "/", "orders")
	require.NoError(testInstance, lookupError)
	require.Equal(testInstance, int32(2), requestCount.Load())
	require.True(testInstance, descriptor.Durable)
}

func TestCreateQueueAcceptsCreatedAndNoContent(testInstance *testing.T) {
	statusCodes := []int{http.StatusCreated, http.StatusNoContent}
	var callIndex atomic.Int32
	var observedBody []byte

	client, _ := newTestClient(testInstance, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		observedBody, _ = io.ReadAll(request.Body)
		writer.WriteHeader(statusCodes[callIndex.Load()])
		callIndex.Add(1)
	}))

	arguments := queues.Arguments{"x-queue-type": queues.StringArgument("quorum")}

	require.NoError(testInstance, client.CreateQueue(context.Background(), "/", "orders", true, arguments))
	require.NoError(testInstance, client.CreateQueue(context.Background(), "/", "orders", true, arguments))

	var decodedBody struct {
		Durable   bool             `json:"durable"`
		Arguments queues.Arguments `json:"arguments"`
	}
	require.NoError(testInstance, json.Unmarshal(observedBody, &decodedBody))
	require.True(testInstance, decodedBody.Durable)
	require.Equal(testInstance, "quorum", decodedBody.Arguments["x-queue-type"].String())
}

func TestCreateQueueSurfacesApiErrors(testInstance *testing.T) {
	client, _ := newTestClient(testInstance, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusBadRequest)
		io.WriteString(writer, `{"error":"bad_request"}`)
	}))

	creationError := client.CreateQueue(context.Background(), "/", "orders", true, nil)
	require.Error(testInstance, creationError)

	var statusError management.StatusError
	require.ErrorAs(testInstance, creationError, &statusError)
	require.Equal(testInstance, http.StatusBadRequest, statusError.StatusCode)
}

func TestDeleteQueueTreatsAbsentQueueAsSuccess(testInstance *testing.T) {
	client, _ := newTestClient(testInstance, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	}))

	require.NoError(testInstance, client.DeleteQueue(context.Background(), "/", "already-gone"))
}

func TestFetchMessagesRequestsDestructiveRead(testInstance *testing.T) {
	var observedBody []byte

	client, _ := newTestClient(testInstance, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		observedBody, _ = io.ReadAll(request.Body)
		io.WriteString(writer, `[{"properties":{"delivery_mode":2},"payload":"hello","payload_encoding":"string"}]`)
	}))

	messages, fetchError := client.FetchMessages(context.Background(), "/", "orders", 1000)
	require.NoError(testInstance, fetchError)
	require.Len(testInstance, messages, 1)
	require.Equal(testInstance, "hello", messages[0].Payload)

	var decodedBody struct {
		Count   int    `json:"count"`
		Requeue bool   `json:"requeue"`
		AckMode string `json:"ackmode"`
	}
	require.NoError(testInstance, json.Unmarshal(observedBody, &decodedBody))
	require.Equal(testInstance, 1000, decodedBody.Count)
	require.False(testInstance, decodedBody.Requeue)
	require.Equal(testInstance, "ack_requeue_false", decodedBody.AckMode)
}

func TestPublishMessageUsesQueueVHostAndChecksRouting(testInstance *testing.T) {
	var observedPath string

	client, _ := newTestClient(testInstance, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		observedPath = request.URL.EscapedPath()
		io.WriteString(writer, `{"routed":false}`)
	}))

	message := queues.Message{Payload: "hello", PayloadEncoding: "string"}
	publishError := client.PublishMessage(context.Background(), "tenant-a", "orders", message)
	require.Error(testInstance, publishError)

	var notRoutedError management.NotRoutedError
	require.ErrorAs(testInstance, publishError, &notRoutedError)
	require.Equal(testInstance, "/api/exchanges/tenant-a/amq.default/publish", observedPath)
}
