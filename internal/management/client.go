package management

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"github.com/seventhstate/rabbitmigrate/internal/queues"
)

const (
	queueEndpointTemplateConstant       = "%s/api/queues/%s/%s"
	vhostQueuesEndpointTemplateConstant = "%s/api/queues/%s"
	allQueuesEndpointTemplateConstant   = "%s/api/queues"
	getMessagesEndpointTemplateConstant = "%s/api/queues/%s/%s/get"
	publishEndpointTemplateConstant     = "%s/api/exchanges/%s/amq.default/publish"

	contentTypeHeaderNameConstant  = "Content-Type"
	contentTypeHeaderValueConstant = "application/json"

	messageEncodingAutoConstant       = "auto"
	acknowledgeAndDiscardModeConstant = "ack_requeue_false"

	hostRequiredMessageConstant = "broker host must be configured"
)

var errHostRequired = errors.New(hostRequiredMessageConstant)

// QueueSummary pairs a queue descriptor with the runtime statistics the
// management API reports alongside it.
type QueueSummary struct {
	Descriptor  queues.QueueDescriptor
	Messages    int
	State       string
	Policy      string
	PublishRate float64
	DeliverRate float64
}

// UnmarshalJSON decodes the descriptor and the statistics from one queue
// document.
func (summary *QueueSummary) UnmarshalJSON(data []byte) error {
	if decodeError := json.Unmarshal(data, &summary.Descriptor); decodeError != nil {
		return decodeError
	}

	var statistics struct {
		Messages     int    `json:"messages"`
		State        string `json:"state"`
		Policy       string `json:"policy"`
		MessageStats struct {
			PublishDetails struct {
				Rate float64 `json:"rate"`
			} `json:"publish_details"`
			DeliverDetails struct {
				Rate float64 `json:"rate"`
			} `json:"deliver_details"`
		} `json:"message_stats"`
	}
	if decodeError := json.Unmarshal(data, &statistics); decodeError != nil {
		return decodeError
	}

	summary.Messages = statistics.Messages
	summary.State = statistics.State
	summary.Policy = statistics.Policy
	summary.PublishRate = statistics.MessageStats.PublishDetails.Rate
	summary.DeliverRate = statistics.MessageStats.DeliverDetails.Rate

	return nil
}

// Client issues management API requests with basic authentication and
// bounded retries on transient failures.
type Client struct {
	hostAddress string
	username    string
	password    string
	httpClient  *retryablehttp.Client
}

// NewClient constructs a management API client from the provided configuration.
func NewClient(configuration Configuration) (*Client, error) {
	sanitized := configuration.Sanitize()
	if len(sanitized.Host) == 0 {
		return nil, errHostRequired
	}
	if _, parseError := url.Parse(sanitized.Host); parseError != nil {
		return nil, parseError
	}

	retryingClient := retryablehttp.NewClient()
	retryingClient.RetryMax = sanitized.RetryMax
	retryingClient.HTTPClient.Timeout = time.Duration(sanitized.RequestTimeoutSeconds) * time.Second
	retryingClient.Logger = nil

	return &Client{
		hostAddress: sanitized.Host,
		username:    sanitized.Username,
		password:    sanitized.Password,
		httpClient:  retryingClient,
	}, nil
}

// GetQueue fetches a fresh queue descriptor snapshot.
func (client *Client) GetQueue(executionContext context.Context, vhost string, queueName string) (queues.QueueDescriptor, error) {
	endpoint := fmt.Sprintf(queueEndpointTemplateConstant, client.hostAddress, escapePathSegment(vhost), escapePathSegment(queueName))

	responseBody, statusCode, requestError := client.executeRequest(executionContext, GetQueueOperationName, http.MethodGet, endpoint, nil)
	if requestError != nil {
		return queues.QueueDescriptor{}, requestError
	}

	if statusCode == http.StatusNotFound {
		return queues.QueueDescriptor{}, QueueNotFoundError{VHost: vhost, QueueName: queueName}
	}
	if statusCode != http.StatusOK {
		return queues.QueueDescriptor{}, StatusError{Operation: GetQueueOperationName, StatusCode: statusCode, Body: string(responseBody)}
	}

	var descriptor queues.QueueDescriptor
	if decodeError := json.Unmarshal(responseBody, &descriptor); decodeError != nil {
		return queues.QueueDescriptor{}, ResponseDecodingError{Operation: GetQueueOperationName, Cause: decodeError}
	}

	return descriptor, nil
}

// ListQueues enumerates queues, optionally restricted to one vhost.
func (client *Client) ListQueues(executionContext context.Context, vhost string) ([]QueueSummary, error) {
	endpoint := fmt.Sprintf(allQueuesEndpointTemplateConstant, client.hostAddress)
	if len(strings.TrimSpace(vhost)) > 0 {
		endpoint = fmt.Sprintf(vhostQueuesEndpointTemplateConstant, client.hostAddress, escapePathSegment(vhost))
	}

	responseBody, statusCode, requestError := client.executeRequest(executionContext, ListQueuesOperationName, http.MethodGet, endpoint, nil)
	if requestError != nil {
		return nil, requestError
	}
	if statusCode != http.StatusOK {
		return nil, StatusError{Operation: ListQueuesOperationName, StatusCode: statusCode, Body: string(responseBody)}
	}

	var summaries []QueueSummary
	if decodeError := json.Unmarshal(responseBody, &summaries); decodeError != nil {
		return nil, ResponseDecodingError{Operation: ListQueuesOperationName, Cause: decodeError}
	}

	return summaries, nil
}

// CreateQueue declares a queue with the provided durability and arguments.
// The broker answers 201 for a new queue and 204 when an equivalent queue
// already exists.
func (client *Client) CreateQueue(executionContext context.Context, vhost string, queueName string, durable bool, arguments queues.Arguments) error {
	endpoint := fmt.Sprintf(queueEndpointTemplateConstant, client.hostAddress, escapePathSegment(vhost), escapePathSegment(queueName))

	payload := struct {
		Durable   bool             `json:"durable"`
		Arguments queues.Arguments `json:"arguments"`
	}{Durable: durable, Arguments: arguments}

	responseBody, statusCode, requestError := client.executeRequest(executionContext, CreateQueueOperationName, http.MethodPut, endpoint, payload)
	if requestError != nil {
		return requestError
	}

	if statusCode != http.StatusCreated && statusCode != http.StatusNoContent {
		return StatusError{Operation: CreateQueueOperationName, StatusCode: statusCode, Body: string(responseBody)}
	}

	return nil
}

// DeleteQueue removes a queue. Deleting an absent queue is treated as
// success so rollback replay stays idempotent.
func (client *Client) DeleteQueue(executionContext context.Context, vhost string, queueName string) error {
	endpoint := fmt.Sprintf(queueEndpointTemplateConstant, client.hostAddress, escapePathSegment(vhost), escapePathSegment(queueName))

	responseBody, statusCode, requestError := client.executeRequest(executionContext, DeleteQueueOperationName, http.MethodDelete, endpoint, nil)
	if requestError != nil {
		return requestError
	}

	switch statusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return StatusError{Operation: DeleteQueueOperationName, StatusCode: statusCode, Body: string(responseBody)}
	}
}

// FetchMessages destructively reads up to batchSize messages from a queue.
// Messages are acknowledged and discarded by the broker; they are gone from
// the source whether or not the caller republishes them.
func (client *Client) FetchMessages(executionContext context.Context, vhost string, queueName string, batchSize int) ([]queues.Message, error) {
	endpoint := fmt.Sprintf(getMessagesEndpointTemplateConstant, client.hostAddress, escapePathSegment(vhost), escapePathSegment(queueName))

	payload := struct {
		Count    int    `json:"count"`
		Requeue  bool   `json:"requeue"`
		Encoding string `json:"encoding"`
		AckMode  string `json:"ackmode"`
	}{Count: batchSize, Requeue: false, Encoding: messageEncodingAutoConstant, AckMode: acknowledgeAndDiscardModeConstant}

	responseBody, statusCode, requestError := client.executeRequest(executionContext, FetchMessagesOperationName, http.MethodPost, endpoint, payload)
	if requestError != nil {
		return nil, requestError
	}
	if statusCode != http.StatusOK {
		return nil, StatusError{Operation: FetchMessagesOperationName, StatusCode: statusCode, Body: string(responseBody)}
	}

	var messages []queues.Message
	if decodeError := json.Unmarshal(responseBody, &messages); decodeError != nil {
		return nil, ResponseDecodingError{Operation: FetchMessagesOperationName, Cause: decodeError}
	}

	return messages, nil
}

// PublishMessage republishes one message through the vhost's default
// exchange so it lands in the named queue, preserving properties and payload.
func (client *Client) PublishMessage(executionContext context.Context, vhost string, queueName string, message queues.Message) error {
	endpoint := fmt.Sprintf(publishEndpointTemplateConstant, client.hostAddress, escapePathSegment(vhost))

	properties := message.Properties
	if properties == nil {
		properties = map[string]any{}
	}

	payloadEncoding := message.PayloadEncoding
	if len(payloadEncoding) == 0 {
		payloadEncoding = "string"
	}

	payload := struct {
		Properties      map[string]any `json:"properties"`
		RoutingKey      string         `json:"routing_key"`
		Payload         string         `json:"payload"`
		PayloadEncoding string         `json:"payload_encoding"`
	}{Properties: properties, RoutingKey: queueName, Payload: message.Payload, PayloadEncoding: payloadEncoding}

	responseBody, statusCode, requestError := client.executeRequest(executionContext, PublishMessageOperationName, http.MethodPost, endpoint, payload)
	if requestError != nil {
		return requestError
	}
	if statusCode != http.StatusOK {
		return StatusError{Operation: PublishMessageOperationName, StatusCode: statusCode, Body: string(responseBody)}
	}

	var publishResult struct {
		Routed bool `json:"routed"`
	}
	if decodeError := json.Unmarshal(responseBody, &publishResult); decodeError != nil {
		return ResponseDecodingError{Operation: PublishMessageOperationName, Cause: decodeError}
	}
	if !publishResult.Routed {
		return NotRoutedError{VHost: vhost, QueueName: queueName}
	}

	return nil
}

func (client *Client) executeRequest(executionContext context.Context, operation OperationName, method string, endpoint string, payload any) ([]byte, int, error) {
	var requestBody io.Reader
	if payload != nil {
		encodedPayload, encodingError := json.Marshal(payload)
		if encodingError != nil {
			return nil, 0, PayloadEncodingError{Operation: operation, Cause: encodingError}
		}
		requestBody = bytes.NewReader(encodedPayload)
	}

	request, requestError := retryablehttp.NewRequestWithContext(executionContext, method, endpoint, requestBody)
	if requestError != nil {
		return nil, 0, TransportError{Operation: operation, Cause: requestError}
	}

	request.SetBasicAuth(client.username, client.password)
	if payload != nil {
		request.Header.Set(contentTypeHeaderNameConstant, contentTypeHeaderValueConstant)
	}

	response, executionError := client.httpClient.Do(request)
	if executionError != nil {
		return nil, 0, TransportError{Operation: operation, Cause: executionError}
	}
	defer response.Body.Close()

	responseBody, readError := io.ReadAll(response.Body)
	if readError != nil {
		return nil, response.StatusCode, TransportError{Operation: operation, Cause: readError}
	}

	return responseBody, response.StatusCode, nil
}

func escapePathSegment(segment string) string {
	return url.PathEscape(segment)
}
