package management

import "fmt"

const (
	transportErrorTemplateConstant     = "%s request failed: %s"
	statusErrorTemplateConstant        = "%s returned unexpected status %d: %s"
	statusErrorNoBodyTemplateConstant  = "%s returned unexpected status %d"
	queueNotFoundTemplateConstant      = "queue %q not found in vhost %q"
	notRoutedTemplateConstant          = "message published to vhost %q was not routed to queue %q"
	responseDecodingTemplateConstant   = "%s response decoding failed: %s"
	payloadEncodingTemplateConstant    = "%s payload encoding failed: %s"
)

// OperationName identifies a management API operation for error reporting.
type OperationName string

// Named client operations.
const (
	GetQueueOperationName       OperationName = OperationName("GetQueue")
	ListQueuesOperationName     OperationName = OperationName("ListQueues")
	CreateQueueOperationName    OperationName = OperationName("CreateQueue")
	DeleteQueueOperationName    OperationName = OperationName("DeleteQueue")
	FetchMessagesOperationName  OperationName = OperationName("FetchMessages")
	PublishMessageOperationName OperationName = OperationName("PublishMessage")
)

// TransportError reports a request that failed to complete after the
// transport exhausted its retries.
type TransportError struct {
	Operation OperationName
	Cause     error
}

// Error describes the transport failure.
func (transportError TransportError) Error() string {
	return fmt.Sprintf(transportErrorTemplateConstant, transportError.Operation, transportError.Cause)
}

// Unwrap exposes the underlying cause.
func (transportError TransportError) Unwrap() error {
	return transportError.Cause
}

// StatusError reports a completed request whose status code the operation
// does not accept.
type StatusError struct {
	Operation  OperationName
	StatusCode int
	Body       string
}

// Error describes the unexpected status.
func (statusError StatusError) Error() string {
	if len(statusError.Body) == 0 {
		return fmt.Sprintf(statusErrorNoBodyTemplateConstant, statusError.Operation, statusError.StatusCode)
	}
	return fmt.Sprintf(statusErrorTemplateConstant, statusError.Operation, statusError.StatusCode, statusError.Body)
}

// QueueNotFoundError reports a 404 for a queue lookup.
type QueueNotFoundError struct {
	VHost     string
	QueueName string
}

// Error describes the missing queue.
func (notFoundError QueueNotFoundError) Error() string {
	return fmt.Sprintf(queueNotFoundTemplateConstant, notFoundError.QueueName, notFoundError.VHost)
}

// NotRoutedError reports a publish accepted by the broker that did not reach
// the destination queue.
type NotRoutedError struct {
	VHost     string
	QueueName string
}

// Error describes the routing failure.
func (notRoutedError NotRoutedError) Error() string {
	return fmt.Sprintf(notRoutedTemplateConstant, notRoutedError.VHost, notRoutedError.QueueName)
}

// ResponseDecodingError reports a response body that failed to decode.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// PayloadEncodingError reports a request body that failed to encode.
type PayloadEncodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the encoding failure.
func (encodingError PayloadEncodingError) Error() string {
	return fmt.Sprintf(payloadEncodingTemplateConstant, encodingError.Operation, encodingError.Cause)
}

// Unwrap exposes the underlying error.
func (encodingError PayloadEncodingError) Unwrap() error {
	return encodingError.Cause
}
