// Package management implements the RabbitMQ management HTTP API client used
// as the toolkit's only channel to the broker. Every call carries basic
// authentication; transient failures are retried with exponential backoff by
// the underlying transport before an error surfaces.
package management
