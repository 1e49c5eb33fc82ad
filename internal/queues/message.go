package queues

// Message is one queued message as exposed by the management API's
// destructive get endpoint. Properties and payload pass through a migration
// unmodified.
type Message struct {
	Properties      map[string]any `json:"properties"`
	Payload         string         `json:"payload"`
	PayloadEncoding string         `json:"payload_encoding"`
}
