package queues

import "encoding/json"

// QueueDescriptor is an immutable snapshot of a queue's control-plane state.
// Instances are produced by the management client; a fresh snapshot must be
// fetched before any mutating decision.
type QueueDescriptor struct {
	Name       string    `json:"name"`
	VHost      string    `json:"vhost"`
	Type       QueueType `json:"type"`
	Durable    bool      `json:"durable"`
	Exclusive  bool      `json:"exclusive"`
	AutoDelete bool      `json:"auto_delete"`
	Arguments  Arguments `json:"arguments"`
}

// descriptorWireFormat mirrors the management API payload. Pointer fields
// distinguish absent values so defensive defaults can apply.
type descriptorWireFormat struct {
	Name       string    `json:"name"`
	VHost      string    `json:"vhost"`
	Type       string    `json:"type"`
	Durable    *bool     `json:"durable"`
	Exclusive  *bool     `json:"exclusive"`
	AutoDelete *bool     `json:"auto_delete"`
	Arguments  Arguments `json:"arguments"`
}

// UnmarshalJSON decodes a management API queue document. Absent fields take
// the least-restrictive interpretation: durable=true, exclusive=false,
// auto-delete=false, type=classic.
func (descriptor *QueueDescriptor) UnmarshalJSON(data []byte) error {
	var wireDocument descriptorWireFormat
	if decodeError := json.Unmarshal(data, &wireDocument); decodeError != nil {
		return decodeError
	}

	resolvedType := QueueTypeClassic
	if parsedType, parseError := ParseQueueType(wireDocument.Type); parseError == nil {
		resolvedType = parsedType
	}

	descriptor.Name = wireDocument.Name
	descriptor.VHost = wireDocument.VHost
	descriptor.Type = resolvedType
	descriptor.Durable = wireDocument.Durable == nil || *wireDocument.Durable
	descriptor.Exclusive = wireDocument.Exclusive != nil && *wireDocument.Exclusive
	descriptor.AutoDelete = wireDocument.AutoDelete != nil && *wireDocument.AutoDelete
	descriptor.Arguments = wireDocument.Arguments

	return nil
}
