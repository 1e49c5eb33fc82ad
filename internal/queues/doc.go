// Package queues defines the control-plane data model shared across the
// toolkit: queue descriptors, the queue type enumeration, loosely-typed
// queue arguments, and the message shape moved during migrations.
package queues
