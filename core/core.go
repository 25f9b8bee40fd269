package core

// Operation represents a backend storage operation, one of Create, Read, Update, Delete, List
type Operation string

// all supported storage operations
const (
	OperationCreate Operation = "create"
	OperationRead   Operation = "read"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
	OperationList   Operation = "list"
)

// Notifier is an interface to receive resource mutation notifications.
// The payload is the JSON representation of the object after the operation,
// or of the deleted object for delete operations.
type Notifier interface {
	Notify(resource string, operation Operation, payload []byte)
}
