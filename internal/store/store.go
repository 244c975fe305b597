package store

import "errors"

// Document is the flat field representation a remote document store
// holds for a single record. Nested objects are nested maps; numbers
// round-trip as float64.
type Document map[string]interface{}

// ErrNotFound is reported by Get when no document exists for the ID.
var ErrNotFound = errors.New("document not found")

// Collection names for the logical collections the app persists to.
const (
	OrderCollection     = "orders"
	ChefCollection      = "chefs"
	ClientCollection    = "clients"
	ComplaintCollection = "complaints"
)

// OrdersField is the array field on chef and client documents holding
// the IDs of their orders.
const OrdersField = "orders"

// DocumentStore is the opaque remote document database. Every call is
// asynchronous and invokes its callback exactly once, on a separate
// goroutine, with either a result or an error. There is no timeout and
// no cancellation beyond what the underlying transport enforces.
type DocumentStore interface {
	// Add creates a document and reports the server-assigned ID.
	Add(collection string, fields Document, cb func(id string, err error))
	// Get fetches a document by ID; ErrNotFound when absent.
	Get(collection, id string, cb func(doc Document, err error))
	// Update applies field deltas to an existing document.
	Update(collection, id string, deltas Document, cb func(err error))
	// Delete removes a document by ID.
	Delete(collection, id string, cb func(err error))
	// ArrayUnion appends a value to an array field if not present.
	ArrayUnion(collection, id, field, value string, cb func(err error))
	// ArrayRemove removes all occurrences of a value from an array field.
	ArrayRemove(collection, id, field, value string, cb func(err error))
	// GetAll fetches every document in a collection, keyed by ID.
	GetAll(collection string, cb func(docs map[string]Document, err error))
}
