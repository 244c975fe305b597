package models

// Operation identifies a remote database operation routed through the
// order and inbox handlers.
type Operation string

const (
	OpAddOrder         Operation = "add_order"
	OpRemoveOrder      Operation = "remove_order"
	OpGetOrderByID     Operation = "get_order_by_id"
	OpUpdateOrder      Operation = "update_order"
	OpLoadChefOrders   Operation = "load_chef_orders"
	OpLoadClientOrders Operation = "load_client_orders"
	OpRateChef         Operation = "rate_chef"
	OpAddComplaint     Operation = "add_complaint"
	OpRemoveComplaint  Operation = "remove_complaint"
	OpGetComplaints    Operation = "get_complaints"
	OpError            Operation = "error"
)

// StatefulView is the surface that receives the outcome of a dispatched
// operation. Every UI client of the handlers implements it; the payload
// on success is operation specific, the message on failure is a fixed
// user-facing string (diagnostics are logged, never shown).
type StatefulView interface {
	DBOperationSuccess(op Operation, payload interface{})
	DBOperationFailure(op Operation, message string)
}
