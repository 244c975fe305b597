package store

import (
	"fmt"
	"log"

	"mealer/internal/models"
)

// OrderCompleter receives the outcome of every asynchronous order
// operation, tagged with the correlation token the dispatcher assigned
// to the request.
type OrderCompleter interface {
	HandleActionSuccess(token string, op models.Operation, payload interface{})
	HandleActionFailure(token string, op models.Operation, diagnostic string)
}

// OrderActions performs order operations against the remote document
// store and reports each outcome to the completion router. Partial
// failures of secondary writes (the per-user order ID lists) are
// logged but never rolled back: the store offers no transactions
// across documents.
type OrderActions struct {
	store     DocumentStore
	completer OrderCompleter
}

// NewOrderActions wires order actions to a store and a completer.
func NewOrderActions(store DocumentStore, completer OrderCompleter) *OrderActions {
	return &OrderActions{store: store, completer: completer}
}

// AddOrder persists a new order. On success the order receives its
// server-assigned ID and the ID is attached to the chef's and client's
// order lists before the completion router is notified.
func (a *OrderActions) AddOrder(token string, order *models.Order) {
	if err := models.ValidateOrder(order); err != nil {
		a.completer.HandleActionFailure(token, models.OpAddOrder, fmt.Sprintf("invalid order instance provided: %v", err))
		return
	}

	a.store.Add(OrderCollection, orderToDocument(order), func(id string, err error) {
		if err != nil {
			a.completer.HandleActionFailure(token, models.OpAddOrder, fmt.Sprintf("failed to add order to database: %v", err))
			return
		}
		order.OrderID = id

		a.store.ArrayUnion(ChefCollection, order.ChefInfo.ChefID, OrdersField, id, func(err error) {
			if err != nil {
				log.Printf("[AddOrder] error attaching order %s to chef %s: %v", id, order.ChefInfo.ChefID, err)
			}
		})
		a.store.ArrayUnion(ClientCollection, order.ClientInfo.ClientID, OrdersField, id, func(err error) {
			if err != nil {
				log.Printf("[AddOrder] error attaching order %s to client %s: %v", id, order.ClientInfo.ClientID, err)
			}
		})

		a.completer.HandleActionSuccess(token, models.OpAddOrder, order)
	})
}

// RemoveOrder deletes an order. The order document is fetched first to
// find the chef and client it references; the order ID is detached
// from both their lists, then the document is deleted. A failed
// sub-step is logged without rolling back the others.
func (a *OrderActions) RemoveOrder(token string, orderID string) {
	if orderID == "" {
		a.completer.HandleActionFailure(token, models.OpRemoveOrder, "no order ID provided")
		return
	}

	a.store.Get(OrderCollection, orderID, func(doc Document, err error) {
		if err == ErrNotFound {
			a.completer.HandleActionFailure(token, models.OpRemoveOrder, "no such document")
			return
		}
		if err != nil {
			a.completer.HandleActionFailure(token, models.OpRemoveOrder, fmt.Sprintf("get failed with %v", err))
			return
		}

		chefID, clientID := orderPartyIDs(doc)
		if chefID != "" {
			a.store.ArrayRemove(ChefCollection, chefID, OrdersField, orderID, func(err error) {
				if err != nil {
					log.Printf("[RemoveOrder] error detaching order %s from chef %s: %v", orderID, chefID, err)
				}
			})
		}
		if clientID != "" {
			a.store.ArrayRemove(ClientCollection, clientID, OrdersField, orderID, func(err error) {
				if err != nil {
					log.Printf("[RemoveOrder] error detaching order %s from client %s: %v", orderID, clientID, err)
				}
			})
		}

		a.store.Delete(OrderCollection, orderID, func(err error) {
			if err != nil {
				a.completer.HandleActionFailure(token, models.OpRemoveOrder, fmt.Sprintf("failed to remove order from database: %v", err))
				return
			}
			a.completer.HandleActionSuccess(token, models.OpRemoveOrder, orderID)
		})
	})
}

// GetOrderByID fetches and reconstructs a single order.
func (a *OrderActions) GetOrderByID(token string, orderID string) {
	if orderID == "" {
		a.completer.HandleActionFailure(token, models.OpGetOrderByID, "no order ID provided")
		return
	}

	a.store.Get(OrderCollection, orderID, func(doc Document, err error) {
		if err != nil {
			a.completer.HandleActionFailure(token, models.OpGetOrderByID, fmt.Sprintf("get failed with %v", err))
			return
		}
		order, err := makeOrderFromDocument(orderID, doc)
		if err != nil {
			a.completer.HandleActionFailure(token, models.OpGetOrderByID, fmt.Sprintf("failed to reconstruct order: %v", err))
			return
		}
		a.completer.HandleActionSuccess(token, models.OpGetOrderByID, order)
	})
}

// UpdateOrder writes the order's status flags to its document.
func (a *OrderActions) UpdateOrder(token string, order *models.Order) {
	if order == nil || order.OrderID == "" {
		a.completer.HandleActionFailure(token, models.OpUpdateOrder, "invalid order instance provided")
		return
	}

	deltas := Document{
		"isPending":   order.IsPending,
		"isRejected":  order.IsRejected,
		"isCompleted": order.IsCompleted,
	}
	a.store.Update(OrderCollection, order.OrderID, deltas, func(err error) {
		if err != nil {
			a.completer.HandleActionFailure(token, models.OpUpdateOrder, fmt.Sprintf("error updating order: %v", err))
			return
		}
		a.completer.HandleActionSuccess(token, models.OpUpdateOrder, order)
	})
}

// UpdateComplaintStatus writes the order's complaint flag.
func (a *OrderActions) UpdateComplaintStatus(token string, order *models.Order) {
	if order == nil || order.OrderID == "" {
		a.completer.HandleActionFailure(token, models.OpUpdateOrder, "invalid order instance provided")
		return
	}

	deltas := Document{"complaintSubmitted": order.ComplaintSubmitted}
	a.store.Update(OrderCollection, order.OrderID, deltas, func(err error) {
		if err != nil {
			a.completer.HandleActionFailure(token, models.OpUpdateOrder, fmt.Sprintf("error updating order: %v", err))
			return
		}
		a.completer.HandleActionSuccess(token, models.OpUpdateOrder, order)
	})
}

// LoadChefOrders expands the chef's stored order ID list, fetching
// each order document individually. Every reconstructed order is
// reported to the completion router as it arrives, not as a batch.
func (a *OrderActions) LoadChefOrders(token string, chefID string) {
	a.loadUserOrders(token, models.OpLoadChefOrders, ChefCollection, chefID)
}

// LoadClientOrders expands the client's stored order ID list.
func (a *OrderActions) LoadClientOrders(token string, clientID string) {
	a.loadUserOrders(token, models.OpLoadClientOrders, ClientCollection, clientID)
}

func (a *OrderActions) loadUserOrders(token string, op models.Operation, collection, userID string) {
	if userID == "" {
		a.completer.HandleActionFailure(token, op, "no user ID provided")
		return
	}

	a.store.Get(collection, userID, func(doc Document, err error) {
		if err == ErrNotFound {
			a.completer.HandleActionFailure(token, op, fmt.Sprintf("user %s not found", userID))
			return
		}
		if err != nil {
			a.completer.HandleActionFailure(token, op, fmt.Sprintf("get failed with %v", err))
			return
		}

		orderIDs := stringSlice(doc[OrdersField])
		if len(orderIDs) == 0 {
			return
		}

		for _, orderID := range orderIDs {
			orderID := orderID
			a.store.Get(OrderCollection, orderID, func(doc Document, err error) {
				if err != nil {
					log.Printf("[loadUserOrders] order %s referenced by %s/%s: %v", orderID, collection, userID, err)
					return
				}
				order, err := makeOrderFromDocument(orderID, doc)
				if err != nil {
					log.Printf("[loadUserOrders] failed to reconstruct order %s: %v", orderID, err)
					return
				}
				a.completer.HandleActionSuccess(token, op, order)
			})
		}
	})
}

// UpdateChefRating runs the two-phase rating write: first the chef's
// aggregate (rating sum and count), then the order's rating and rated
// flag. The phases are not atomic; if the second fails after the first
// succeeded, the chef's aggregate keeps the new rating while the order
// stays unrated. That window is inherent to the store's per-document
// writes and is surfaced as a failure without compensation.
func (a *OrderActions) UpdateChefRating(token string, orderID, chefID string, newRating float64) {
	if chefID == "" || orderID == "" {
		a.completer.HandleActionFailure(token, models.OpRateChef, "no chef or order ID provided")
		return
	}

	a.store.Get(ChefCollection, chefID, func(doc Document, err error) {
		if err != nil {
			a.completer.HandleActionFailure(token, models.OpRateChef, fmt.Sprintf("chef %s not found: %v", chefID, err))
			return
		}

		ratingSum, err := docNumber(doc, "ratingSum")
		if err != nil {
			a.completer.HandleActionFailure(token, models.OpRateChef, fmt.Sprintf("chef %s: %v", chefID, err))
			return
		}
		numOfRatings, err := docNumber(doc, "numOfRatings")
		if err != nil {
			a.completer.HandleActionFailure(token, models.OpRateChef, fmt.Sprintf("chef %s: %v", chefID, err))
			return
		}

		aggregate := Document{
			"ratingSum":    ratingSum + newRating,
			"numOfRatings": int(numOfRatings) + 1,
		}
		a.store.Update(ChefCollection, chefID, aggregate, func(err error) {
			if err != nil {
				a.completer.HandleActionFailure(token, models.OpRateChef, fmt.Sprintf("failed to update chef's rating: %v", err))
				return
			}

			flags := Document{"rating": newRating, "isRated": true}
			a.store.Update(OrderCollection, orderID, flags, func(err error) {
				if err != nil {
					a.completer.HandleActionFailure(token, models.OpRateChef, fmt.Sprintf("failed to mark order rated: %v", err))
					return
				}
				a.completer.HandleActionSuccess(token, models.OpRateChef, orderID)
			})
		})
	})
}

// orderPartyIDs pulls the chef and client IDs out of a stored order.
func orderPartyIDs(doc Document) (chefID, clientID string) {
	if chefData, ok := doc["chefInfo"].(map[string]interface{}); ok {
		chefID = docString(chefData, "chefId")
	}
	if clientData, ok := doc["clientInfo"].(map[string]interface{}); ok {
		clientID = docString(clientData, "clientId")
	}
	return chefID, clientID
}
