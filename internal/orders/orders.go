package orders

import (
	"fmt"
	"sync"

	"mealer/internal/models"
)

// Orders is a per-user index of orders by ID with filtered pending and
// completed views. A chef or client owns exactly one Orders instance;
// it is mutated only after a confirmed remote operation. Store
// completions arrive on their own goroutines, so access is guarded.
type Orders struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
}

// New creates an empty orders collection.
func New() *Orders {
	return &Orders{orders: make(map[string]*models.Order)}
}

// AddOrder inserts an order into the collection. Orders without an ID
// are rejected: nothing is indexed until it has been persisted.
func (o *Orders) AddOrder(order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order is nil")
	}
	if order.OrderID == "" {
		return fmt.Errorf("order has no ID, not persisted yet")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.orders[order.OrderID] = order
	return nil
}

// RemoveOrder removes an order by ID.
func (o *Orders) RemoveOrder(orderID string) error {
	if orderID == "" {
		return fmt.Errorf("no order ID provided")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.orders, orderID)
	return nil
}

// UpdateOrder replaces the entry matching the order's ID.
func (o *Orders) UpdateOrder(order *models.Order) error {
	if order == nil || order.OrderID == "" {
		return fmt.Errorf("invalid order provided")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.orders[order.OrderID]; !ok {
		return fmt.Errorf("order %s not found", order.OrderID)
	}
	o.orders[order.OrderID] = order
	return nil
}

// GetOrder returns the order with the given ID, or nil if absent.
func (o *Orders) GetOrder(orderID string) *models.Order {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.orders[orderID]
}

// Size returns the number of orders in the collection.
func (o *Orders) Size() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.orders)
}

// AllOrders returns every order in the collection.
func (o *Orders) AllOrders() []*models.Order {
	o.mu.RLock()
	defer o.mu.RUnlock()
	all := make([]*models.Order, 0, len(o.orders))
	for _, order := range o.orders {
		all = append(all, order)
	}
	return all
}

// PendingOrders returns the orders still awaiting completion.
func (o *Orders) PendingOrders() []*models.Order {
	return o.filter(func(order *models.Order) bool { return order.IsPending })
}

// CompletedOrders returns the orders marked completed.
func (o *Orders) CompletedOrders() []*models.Order {
	return o.filter(func(order *models.Order) bool { return order.IsCompleted })
}

func (o *Orders) filter(keep func(*models.Order) bool) []*models.Order {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var matched []*models.Order
	for _, order := range o.orders {
		if keep(order) {
			matched = append(matched, order)
		}
	}
	return matched
}
