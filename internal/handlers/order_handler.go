package handlers

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"mealer/internal/models"
	"mealer/internal/monitoring"
	"mealer/internal/session"
	"mealer/internal/store"
)

// userMessages are the fixed, user-facing failure messages per
// operation. Diagnostics stay in the logs.
var userMessages = map[models.Operation]string{
	models.OpAddOrder:         "Failed to add order!",
	models.OpRemoveOrder:      "Failed to remove order!",
	models.OpUpdateOrder:      "Failed to update order info!",
	models.OpGetOrderByID:     "Failed to get order!",
	models.OpLoadChefOrders:   "Failed to load chef's orders!",
	models.OpLoadClientOrders: "Failed to load client's orders!",
	models.OpRateChef:         "Failed to update chef rating!",
}

const genericFailure = "Failed to process request"

// pendingRequest tracks one in-flight dispatch. List loads are sticky:
// they complete once per fetched order, so their token stays
// registered until the session ends.
type pendingRequest struct {
	view   models.StatefulView
	op     models.Operation
	sticky bool
	rating float64
}

// OrderHandler routes tagged order operations to the remote store and
// applies the matching local mutation once the store confirms. Each
// dispatch is tagged with a correlation token so completions reach the
// caller that issued them, even with several dispatches in flight.
type OrderHandler struct {
	session *session.Session
	actions *store.OrderActions
	monitor *monitoring.Monitor

	mu      sync.Mutex
	pending map[string]pendingRequest

	// optimisticRating applies the rating to the locally held order
	// before the remote write is confirmed, as the mobile app did.
	// When false the mutation waits for the completion router.
	optimisticRating bool
}

// Option configures an OrderHandler.
type Option func(*OrderHandler)

// WithOptimisticRating toggles whether a rating mutates the local
// order before remote confirmation.
func WithOptimisticRating(optimistic bool) Option {
	return func(h *OrderHandler) { h.optimisticRating = optimistic }
}

// WithMonitor records dispatch and completion metrics.
func WithMonitor(m *monitoring.Monitor) Option {
	return func(h *OrderHandler) { h.monitor = m }
}

// NewOrderHandler creates a handler for the given session.
func NewOrderHandler(sess *session.Session, opts ...Option) *OrderHandler {
	h := &OrderHandler{
		session:          sess,
		pending:          make(map[string]pendingRequest),
		optimisticRating: true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Bind attaches the store actions. Split from construction because
// the actions call back into the handler.
func (h *OrderHandler) Bind(actions *store.OrderActions) {
	h.actions = actions
}

// Dispatch validates a tagged operation and forwards it to the remote
// store. It returns before the remote operation completes; the outcome
// reaches view later through the completion router. A nil view is
// logged and ignored with no side effects. A payload whose shape does
// not match the operation fails synchronously without any remote call.
func (h *OrderHandler) Dispatch(op models.Operation, payload interface{}, view models.StatefulView) {
	if view == nil {
		log.Printf("[OrderHandler.Dispatch] no view provided for %s", op)
		return
	}

	token := h.register(op, view)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[OrderHandler.Dispatch] panic during %s: %v", op, r)
			h.HandleActionFailure(token, models.OpError, fmt.Sprintf("request failed: %v", r))
		}
	}()

	switch op {
	case models.OpAddOrder:
		h.addNewOrder(token)

	case models.OpRemoveOrder:
		if id, ok := payload.(string); ok && id != "" {
			h.actions.RemoveOrder(token, id)
		} else {
			h.HandleActionFailure(token, op, "invalid order ID provided")
		}

	case models.OpGetOrderByID:
		if id, ok := payload.(string); ok && id != "" {
			h.actions.GetOrderByID(token, id)
		} else {
			h.HandleActionFailure(token, op, "invalid order ID provided")
		}

	case models.OpUpdateOrder:
		if order, ok := payload.(*models.Order); ok && order != nil {
			h.actions.UpdateOrder(token, order)
		} else {
			h.HandleActionFailure(token, op, "invalid order object provided")
		}

	case models.OpLoadChefOrders:
		if id, ok := payload.(string); ok && id != "" {
			h.actions.LoadChefOrders(token, id)
		} else {
			h.HandleActionFailure(token, op, "invalid chef ID provided")
		}

	case models.OpLoadClientOrders:
		if id, ok := payload.(string); ok && id != "" {
			h.actions.LoadClientOrders(token, id)
		} else {
			h.HandleActionFailure(token, op, "invalid client ID provided")
		}

	default:
		h.HandleActionFailure(token, op, fmt.Sprintf("operation %s not implemented", op))
	}

	if h.monitor != nil {
		h.monitor.RecordDispatch(op)
	}
}

// UpdateChefRating starts the two-phase rating write. With optimistic
// rating enabled, the locally held order is mutated before the remote
// write is confirmed.
func (h *OrderHandler) UpdateChefRating(orderID, chefID string, newRating float64, view models.StatefulView) {
	if view == nil {
		log.Printf("[OrderHandler.UpdateChefRating] no view provided")
		return
	}
	token := h.register(models.OpRateChef, view)
	h.mu.Lock()
	req := h.pending[token]
	req.rating = newRating
	h.pending[token] = req
	h.mu.Unlock()

	if newRating < 0 || newRating > 5 {
		h.HandleActionFailure(token, models.OpRateChef, fmt.Sprintf("rating out of range: %v", newRating))
		return
	}

	if h.optimisticRating {
		h.applyLocalRating(orderID, newRating)
	}
	h.actions.UpdateChefRating(token, orderID, chefID, newRating)
}

// SubmitComplaintStatus persists the complaint flag of an order held
// by the signed-in client.
func (h *OrderHandler) SubmitComplaintStatus(order *models.Order, view models.StatefulView) {
	if view == nil {
		log.Printf("[OrderHandler.SubmitComplaintStatus] no view provided")
		return
	}
	token := h.register(models.OpUpdateOrder, view)
	if order == nil || order.OrderID == "" {
		h.HandleActionFailure(token, models.OpUpdateOrder, "invalid order object provided")
		return
	}
	h.actions.UpdateComplaintStatus(token, order)
}

// HandleActionSuccess applies the local mutation for a confirmed
// remote operation and notifies the originating view. A mutation
// failure after the remote write already succeeded is reported as a
// generic error; the remote state is not rolled back, so local and
// remote can diverge until the next full load.
func (h *OrderHandler) HandleActionSuccess(token string, op models.Operation, payload interface{}) {
	req, ok := h.complete(token)
	if !ok {
		log.Printf("[OrderHandler] success for unknown request %s (%s)", token, op)
		return
	}
	view := req.view

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[OrderHandler] success handler panic for %s: %v", op, r)
			view.DBOperationFailure(models.OpError, genericFailure)
		}
	}()

	if h.monitor != nil {
		h.monitor.RecordCompletion(op, true)
	}

	switch op {
	case models.OpAddOrder:
		order, isOrder := payload.(*models.Order)
		if !isOrder || h.session.Role() == models.RoleAdmin {
			h.failView(view, op, "invalid order object provided, or admin attempting to add order")
			return
		}
		var err error
		switch h.session.Role() {
		case models.RoleClient:
			err = h.session.ClientOrders().AddOrder(order)
		case models.RoleChef:
			err = h.session.ChefOrders().AddOrder(order)
		}
		if err != nil {
			h.failView(view, op, err.Error())
			return
		}
		view.DBOperationSuccess(op, order)

	case models.OpRemoveOrder:
		orderID, isString := payload.(string)
		if !isString || h.session.Role() != models.RoleChef {
			h.failView(view, op, "invalid order ID, or client/admin attempting to remove order")
			return
		}
		if err := h.session.ChefOrders().RemoveOrder(orderID); err != nil {
			h.failView(view, op, err.Error())
			return
		}
		view.DBOperationSuccess(op, orderID)

	case models.OpUpdateOrder:
		order, isOrder := payload.(*models.Order)
		if !isOrder || h.session.Role() != models.RoleChef {
			h.failView(view, op, "invalid order instance provided")
			return
		}
		if err := h.session.ChefOrders().UpdateOrder(order); err != nil {
			h.failView(view, op, err.Error())
			return
		}
		view.DBOperationSuccess(op, order)

	case models.OpGetOrderByID:
		view.DBOperationSuccess(op, payload)

	case models.OpLoadChefOrders:
		order, isOrder := payload.(*models.Order)
		if !isOrder {
			h.failView(view, op, "invalid order object provided")
			return
		}
		if err := h.session.ChefOrders().AddOrder(order); err != nil {
			h.failView(view, op, err.Error())
			return
		}
		view.DBOperationSuccess(op, order)

	case models.OpLoadClientOrders:
		order, isOrder := payload.(*models.Order)
		if !isOrder {
			h.failView(view, op, "invalid order object provided")
			return
		}
		if err := h.session.ClientOrders().AddOrder(order); err != nil {
			h.failView(view, op, err.Error())
			return
		}
		view.DBOperationSuccess(op, order)

	case models.OpRateChef:
		if !h.optimisticRating {
			if orderID, isString := payload.(string); isString {
				h.applyLocalRating(orderID, req.rating)
			}
		}
		view.DBOperationSuccess(op, payload)

	default:
		log.Printf("[OrderHandler] success for unhandled operation %s", op)
	}
}

// HandleActionFailure logs the diagnostic and notifies the view with
// the operation's fixed user-facing message.
func (h *OrderHandler) HandleActionFailure(token string, op models.Operation, diagnostic string) {
	req, ok := h.complete(token)
	if !ok {
		log.Printf("[OrderHandler] failure for unknown request %s (%s): %s", token, op, diagnostic)
		return
	}
	if h.monitor != nil {
		h.monitor.RecordCompletion(op, false)
	}
	log.Printf("[OrderHandler] %s failed: %s", op, diagnostic)
	h.failView(req.view, op, diagnostic)
}

// failView notifies a view of failure with the fixed per-operation
// message; the diagnostic only reaches the log.
func (h *OrderHandler) failView(view models.StatefulView, op models.Operation, diagnostic string) {
	log.Printf("[OrderHandler] %s: %s", op, diagnostic)
	message, ok := userMessages[op]
	if !ok {
		message = genericFailure
	}
	view.DBOperationFailure(op, message)
}

// addNewOrder synthesizes an order from the session client's cart and
// submits it. An empty or absent cart fails locally; no remote call is
// made.
func (h *OrderHandler) addNewOrder(token string) {
	client := h.session.Client()
	if client == nil {
		h.HandleActionFailure(token, models.OpAddOrder, "no client in session")
		return
	}
	order, err := BuildOrder(client)
	if err != nil {
		h.HandleActionFailure(token, models.OpAddOrder, err.Error())
		return
	}
	h.actions.AddOrder(token, order)
}

// BuildOrder constructs a new order from the client's cart: client
// info and today's date are stamped on, the chef reference is taken
// from the first line item enumerated, and every line's meal and
// quantity is folded into the order's meal map. The cart is
// conceptually single-chef; nothing enforces it.
func BuildOrder(client *models.Client) (*models.Order, error) {
	if client.Cart == nil || client.Cart.IsEmpty() {
		return nil, fmt.Errorf("cart is empty or uninitialized")
	}

	order := models.NewOrder()
	order.ClientInfo = models.ClientInfo{
		ClientID:    client.UserID,
		ClientName:  client.FirstName + " " + client.LastName,
		ClientEmail: client.Email,
	}
	order.Date = time.Now()

	chefInfoAdded := false
	for _, item := range client.Cart.Items() {
		if !chefInfoAdded {
			order.ChefInfo = item.Meal.Chef
			chefInfoAdded = true
		}
		order.AddMealQuantity(item.Meal.MealID, models.MealInfo{
			Name:     item.Meal.Name,
			Price:    item.Meal.Price,
			Quantity: item.Quantity,
		})
	}
	return order, nil
}

// applyLocalRating mutates the locally held order.
func (h *OrderHandler) applyLocalRating(orderID string, rating float64) {
	client := h.session.ClientOrders()
	if client == nil {
		return
	}
	order := client.GetOrder(orderID)
	if order == nil {
		return
	}
	if err := order.SetRating(rating); err != nil {
		log.Printf("[OrderHandler] rating rejected for order %s: %v", orderID, err)
		return
	}
	order.IsRated = true
}

func (h *OrderHandler) register(op models.Operation, view models.StatefulView) string {
	token := uuid.New().String()
	sticky := op == models.OpLoadChefOrders || op == models.OpLoadClientOrders
	h.mu.Lock()
	h.pending[token] = pendingRequest{view: view, op: op, sticky: sticky}
	h.mu.Unlock()
	return token
}

// complete resolves a token to its request. Non-sticky requests are
// deregistered; list loads stay registered since they complete once
// per fetched order.
func (h *OrderHandler) complete(token string) (pendingRequest, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	req, ok := h.pending[token]
	if ok && !req.sticky {
		delete(h.pending, token)
	}
	return req, ok
}
