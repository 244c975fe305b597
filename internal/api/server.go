package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tmc/langchaingo/llms"

	"mealer/internal/handlers"
	"mealer/internal/inbox"
	"mealer/internal/models"
	"mealer/internal/monitoring"
	"mealer/internal/session"
	"mealer/internal/store"
)

// Server is the HTTP surface of the app: the screens' operations
// exposed as endpoints, with completion notifications pushed over
// websockets in addition to the request/response bridge.
type Server struct {
	Router  *gin.Engine
	store   store.DocumentStore
	monitor *monitoring.Monitor
	hub     *Hub
	triage  *inbox.Triage
	secret  []byte

	optimisticRating bool

	mu       sync.Mutex
	sessions map[string]*userContext
}

// userContext bundles one signed-in user's session and handlers.
type userContext struct {
	session *session.Session
	orders  *handlers.OrderHandler
	inbox   *handlers.InboxHandler
}

// Config holds the server's construction parameters.
type Config struct {
	Secret           []byte
	Store            store.DocumentStore
	Monitor          *monitoring.Monitor
	TriageModel      llms.LLM
	OptimisticRating bool
}

// NewServer creates the API server and configures its routes.
func NewServer(cfg Config) *Server {
	s := &Server{
		Router:           gin.Default(),
		store:            cfg.Store,
		monitor:          cfg.Monitor,
		hub:              NewHub(),
		secret:           cfg.Secret,
		optimisticRating: cfg.OptimisticRating,
		sessions:         make(map[string]*userContext),
	}
	if cfg.TriageModel != nil {
		s.triage = inbox.NewTriage(cfg.TriageModel)
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Mealer API is running"})
	})

	authed := s.Router.Group("/")
	authed.Use(AuthMiddleware(s.secret))
	authed.GET("/ws", s.handleWebSocket)

	v1 := s.Router.Group("/api/v1")
	v1.Use(AuthMiddleware(s.secret))
	{
		// Cart management
		v1.GET("/cart", RequireRole(models.RoleClient), s.GetCart)
		v1.PUT("/cart/items", RequireRole(models.RoleClient), s.UpdateCartItem)
		v1.DELETE("/cart", RequireRole(models.RoleClient), s.ClearCart)

		// Order lifecycle
		v1.POST("/orders", RequireRole(models.RoleClient), s.PlaceOrder)
		v1.GET("/orders", s.ListOrders)
		v1.POST("/orders/load", s.LoadOrders)
		v1.GET("/orders/:id", s.GetOrder)
		v1.PUT("/orders/:id", RequireRole(models.RoleChef), s.UpdateOrder)
		v1.DELETE("/orders/:id", RequireRole(models.RoleChef), s.RemoveOrder)
		v1.POST("/orders/:id/rating", RequireRole(models.RoleClient), s.RateChef)
		v1.POST("/orders/:id/complaints", RequireRole(models.RoleClient), s.FileComplaint)

		// Admin inbox
		v1.GET("/complaints", RequireRole(models.RoleAdmin), s.ListComplaints)
		v1.DELETE("/complaints/:id", RequireRole(models.RoleAdmin), s.RemoveComplaint)
		v1.GET("/complaints/summary", RequireRole(models.RoleAdmin), s.SummarizeComplaints)

		// Monitoring snapshot
		v1.GET("/metrics/snapshot", s.GetMetricsSnapshot)
	}
}

// contextFor resolves (or lazily creates) the session and handlers for
// the authenticated user.
func (s *Server) contextFor(claims *Claims) *userContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	if uc, ok := s.sessions[claims.UserID]; ok {
		return uc
	}

	user := models.User{
		UserID:    claims.UserID,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Email:     claims.Email,
	}

	var sess *session.Session
	switch models.UserRole(claims.Role) {
	case models.RoleChef:
		chef, err := models.NewChef(user, "no description available")
		if err != nil {
			chef = &models.Chef{User: user}
		}
		sess = session.NewChefSession(chef)
	case models.RoleAdmin:
		sess = session.NewAdminSession()
	default:
		sess = session.NewClientSession(models.NewClient(user))
	}

	orderHandler := handlers.NewOrderHandler(sess,
		handlers.WithMonitor(s.monitor),
		handlers.WithOptimisticRating(s.optimisticRating))
	orderHandler.Bind(store.NewOrderActions(s.store, orderHandler))

	inboxHandler := handlers.NewInboxHandler(sess, s.monitor)
	inboxHandler.Bind(store.NewInboxActions(s.store, inboxHandler))

	uc := &userContext{session: sess, orders: orderHandler, inbox: inboxHandler}
	s.sessions[claims.UserID] = uc
	return uc
}

// Cart handlers

type cartItemRequest struct {
	MealID   string  `json:"meal_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Chef     struct {
		ChefID        string  `json:"chef_id"`
		ChefName      string  `json:"chef_name"`
		ChefRating    float64 `json:"chef_rating"`
		StreetAddress string  `json:"street_address"`
		City          string  `json:"city"`
		Country       string  `json:"country"`
		PostalCode    string  `json:"postal_code"`
	} `json:"chef"`
}

func (s *Server) GetCart(c *gin.Context) {
	uc := s.contextFor(requestClaims(c))
	client := uc.session.Client()
	items := client.Cart.Items()
	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, gin.H{
			"meal_id":  item.Meal.MealID,
			"name":     item.Meal.Name,
			"price":    item.Meal.Price,
			"quantity": item.Quantity,
			"chef_id":  item.Meal.Chef.ChefID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (s *Server) UpdateCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MealID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "meal_id required"})
		return
	}

	uc := s.contextFor(requestClaims(c))
	client := uc.session.Client()
	client.Cart.UpdateOrderItem(models.OrderItem{
		Meal: models.SearchMealItem{
			MealID: req.MealID,
			Name:   req.Name,
			Price:  req.Price,
			Chef: models.ChefInfo{
				ChefID:     req.Chef.ChefID,
				ChefName:   req.Chef.ChefName,
				ChefRating: req.Chef.ChefRating,
				ChefAddress: models.Address{
					StreetAddress: req.Chef.StreetAddress,
					City:          req.Chef.City,
					Country:       req.Chef.Country,
					PostalCode:    req.Chef.PostalCode,
				},
			},
		},
		Quantity: req.Quantity,
	})
	c.JSON(http.StatusOK, gin.H{"items": client.Cart.Size()})
}

func (s *Server) ClearCart(c *gin.Context) {
	uc := s.contextFor(requestClaims(c))
	uc.session.Client().Cart.Clear()
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// Order handlers

func (s *Server) PlaceOrder(c *gin.Context) {
	uc := s.contextFor(requestClaims(c))
	view := newFutureView()
	uc.orders.Dispatch(models.OpAddOrder, nil, view)

	out, err := view.Await(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}
	if out.failed {
		c.JSON(http.StatusBadRequest, gin.H{"error": out.message})
		return
	}

	order, ok := out.payload.(*models.Order)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add order"})
		return
	}
	uc.session.Client().Cart.Clear()
	c.JSON(http.StatusCreated, orderJSON(order))
}

func (s *Server) GetOrder(c *gin.Context) {
	uc := s.contextFor(requestClaims(c))
	view := newFutureView()
	uc.orders.Dispatch(models.OpGetOrderByID, c.Param("id"), view)

	out, err := view.Await(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}
	if out.failed {
		c.JSON(http.StatusNotFound, gin.H{"error": out.message})
		return
	}
	order, ok := out.payload.(*models.Order)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get order"})
		return
	}
	c.JSON(http.StatusOK, orderJSON(order))
}

type updateOrderRequest struct {
	IsPending   bool `json:"is_pending"`
	IsRejected  bool `json:"is_rejected"`
	IsCompleted bool `json:"is_completed"`
}

func (s *Server) UpdateOrder(c *gin.Context) {
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uc := s.contextFor(requestClaims(c))
	order := uc.session.ChefOrders().GetOrder(c.Param("id"))
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	order.IsPending = req.IsPending
	order.IsRejected = req.IsRejected
	order.IsCompleted = req.IsCompleted

	view := newFutureView()
	uc.orders.Dispatch(models.OpUpdateOrder, order, view)

	out, err := view.Await(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}
	if out.failed {
		c.JSON(http.StatusInternalServerError, gin.H{"error": out.message})
		return
	}
	c.JSON(http.StatusOK, orderJSON(order))
}

func (s *Server) RemoveOrder(c *gin.Context) {
	uc := s.contextFor(requestClaims(c))
	view := newFutureView()
	uc.orders.Dispatch(models.OpRemoveOrder, c.Param("id"), view)

	out, err := view.Await(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}
	if out.failed {
		c.JSON(http.StatusInternalServerError, gin.H{"error": out.message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order removed successfully"})
}

// LoadOrders starts the list expansion of the caller's stored order
// IDs. Orders stream into the local collection and out to the
// caller's websocket as each document arrives; the request itself
// only acknowledges the start.
func (s *Server) LoadOrders(c *gin.Context) {
	claims := requestClaims(c)
	uc := s.contextFor(claims)
	view := s.hub.ViewFor(claims.UserID)

	switch models.UserRole(claims.Role) {
	case models.RoleChef:
		uc.orders.Dispatch(models.OpLoadChefOrders, claims.UserID, view)
	case models.RoleClient:
		uc.orders.Dispatch(models.OpLoadClientOrders, claims.UserID, view)
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Loading orders"})
}

func (s *Server) ListOrders(c *gin.Context) {
	claims := requestClaims(c)
	uc := s.contextFor(claims)

	var collection interface {
		AllOrders() []*models.Order
		PendingOrders() []*models.Order
		CompletedOrders() []*models.Order
	}
	switch models.UserRole(claims.Role) {
	case models.RoleChef:
		collection = uc.session.ChefOrders()
	case models.RoleClient:
		collection = uc.session.ClientOrders()
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var orders []*models.Order
	switch c.Query("status") {
	case "pending":
		orders = collection.PendingOrders()
	case "completed":
		orders = collection.CompletedOrders()
	default:
		orders = collection.AllOrders()
	}

	out := make([]gin.H, 0, len(orders))
	for _, order := range orders {
		out = append(out, orderJSON(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

type ratingRequest struct {
	Rating float64 `json:"rating"`
}

func (s *Server) RateChef(c *gin.Context) {
	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uc := s.contextFor(requestClaims(c))
	order := uc.session.ClientOrders().GetOrder(c.Param("id"))
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	view := newFutureView()
	uc.orders.UpdateChefRating(order.OrderID, order.ChefInfo.ChefID, req.Rating, view)

	out, err := view.Await(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}
	if out.failed {
		c.JSON(http.StatusInternalServerError, gin.H{"error": out.message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chef rating updated"})
}

type complaintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// FileComplaint persists a complaint for an order the client holds and
// flags the order as complained-about. The flag write is confirmed via
// the client's websocket, not this response.
func (s *Server) FileComplaint(c *gin.Context) {
	var req complaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := requestClaims(c)
	uc := s.contextFor(claims)
	order := uc.session.ClientOrders().GetOrder(c.Param("id"))
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	complaint := &models.Complaint{
		Title:       req.Title,
		Description: req.Description,
		ClientID:    order.ClientInfo.ClientID,
		ChefID:      order.ChefInfo.ChefID,
		OrderID:     order.OrderID,
		Date:        time.Now(),
	}

	view := newFutureView()
	uc.inbox.AddNewComplaint(complaint, view)

	out, err := view.Await(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}
	if out.failed {
		c.JSON(http.StatusBadRequest, gin.H{"error": out.message})
		return
	}

	order.ComplaintSubmitted = true
	uc.orders.SubmitComplaintStatus(order, s.hub.ViewFor(claims.UserID))

	c.JSON(http.StatusCreated, gin.H{"complaint_id": complaint.ID})
}

// Admin inbox handlers

func (s *Server) ListComplaints(c *gin.Context) {
	uc := s.contextFor(requestClaims(c))
	view := newFutureView()
	if err := uc.inbox.UpdateAdminInbox(view); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	out, err := view.Await(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}
	if out.failed {
		c.JSON(http.StatusInternalServerError, gin.H{"error": out.message})
		return
	}

	complaints := uc.session.AdminInbox().Complaints()
	list := make([]gin.H, 0, len(complaints))
	for _, complaint := range complaints {
		list = append(list, gin.H{
			"id":          complaint.ID,
			"title":       complaint.Title,
			"description": complaint.Description,
			"client_id":   complaint.ClientID,
			"chef_id":     complaint.ChefID,
			"order_id":    complaint.OrderID,
			"date":        complaint.Date.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"complaints": list})
}

func (s *Server) RemoveComplaint(c *gin.Context) {
	uc := s.contextFor(requestClaims(c))
	view := newFutureView()
	uc.inbox.RemoveComplaint(c.Param("id"), view)

	out, err := view.Await(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}
	if out.failed {
		c.JSON(http.StatusBadRequest, gin.H{"error": out.message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Complaint removed"})
}

func (s *Server) SummarizeComplaints(c *gin.Context) {
	if s.triage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No triage model configured"})
		return
	}
	uc := s.contextFor(requestClaims(c))
	summary, err := s.triage.Summarize(c.Request.Context(), uc.session.AdminInbox())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (s *Server) GetMetricsSnapshot(c *gin.Context) {
	if s.monitor == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, s.monitor.GetMetrics())
}

// orderJSON is the response shape of an order.
func orderJSON(order *models.Order) gin.H {
	meals := make(map[string]gin.H, len(order.Meals))
	for mealID, meal := range order.Meals {
		meals[mealID] = gin.H{"name": meal.Name, "price": meal.Price, "quantity": meal.Quantity}
	}
	return gin.H{
		"order_id":            order.OrderID,
		"client_id":           order.ClientInfo.ClientID,
		"chef_id":             order.ChefInfo.ChefID,
		"chef_name":           order.ChefInfo.ChefName,
		"date":                order.Date.Format(time.RFC3339),
		"is_pending":          order.IsPending,
		"is_rejected":         order.IsRejected,
		"is_completed":        order.IsCompleted,
		"is_rated":            order.IsRated,
		"rating":              order.Rating,
		"complaint_submitted": order.ComplaintSubmitted,
		"total":               order.Total(),
		"meals":               meals,
	}
}
