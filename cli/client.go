package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ApiClient handles API requests to the Mealer API on behalf of a
// signed-in chef. The bearer token decides which session the server
// resolves requests to.
type ApiClient struct {
	httpClient *http.Client
	BaseURL    string
	Token      string
	UseMock    bool
}

// NewApiClient creates a new API client from the environment.
// MEALER_API_URL points at the server and MEALER_TOKEN carries the
// chef's signed token.
func NewApiClient() *ApiClient {
	baseURL := os.Getenv("MEALER_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := &ApiClient{
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
		BaseURL: baseURL,
		Token:   os.Getenv("MEALER_TOKEN"),
		UseMock: false, // Default to trying the real server first
	}

	// Verify connectivity - if server is not available, use mock data
	if !client.ping() {
		fmt.Printf("Warning: API server at %s is not available. Using mock data.\n", baseURL)
		client.UseMock = true
	}

	return client
}

// ping checks if the API server is available
func (c *ApiClient) ping() bool {
	resp, err := c.httpClient.Get(c.BaseURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Order is the order shape the API serves.
type Order struct {
	OrderID            string          `json:"order_id"`
	ClientID           string          `json:"client_id"`
	ChefID             string          `json:"chef_id"`
	ChefName           string          `json:"chef_name"`
	Date               time.Time       `json:"date"`
	IsPending          bool            `json:"is_pending"`
	IsRejected         bool            `json:"is_rejected"`
	IsCompleted        bool            `json:"is_completed"`
	IsRated            bool            `json:"is_rated"`
	Rating             float64         `json:"rating"`
	ComplaintSubmitted bool            `json:"complaint_submitted"`
	Total              float64         `json:"total"`
	Meals              map[string]Meal `json:"meals"`
}

// Meal is one line of an order.
type Meal struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Status summarizes the order's flags for display.
func (o Order) Status() string {
	switch {
	case o.IsRejected:
		return "rejected"
	case o.IsCompleted:
		return "completed"
	case o.IsPending:
		return "pending"
	default:
		return "accepted"
	}
}

func (c *ApiClient) do(method, path string, body interface{}) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequest(method, c.BaseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.httpClient.Do(req)
}

// apiError extracts the error message the API returned.
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var out struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &out) == nil && out.Error != "" {
		return fmt.Errorf("%s", out.Error)
	}
	return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
}

// LoadOrders asks the server to expand the chef's stored order list.
// The orders stream into the server-side session; a subsequent
// GetOrders sees them.
func (c *ApiClient) LoadOrders() error {
	if c.UseMock {
		return nil
	}

	resp, err := c.do("POST", "/api/v1/orders/load", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return apiError(resp)
	}
	return nil
}

// GetOrders retrieves the session's orders with an optional status
// filter ("pending" or "completed").
func (c *ApiClient) GetOrders(status string) ([]Order, error) {
	if c.UseMock {
		return c.getMockOrders(status), nil
	}

	path := "/api/v1/orders"
	if status != "" {
		path += fmt.Sprintf("?status=%s", status)
	}

	resp, err := c.do("GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var out struct {
		Orders []Order `json:"orders"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// GetOrder retrieves a specific order by ID
func (c *ApiClient) GetOrder(id string) (*Order, error) {
	if c.UseMock {
		return c.getMockOrder(id), nil
	}

	resp, err := c.do("GET", "/api/v1/orders/"+id, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrder writes the order's status flags.
func (c *ApiClient) UpdateOrder(order *Order) error {
	if c.UseMock {
		return nil
	}

	body := map[string]bool{
		"is_pending":   order.IsPending,
		"is_rejected":  order.IsRejected,
		"is_completed": order.IsCompleted,
	}
	resp, err := c.do("PUT", "/api/v1/orders/"+order.OrderID, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// RemoveOrder deletes an order by ID.
func (c *ApiClient) RemoveOrder(id string) error {
	if c.UseMock {
		// Just pretend it worked
		return nil
	}

	resp, err := c.do("DELETE", "/api/v1/orders/"+id, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// Mock data generators
// getMockOrders generates mock order data
func (c *ApiClient) getMockOrders(status string) []Order {
	orders := []Order{
		{
			OrderID:   "order-1",
			ClientID:  "client-1",
			ChefID:    "chef-1",
			ChefName:  "Chef Dubois",
			Date:      time.Now().Add(-30 * time.Minute),
			IsPending: true,
			Total:     28,
			Meals: map[string]Meal{
				"meal-1": {Name: "Pasta Carbonara", Price: 14, Quantity: 2},
			},
		},
		{
			OrderID:     "order-2",
			ClientID:    "client-2",
			ChefID:      "chef-1",
			ChefName:    "Chef Dubois",
			Date:        time.Now().Add(-60 * time.Minute),
			IsCompleted: true,
			IsRated:     true,
			Rating:      4,
			Total:       22,
			Meals: map[string]Meal{
				"meal-2": {Name: "Margherita Pizza", Price: 12, Quantity: 1},
				"meal-3": {Name: "Tiramisu", Price: 10, Quantity: 1},
			},
		},
	}

	// Filter by status if specified
	if status != "" {
		var filtered []Order
		for _, order := range orders {
			if order.Status() == status {
				filtered = append(filtered, order)
			}
		}
		return filtered
	}

	return orders
}

// getMockOrder returns a mock order by ID
func (c *ApiClient) getMockOrder(id string) *Order {
	for _, order := range c.getMockOrders("") {
		if order.OrderID == id {
			return &order
		}
	}
	return nil
}
