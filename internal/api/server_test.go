package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealer/internal/store"
)

var testSecret = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *store.GormStore, func()) {
	t.Helper()
	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// a pooled :memory: connection would open a second, empty database
	db.DB().SetMaxOpenConns(1)
	st, err := store.NewGormStore(db)
	require.NoError(t, err)

	s := NewServer(Config{
		Secret:           testSecret,
		Store:            st,
		OptimisticRating: true,
	})
	return s, st, func() { db.Close() }
}

func signToken(t *testing.T, userID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:    userID,
		Role:      role,
		FirstName: "Pat",
		LastName:  "Doe",
		Email:     userID + "@example.com",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	})
	signed, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return signed
}

func doRequest(s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// seedChef stores a chef document and returns its server-assigned ID.
func seedChef(t *testing.T, st *store.GormStore) string {
	t.Helper()
	done := make(chan string, 1)
	st.Add(store.ChefCollection, store.Document{"ratingSum": 0.0, "numOfRatings": 0}, func(id string, err error) {
		require.NoError(t, err)
		done <- id
	})
	select {
	case id := <-done:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("store never responded")
		return ""
	}
}

func cartItemBody(chefID string) map[string]interface{} {
	return map[string]interface{}{
		"meal_id":  "meal-a",
		"name":     "Soup",
		"price":    8.0,
		"quantity": 2,
		"chef": map[string]interface{}{
			"chef_id":        chefID,
			"chef_name":      "Chef X",
			"chef_rating":    4.0,
			"street_address": "1 Main St",
			"city":           "Ottawa",
			"country":        "Canada",
			"postal_code":    "K1A0B1",
		},
	}
}

func TestHealthEndpointNeedsNoAuth(t *testing.T) {
	s, _, cleanup := newTestServer(t)
	defer cleanup()

	w := doRequest(s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestsWithoutTokenRejected(t *testing.T) {
	s, _, cleanup := newTestServer(t)
	defer cleanup()

	w := doRequest(s, http.MethodGet, "/api/v1/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenSignedWithWrongKeyRejected(t *testing.T) {
	s, _, cleanup := newTestServer(t)
	defer cleanup()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "u1", Role: "client"})
	signed, err := token.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	w := doRequest(s, http.MethodGet, "/api/v1/orders", signed, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleGatedRoutes(t *testing.T) {
	s, _, cleanup := newTestServer(t)
	defer cleanup()

	client := signToken(t, "client-1", "client")
	chef := signToken(t, "chef-1", "chef")

	// inbox routes are admin only
	w := doRequest(s, http.MethodDelete, "/api/v1/complaints/c1", client, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// cart routes are client only
	w = doRequest(s, http.MethodGet, "/api/v1/cart", chef, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// placing orders is client only
	w = doRequest(s, http.MethodPost, "/api/v1/orders", chef, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPlaceOrderFlow(t *testing.T) {
	s, st, cleanup := newTestServer(t)
	defer cleanup()

	chefID := seedChef(t, st)
	token := signToken(t, "client-1", "client")

	w := doRequest(s, http.MethodPut, "/api/v1/cart/items", token, cartItemBody(chefID))
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(s, http.MethodPost, "/api/v1/orders", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody(t, w)
	orderID, _ := created["order_id"].(string)
	require.NotEmpty(t, orderID)
	assert.Equal(t, chefID, created["chef_id"])
	assert.Equal(t, true, created["is_pending"])
	assert.Equal(t, 16.0, created["total"])

	// cart is cleared once the order is confirmed
	w = doRequest(s, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody(t, w)["items"])

	// the order is retrievable and listed
	w = doRequest(s, http.MethodGet, "/api/v1/orders/"+orderID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(s, http.MethodGet, "/api/v1/orders?status=pending", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders, _ := decodeBody(t, w)["orders"].([]interface{})
	assert.Len(t, orders, 1)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	s, _, cleanup := newTestServer(t)
	defer cleanup()

	token := signToken(t, "client-1", "client")
	w := doRequest(s, http.MethodPost, "/api/v1/orders", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateChefFlow(t *testing.T) {
	s, st, cleanup := newTestServer(t)
	defer cleanup()

	chefID := seedChef(t, st)
	token := signToken(t, "client-1", "client")

	w := doRequest(s, http.MethodPut, "/api/v1/cart/items", token, cartItemBody(chefID))
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(s, http.MethodPost, "/api/v1/orders", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := decodeBody(t, w)["order_id"].(string)

	w = doRequest(s, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/rating", orderID), token,
		map[string]interface{}{"rating": 5.0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// chef aggregate carries the new rating
	done := make(chan store.Document, 1)
	st.Get(store.ChefCollection, chefID, func(doc store.Document, err error) {
		require.NoError(t, err)
		done <- doc
	})
	doc := <-done
	assert.Equal(t, 5.0, doc["ratingSum"])
	assert.Equal(t, 1.0, doc["numOfRatings"])

	// order document is marked rated
	done = make(chan store.Document, 1)
	st.Get(store.OrderCollection, orderID, func(doc store.Document, err error) {
		require.NoError(t, err)
		done <- doc
	})
	doc = <-done
	assert.Equal(t, true, doc["isRated"])
	assert.Equal(t, 5.0, doc["rating"])
}

func TestComplaintFlow(t *testing.T) {
	s, st, cleanup := newTestServer(t)
	defer cleanup()

	chefID := seedChef(t, st)
	clientToken := signToken(t, "client-1", "client")
	adminToken := signToken(t, "admin-1", "admin")

	w := doRequest(s, http.MethodPut, "/api/v1/cart/items", clientToken, cartItemBody(chefID))
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(s, http.MethodPost, "/api/v1/orders", clientToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	orderID := decodeBody(t, w)["order_id"].(string)

	w = doRequest(s, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/complaints", orderID), clientToken,
		map[string]interface{}{"title": "cold food", "description": "the order arrived cold"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	complaintID, _ := decodeBody(t, w)["complaint_id"].(string)
	require.NotEmpty(t, complaintID)

	// the admin inbox load sees the filed complaint
	w = doRequest(s, http.MethodGet, "/api/v1/complaints", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	complaints, _ := decodeBody(t, w)["complaints"].([]interface{})
	require.Len(t, complaints, 1)

	w = doRequest(s, http.MethodDelete, "/api/v1/complaints/"+complaintID, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(s, http.MethodGet, "/api/v1/complaints", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	complaints, _ = decodeBody(t, w)["complaints"].([]interface{})
	assert.Empty(t, complaints)
}

func TestComplaintOnUnknownOrder(t *testing.T) {
	s, _, cleanup := newTestServer(t)
	defer cleanup()

	token := signToken(t, "client-1", "client")
	w := doRequest(s, http.MethodPost, "/api/v1/orders/unknown/complaints", token,
		map[string]interface{}{"title": "cold food", "description": "the order arrived cold"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSummaryWithoutTriageModel(t *testing.T) {
	s, _, cleanup := newTestServer(t)
	defer cleanup()

	token := signToken(t, "admin-1", "admin")
	w := doRequest(s, http.MethodGet, "/api/v1/complaints/summary", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
