package session

import (
	"sync"

	"mealer/internal/inbox"
	"mealer/internal/models"
	"mealer/internal/orders"
)

// Session is the signed-in user's context, passed explicitly to every
// component that needs it. It owns the user's orders collection, the
// client's cart and, for admins, the complaints inbox.
type Session struct {
	mu         sync.RWMutex
	role       models.UserRole
	chef       *models.Chef
	client     *models.Client
	chefOrders *orders.Orders
	clientOrd  *orders.Orders
	adminInbox *inbox.AdminInbox
}

// NewChefSession creates a session for a signed-in chef.
func NewChefSession(chef *models.Chef) *Session {
	return &Session{
		role:       models.RoleChef,
		chef:       chef,
		chefOrders: orders.New(),
	}
}

// NewClientSession creates a session for a signed-in client.
func NewClientSession(client *models.Client) *Session {
	return &Session{
		role:      models.RoleClient,
		client:    client,
		clientOrd: orders.New(),
	}
}

// NewAdminSession creates a session for a signed-in admin with an
// empty inbox.
func NewAdminSession() *Session {
	empty, _ := inbox.NewAdminInbox(nil)
	return &Session{
		role:       models.RoleAdmin,
		adminInbox: empty,
	}
}

// Role returns the signed-in user's role.
func (s *Session) Role() models.UserRole {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// Chef returns the signed-in chef, or nil.
func (s *Session) Chef() *models.Chef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chef
}

// Client returns the signed-in client, or nil.
func (s *Session) Client() *models.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// ChefOrders returns the chef's orders collection, or nil for other roles.
func (s *Session) ChefOrders() *orders.Orders {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chefOrders
}

// ClientOrders returns the client's orders collection, or nil for other roles.
func (s *Session) ClientOrders() *orders.Orders {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientOrd
}

// IsAdmin reports whether the session belongs to an admin.
func (s *Session) IsAdmin() bool {
	return s.Role() == models.RoleAdmin
}

// AdminInbox returns the admin's complaints inbox, or nil for other roles.
func (s *Session) AdminInbox() *inbox.AdminInbox {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminInbox
}

// ReplaceAdminInbox swaps in a freshly rebuilt inbox. The previous
// inbox is discarded, not merged.
func (s *Session) ReplaceAdminInbox(in *inbox.AdminInbox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminInbox = in
}
