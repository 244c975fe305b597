package models

import "fmt"

// UserRole represents the role of a signed-in user.
type UserRole string

const (
	RoleClient UserRole = "client"
	RoleChef   UserRole = "chef"
	RoleAdmin  UserRole = "admin"
)

// User holds the identity shared by every role.
type User struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	Address   Address
	Role      UserRole
}

// Chef is a user who publishes meals and fulfills orders. The rating
// aggregate (sum and count) mirrors what the chefs collection stores
// remotely; the average is always derived.
type Chef struct {
	User
	Description  string
	RatingSum    float64
	NumOfRatings int
	OrdersSold   int
	IsSuspended  bool
}

// AverageRating returns the chef's average rating, 0 when unrated.
func (c *Chef) AverageRating() float64 {
	if c.NumOfRatings == 0 {
		return 0
	}
	return c.RatingSum / float64(c.NumOfRatings)
}

// AddRating folds a new rating into the chef's aggregate.
func (c *Chef) AddRating(rating float64) {
	c.RatingSum += rating
	c.NumOfRatings++
}

// Client is a user who browses meals and places orders.
type Client struct {
	User
	Cart *Cart
}

// NewChef creates a chef with an empty rating aggregate.
func NewChef(user User, description string) (*Chef, error) {
	if description == "" {
		return nil, fmt.Errorf("chef description is required")
	}
	user.Role = RoleChef
	return &Chef{User: user, Description: description}, nil
}

// NewClient creates a client with an empty cart.
func NewClient(user User) *Client {
	user.Role = RoleClient
	return &Client{User: user, Cart: NewCart()}
}
