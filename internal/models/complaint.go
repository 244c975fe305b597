package models

import (
	"fmt"
	"time"
)

// Complaint is a client's complaint against a chef, reviewed by admins.
type Complaint struct {
	ID          string
	Title       string
	Description string
	ClientID    string
	ChefID      string
	OrderID     string
	Date        time.Time
}

// ValidateComplaint checks that a complaint carries the fields required
// before it can be persisted.
func ValidateComplaint(c *Complaint) error {
	if c == nil {
		return fmt.Errorf("complaint is nil")
	}
	if c.Title == "" {
		return fmt.Errorf("complaint title is required")
	}
	if c.Description == "" {
		return fmt.Errorf("complaint description is required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("complaint has no client")
	}
	if c.ChefID == "" {
		return fmt.Errorf("complaint has no chef")
	}
	return nil
}
