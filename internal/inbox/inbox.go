package inbox

import (
	"fmt"
	"sync"

	"mealer/internal/models"
)

// AdminInbox holds the complaints under admin review, keyed by
// complaint ID. The inbox is rebuilt wholesale from a full collection
// load rather than incrementally synced.
type AdminInbox struct {
	mu         sync.RWMutex
	complaints map[string]*models.Complaint
}

// NewAdminInbox builds an inbox from a list of complaints. A nil
// complaint in the list is rejected.
func NewAdminInbox(complaints []*models.Complaint) (*AdminInbox, error) {
	inbox := &AdminInbox{complaints: make(map[string]*models.Complaint, len(complaints))}
	for _, c := range complaints {
		if err := inbox.AddComplaint(c); err != nil {
			return nil, err
		}
	}
	return inbox, nil
}

// AddComplaint adds a complaint to the inbox.
func (in *AdminInbox) AddComplaint(c *models.Complaint) error {
	if c == nil {
		return fmt.Errorf("complaint is nil")
	}
	if c.ID == "" {
		return fmt.Errorf("complaint has no ID")
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.complaints[c.ID] = c
	return nil
}

// RemoveComplaint removes a complaint by ID. An empty ID is an
// invalid-argument failure and leaves the inbox untouched.
func (in *AdminInbox) RemoveComplaint(complaintID string) error {
	if complaintID == "" {
		return fmt.Errorf("no complaint ID provided")
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	delete(in.complaints, complaintID)
	return nil
}

// GetComplaint returns the complaint with the given ID, or nil.
func (in *AdminInbox) GetComplaint(complaintID string) *models.Complaint {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.complaints[complaintID]
}

// Complaints returns every complaint in the inbox.
func (in *AdminInbox) Complaints() []*models.Complaint {
	in.mu.RLock()
	defer in.mu.RUnlock()
	all := make([]*models.Complaint, 0, len(in.complaints))
	for _, c := range in.complaints {
		all = append(all, c)
	}
	return all
}

// Size returns the number of complaints in the inbox.
func (in *AdminInbox) Size() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.complaints)
}
