package store

import (
	"fmt"
	"log"

	"mealer/internal/models"
)

// InboxCompleter receives the outcome of asynchronous complaint
// operations.
type InboxCompleter interface {
	HandleInboxSuccess(token string, op models.Operation, payload interface{})
	HandleInboxFailure(token string, op models.Operation, diagnostic string)
}

// InboxActions performs complaint operations against the remote store.
type InboxActions struct {
	store     DocumentStore
	completer InboxCompleter
}

// NewInboxActions wires inbox actions to a store and a completer.
func NewInboxActions(store DocumentStore, completer InboxCompleter) *InboxActions {
	return &InboxActions{store: store, completer: completer}
}

// AddComplaint persists a new complaint; the complaint receives its
// server-assigned ID before the completion router is notified.
func (a *InboxActions) AddComplaint(token string, complaint *models.Complaint) {
	if err := models.ValidateComplaint(complaint); err != nil {
		a.completer.HandleInboxFailure(token, models.OpAddComplaint, fmt.Sprintf("invalid complaint provided: %v", err))
		return
	}

	a.store.Add(ComplaintCollection, complaintToDocument(complaint), func(id string, err error) {
		if err != nil {
			a.completer.HandleInboxFailure(token, models.OpAddComplaint, fmt.Sprintf("failed to add complaint: %v", err))
			return
		}
		complaint.ID = id
		a.completer.HandleInboxSuccess(token, models.OpAddComplaint, complaint)
	})
}

// RemoveComplaint deletes a complaint by ID.
func (a *InboxActions) RemoveComplaint(token string, complaintID string) {
	if complaintID == "" {
		a.completer.HandleInboxFailure(token, models.OpRemoveComplaint, "no complaint ID provided")
		return
	}

	a.store.Delete(ComplaintCollection, complaintID, func(err error) {
		if err != nil {
			a.completer.HandleInboxFailure(token, models.OpRemoveComplaint, fmt.Sprintf("failed to remove complaint: %v", err))
			return
		}
		a.completer.HandleInboxSuccess(token, models.OpRemoveComplaint, complaintID)
	})
}

// GetAllComplaints fetches the whole complaints collection and reports
// it as one batch; the admin inbox is rebuilt from it wholesale.
// Complaints that fail reconstruction are logged and skipped.
func (a *InboxActions) GetAllComplaints(token string) {
	a.store.GetAll(ComplaintCollection, func(docs map[string]Document, err error) {
		if err != nil {
			a.completer.HandleInboxFailure(token, models.OpGetComplaints, fmt.Sprintf("failed to fetch complaints: %v", err))
			return
		}
		complaints := make([]*models.Complaint, 0, len(docs))
		for id, doc := range docs {
			complaint, err := makeComplaintFromDocument(id, doc)
			if err != nil {
				log.Printf("[GetAllComplaints] skipping complaint %s: %v", id, err)
				continue
			}
			complaints = append(complaints, complaint)
		}
		a.completer.HandleInboxSuccess(token, models.OpGetComplaints, complaints)
	})
}
