package handlers

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"mealer/internal/inbox"
	"mealer/internal/models"
	"mealer/internal/monitoring"
	"mealer/internal/session"
	"mealer/internal/store"
)

var inboxMessages = map[models.Operation]string{
	models.OpAddComplaint:    "Failed to submit complaint!",
	models.OpRemoveComplaint: "Failed to remove complaint!",
	models.OpGetComplaints:   "Failed to load complaints!",
}

// InboxHandler routes complaint operations. Reads and rebuilds of the
// admin inbox are restricted to admin sessions; any signed-in user may
// file a complaint.
type InboxHandler struct {
	session *session.Session
	actions *store.InboxActions
	monitor *monitoring.Monitor

	mu      sync.Mutex
	pending map[string]models.StatefulView
}

// NewInboxHandler creates a handler for the given session.
func NewInboxHandler(sess *session.Session, monitor *monitoring.Monitor) *InboxHandler {
	return &InboxHandler{
		session: sess,
		monitor: monitor,
		pending: make(map[string]models.StatefulView),
	}
}

// Bind attaches the store actions. Split from construction because
// the actions call back into the handler.
func (h *InboxHandler) Bind(actions *store.InboxActions) {
	h.actions = actions
}

// UpdateAdminInbox fetches every complaint and rebuilds the admin
// inbox wholesale once they arrive. Non-admin sessions are denied
// before any remote call.
func (h *InboxHandler) UpdateAdminInbox(view models.StatefulView) error {
	if view == nil {
		log.Printf("[InboxHandler.UpdateAdminInbox] no view provided")
		return fmt.Errorf("no view provided")
	}
	if !h.session.IsAdmin() {
		return fmt.Errorf("access denied: user is not an admin")
	}
	token := h.register(view)
	h.actions.GetAllComplaints(token)
	if h.monitor != nil {
		h.monitor.RecordDispatch(models.OpGetComplaints)
	}
	return nil
}

// AddNewComplaint validates and persists a complaint. Once the store
// confirms, an admin session also inserts it into the local inbox.
func (h *InboxHandler) AddNewComplaint(complaint *models.Complaint, view models.StatefulView) {
	if view == nil {
		log.Printf("[InboxHandler.AddNewComplaint] no view provided")
		return
	}
	token := h.register(view)
	if err := models.ValidateComplaint(complaint); err != nil {
		h.HandleInboxFailure(token, models.OpAddComplaint, err.Error())
		return
	}
	h.actions.AddComplaint(token, complaint)
	if h.monitor != nil {
		h.monitor.RecordDispatch(models.OpAddComplaint)
	}
}

// RemoveComplaint deletes a reviewed complaint. Admin only; an empty
// ID fails synchronously without touching the inbox or the store.
func (h *InboxHandler) RemoveComplaint(complaintID string, view models.StatefulView) {
	if view == nil {
		log.Printf("[InboxHandler.RemoveComplaint] no view provided")
		return
	}
	token := h.register(view)
	if !h.session.IsAdmin() {
		h.HandleInboxFailure(token, models.OpRemoveComplaint, "access denied: user is not an admin")
		return
	}
	if complaintID == "" {
		h.HandleInboxFailure(token, models.OpRemoveComplaint, "no complaint ID provided")
		return
	}
	h.actions.RemoveComplaint(token, complaintID)
	if h.monitor != nil {
		h.monitor.RecordDispatch(models.OpRemoveComplaint)
	}
}

// HandleInboxSuccess applies the local inbox mutation for a confirmed
// remote operation and notifies the originating view.
func (h *InboxHandler) HandleInboxSuccess(token string, op models.Operation, payload interface{}) {
	view, ok := h.complete(token)
	if !ok {
		log.Printf("[InboxHandler] success for unknown request %s (%s)", token, op)
		return
	}
	if h.monitor != nil {
		h.monitor.RecordCompletion(op, true)
	}

	switch op {
	case models.OpAddComplaint:
		complaint, isComplaint := payload.(*models.Complaint)
		if !isComplaint {
			h.failView(view, op, "invalid complaint payload")
			return
		}
		if h.session.IsAdmin() {
			if err := h.session.AdminInbox().AddComplaint(complaint); err != nil {
				h.failView(view, op, fmt.Sprintf("complaint stored but not added to inbox: %v", err))
				return
			}
		}
		view.DBOperationSuccess(op, complaint)

	case models.OpRemoveComplaint:
		complaintID, isString := payload.(string)
		if !isString {
			h.failView(view, op, "invalid complaint ID payload")
			return
		}
		if err := h.session.AdminInbox().RemoveComplaint(complaintID); err != nil {
			h.failView(view, op, err.Error())
			return
		}
		view.DBOperationSuccess(op, complaintID)

	case models.OpGetComplaints:
		complaints, isList := payload.([]*models.Complaint)
		if !isList {
			h.failView(view, op, "invalid complaints payload")
			return
		}
		rebuilt, err := inbox.NewAdminInbox(complaints)
		if err != nil {
			h.failView(view, op, fmt.Sprintf("failed to rebuild admin inbox: %v", err))
			return
		}
		h.session.ReplaceAdminInbox(rebuilt)
		view.DBOperationSuccess(op, complaints)

	default:
		log.Printf("[InboxHandler] success for unhandled operation %s", op)
	}
}

// HandleInboxFailure logs the diagnostic and notifies the view with
// the operation's fixed user-facing message.
func (h *InboxHandler) HandleInboxFailure(token string, op models.Operation, diagnostic string) {
	view, ok := h.complete(token)
	if !ok {
		log.Printf("[InboxHandler] failure for unknown request %s (%s): %s", token, op, diagnostic)
		return
	}
	if h.monitor != nil {
		h.monitor.RecordCompletion(op, false)
	}
	h.failView(view, op, diagnostic)
}

func (h *InboxHandler) failView(view models.StatefulView, op models.Operation, diagnostic string) {
	log.Printf("[InboxHandler] %s: %s", op, diagnostic)
	message, ok := inboxMessages[op]
	if !ok {
		message = genericFailure
	}
	view.DBOperationFailure(op, message)
}

func (h *InboxHandler) register(view models.StatefulView) string {
	token := uuid.New().String()
	h.mu.Lock()
	h.pending[token] = view
	h.mu.Unlock()
	return token
}

func (h *InboxHandler) complete(token string) (models.StatefulView, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	view, ok := h.pending[token]
	if ok {
		delete(h.pending, token)
	}
	return view, ok
}
