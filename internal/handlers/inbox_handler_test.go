package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealer/internal/models"
	"mealer/internal/session"
	"mealer/internal/store"
)

func newAdminInboxHandler(st store.DocumentStore) (*InboxHandler, *session.Session) {
	sess := session.NewAdminSession()
	h := NewInboxHandler(sess, nil)
	h.Bind(store.NewInboxActions(st, h))
	return h, sess
}

func testComplaint(title string) *models.Complaint {
	return &models.Complaint{
		Title:       title,
		Description: "the order arrived cold",
		ClientID:    "client-1",
		ChefID:      "chef-x",
		OrderID:     "o1",
		Date:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func complaintDoc(title string) store.Document {
	return store.Document{
		"title":       title,
		"description": "the order arrived cold",
		"clientId":    "client-1",
		"chefId":      "chef-x",
		"orderId":     "o1",
		"date":        "2024-05-01T12:00:00Z",
	}
}

func TestAddNewComplaintPersistsThenInsertsForAdmin(t *testing.T) {
	st := newFakeStore()
	h, sess := newAdminInboxHandler(st)
	view := &recordingView{}

	complaint := testComplaint("cold food")
	h.AddNewComplaint(complaint, view)

	require.Len(t, view.successes, 1)
	require.NotEmpty(t, complaint.ID, "complaint receives its server-assigned ID")
	assert.Len(t, st.docs[store.ComplaintCollection], 1)
	assert.Equal(t, complaint, sess.AdminInbox().GetComplaint(complaint.ID))
}

func TestAddNewComplaintClientDoesNotTouchInbox(t *testing.T) {
	st := newFakeStore()
	sess := session.NewClientSession(models.NewClient(models.User{UserID: "client-1"}))
	h := NewInboxHandler(sess, nil)
	h.Bind(store.NewInboxActions(st, h))
	view := &recordingView{}

	h.AddNewComplaint(testComplaint("cold food"), view)

	require.Len(t, view.successes, 1, "any signed-in user may file a complaint")
	assert.Len(t, st.docs[store.ComplaintCollection], 1)
	assert.Nil(t, sess.AdminInbox(), "client sessions carry no inbox")
}

func TestAddNewComplaintRejectsInvalid(t *testing.T) {
	st := newFakeStore()
	h, _ := newAdminInboxHandler(st)
	view := &recordingView{}

	h.AddNewComplaint(&models.Complaint{Title: "no description"}, view)

	assert.Empty(t, st.docs[store.ComplaintCollection], "invalid complaint must not reach the store")
	require.Len(t, view.failures, 1)
	assert.Equal(t, "Failed to submit complaint!", view.failures[0].message)
}

func TestRemoveComplaintEmptyID(t *testing.T) {
	st := newFakeStore()
	st.put(store.ComplaintCollection, "c1", complaintDoc("cold food"))

	h, sess := newAdminInboxHandler(st)
	existing := testComplaint("cold food")
	existing.ID = "c1"
	require.NoError(t, sess.AdminInbox().AddComplaint(existing))

	view := &recordingView{}
	h.RemoveComplaint("", view)

	require.Len(t, view.failures, 1)
	assert.Equal(t, "Failed to remove complaint!", view.failures[0].message)
	assert.Equal(t, 1, sess.AdminInbox().Size(), "inbox mapping must stay untouched")
	assert.NotNil(t, st.doc(store.ComplaintCollection, "c1"), "store must stay untouched")
}

func TestRemoveComplaintAdminOnly(t *testing.T) {
	st := newFakeStore()
	st.put(store.ComplaintCollection, "c1", complaintDoc("cold food"))

	sess := session.NewClientSession(models.NewClient(models.User{UserID: "client-1"}))
	h := NewInboxHandler(sess, nil)
	h.Bind(store.NewInboxActions(st, h))
	view := &recordingView{}

	h.RemoveComplaint("c1", view)

	require.Len(t, view.failures, 1)
	assert.NotNil(t, st.doc(store.ComplaintCollection, "c1"))
}

func TestRemoveComplaintDeletesEverywhere(t *testing.T) {
	st := newFakeStore()
	st.put(store.ComplaintCollection, "c1", complaintDoc("cold food"))

	h, sess := newAdminInboxHandler(st)
	existing := testComplaint("cold food")
	existing.ID = "c1"
	require.NoError(t, sess.AdminInbox().AddComplaint(existing))

	view := &recordingView{}
	h.RemoveComplaint("c1", view)

	require.Len(t, view.successes, 1)
	assert.Nil(t, st.doc(store.ComplaintCollection, "c1"))
	assert.Nil(t, sess.AdminInbox().GetComplaint("c1"))
}

func TestUpdateAdminInboxDeniedForNonAdmin(t *testing.T) {
	st := newFakeStore()
	sess := session.NewClientSession(models.NewClient(models.User{UserID: "client-1"}))
	h := NewInboxHandler(sess, nil)
	h.Bind(store.NewInboxActions(st, h))

	err := h.UpdateAdminInbox(&recordingView{})
	assert.Error(t, err, "non-admin inbox loads are denied before any remote call")
}

func TestUpdateAdminInboxRebuildsWholesale(t *testing.T) {
	st := newFakeStore()
	st.put(store.ComplaintCollection, "c1", complaintDoc("cold food"))
	st.put(store.ComplaintCollection, "c2", complaintDoc("late delivery"))
	st.put(store.ComplaintCollection, "c3", store.Document{"title": "missing fields"})

	h, sess := newAdminInboxHandler(st)

	// a stale local entry that no longer exists remotely
	stale := testComplaint("stale")
	stale.ID = "gone"
	require.NoError(t, sess.AdminInbox().AddComplaint(stale))

	view := &recordingView{}
	require.NoError(t, h.UpdateAdminInbox(view))

	require.Len(t, view.successes, 1)
	rebuilt := sess.AdminInbox()
	assert.Equal(t, 2, rebuilt.Size(), "undecodable records are skipped, stale entries dropped")
	assert.NotNil(t, rebuilt.GetComplaint("c1"))
	assert.NotNil(t, rebuilt.GetComplaint("c2"))
	assert.Nil(t, rebuilt.GetComplaint("gone"))
}
