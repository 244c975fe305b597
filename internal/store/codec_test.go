package store

import (
	"testing"
	"time"

	"mealer/internal/models"
)

func storedOrderDoc() Document {
	return Document{
		"clientInfo": map[string]interface{}{
			"clientId":    "client-1",
			"clientName":  "Pat Doe",
			"clientEmail": "pat@example.com",
		},
		"chefInfo": map[string]interface{}{
			"chefId":          "chef-x",
			"chefName":        "Chef X",
			"chefDescription": "makes soup",
			"chefRating":      4.5,
			"chefAddress": map[string]interface{}{
				"streetAddress": "1 Main St",
				"city":          "Ottawa",
				"country":       "Canada",
				"postalCode":    "K1A0B1",
			},
		},
		"date":               "2024-05-01T12:00:00Z",
		"isPending":          true,
		"isRejected":         false,
		"isCompleted":        false,
		"isRated":            false,
		"rating":             0.0,
		"complaintSubmitted": true,
		"meals": map[string]interface{}{
			"meal-a": map[string]interface{}{"name": "Soup", "price": 8.0, "quantity": 2.0},
		},
	}
}

func TestMakeOrderFromDocument(t *testing.T) {
	order, err := makeOrderFromDocument("o1", storedOrderDoc())
	if err != nil {
		t.Fatalf("makeOrderFromDocument failed: %v", err)
	}

	if order.OrderID != "o1" {
		t.Errorf("expected order ID o1, got %q", order.OrderID)
	}
	if order.ChefInfo.ChefID != "chef-x" || order.ClientInfo.ClientID != "client-1" {
		t.Errorf("party IDs not reconstructed: %+v", order)
	}
	if !order.ComplaintSubmitted {
		t.Error("complaint flag should be carried over")
	}
	want := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if !order.Date.Equal(want) {
		t.Errorf("expected date %v, got %v", want, order.Date)
	}
	meal, ok := order.Meals["meal-a"]
	if !ok {
		t.Fatal("meal-a missing from reconstructed order")
	}
	if meal.Quantity != 2 || meal.Price != 8.0 {
		t.Errorf("meal line mismatch: %+v", meal)
	}
}

func TestMakeOrderMissingComplaintFlagDefaultsFalse(t *testing.T) {
	doc := storedOrderDoc()
	delete(doc, "complaintSubmitted")

	order, err := makeOrderFromDocument("o1", doc)
	if err != nil {
		t.Fatalf("a missing complaint flag should not fail reconstruction: %v", err)
	}
	if order.ComplaintSubmitted {
		t.Error("missing complaint flag should default to false")
	}
}

func TestMakeOrderMalformedDateDefaultsToNow(t *testing.T) {
	doc := storedOrderDoc()
	doc["date"] = "yesterday-ish"

	before := time.Now()
	order, err := makeOrderFromDocument("o1", doc)
	if err != nil {
		t.Fatalf("a malformed date should not fail reconstruction: %v", err)
	}
	if order.Date.Before(before) {
		t.Errorf("malformed date should default to the current time, got %v", order.Date)
	}
}

func TestMakeOrderMissingStatusFlagFails(t *testing.T) {
	doc := storedOrderDoc()
	delete(doc, "isPending")

	if _, err := makeOrderFromDocument("o1", doc); err == nil {
		t.Error("a missing status flag should fail the record's construction")
	}
}

func TestMakeOrderMissingMealsFails(t *testing.T) {
	doc := storedOrderDoc()
	delete(doc, "meals")

	if _, err := makeOrderFromDocument("o1", doc); err == nil {
		t.Error("a missing meals map should fail the record's construction")
	}
}

func TestMakeOrderMissingChefDescriptionDefaults(t *testing.T) {
	doc := storedOrderDoc()
	delete(doc["chefInfo"].(map[string]interface{}), "chefDescription")

	order, err := makeOrderFromDocument("o1", doc)
	if err != nil {
		t.Fatalf("a missing chef description should not fail reconstruction: %v", err)
	}
	if order.ChefInfo.ChefDescription != "no description available" {
		t.Errorf("unexpected description default: %q", order.ChefInfo.ChefDescription)
	}
}

func TestOrderDocumentRoundTrip(t *testing.T) {
	order := models.NewOrder()
	order.ClientInfo = models.ClientInfo{ClientID: "client-1", ClientName: "Pat Doe", ClientEmail: "pat@example.com"}
	order.ChefInfo = models.ChefInfo{
		ChefID:          "chef-x",
		ChefName:        "Chef X",
		ChefDescription: "makes soup",
		ChefRating:      4.5,
		ChefAddress:     models.Address{StreetAddress: "1 Main St", City: "Ottawa", Country: "Canada", PostalCode: "K1A0B1"},
	}
	order.Date = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	order.AddMealQuantity("meal-a", models.MealInfo{Name: "Soup", Price: 8, Quantity: 2})

	rebuilt, err := makeOrderFromDocument("o1", orderToDocument(order))
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if rebuilt.ChefInfo != order.ChefInfo {
		t.Errorf("chef info mismatch: %+v vs %+v", rebuilt.ChefInfo, order.ChefInfo)
	}
	if rebuilt.ClientInfo != order.ClientInfo {
		t.Errorf("client info mismatch: %+v vs %+v", rebuilt.ClientInfo, order.ClientInfo)
	}
	if !rebuilt.Date.Equal(order.Date) {
		t.Errorf("date mismatch: %v vs %v", rebuilt.Date, order.Date)
	}
	if rebuilt.Meals["meal-a"] != order.Meals["meal-a"] {
		t.Errorf("meal line mismatch: %+v vs %+v", rebuilt.Meals["meal-a"], order.Meals["meal-a"])
	}
}

func TestMakeComplaintFromDocument(t *testing.T) {
	doc := Document{
		"title":       "cold food",
		"description": "the order arrived cold",
		"clientId":    "client-1",
		"chefId":      "chef-x",
		"orderId":     "o1",
		"date":        "2024-05-01T12:00:00Z",
	}

	complaint, err := makeComplaintFromDocument("c1", doc)
	if err != nil {
		t.Fatalf("makeComplaintFromDocument failed: %v", err)
	}
	if complaint.ID != "c1" || complaint.Title != "cold food" || complaint.ChefID != "chef-x" {
		t.Errorf("complaint not reconstructed: %+v", complaint)
	}
}

func TestMakeComplaintMissingTitleFails(t *testing.T) {
	doc := Document{
		"description": "the order arrived cold",
		"clientId":    "client-1",
		"chefId":      "chef-x",
	}
	if _, err := makeComplaintFromDocument("c1", doc); err == nil {
		t.Error("a complaint without a title should fail reconstruction")
	}
}
