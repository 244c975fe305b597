package store

import (
	"fmt"
	"log"
	"time"

	"mealer/internal/models"
)

// orderToDocument flattens an order into the remote document shape.
func orderToDocument(order *models.Order) Document {
	meals := make(map[string]interface{}, len(order.Meals))
	for mealID, meal := range order.Meals {
		meals[mealID] = map[string]interface{}{
			"name":     meal.Name,
			"price":    meal.Price,
			"quantity": meal.Quantity,
		}
	}
	return Document{
		"clientInfo": map[string]interface{}{
			"clientId":    order.ClientInfo.ClientID,
			"clientName":  order.ClientInfo.ClientName,
			"clientEmail": order.ClientInfo.ClientEmail,
		},
		"chefInfo": map[string]interface{}{
			"chefId":          order.ChefInfo.ChefID,
			"chefName":        order.ChefInfo.ChefName,
			"chefDescription": order.ChefInfo.ChefDescription,
			"chefRating":      order.ChefInfo.ChefRating,
			"chefAddress": map[string]interface{}{
				"streetAddress": order.ChefInfo.ChefAddress.StreetAddress,
				"city":          order.ChefInfo.ChefAddress.City,
				"country":       order.ChefInfo.ChefAddress.Country,
				"postalCode":    order.ChefInfo.ChefAddress.PostalCode,
			},
		},
		"date":               order.Date.Format(time.RFC3339),
		"isPending":          order.IsPending,
		"isRejected":         order.IsRejected,
		"isCompleted":        order.IsCompleted,
		"isRated":            order.IsRated,
		"rating":             order.Rating,
		"complaintSubmitted": order.ComplaintSubmitted,
		"meals":              meals,
	}
}

// makeOrderFromDocument reconstructs an order from its stored document.
// A missing complaint flag defaults to false and a malformed date
// defaults to the current date; any other missing field fails the
// record's construction.
func makeOrderFromDocument(id string, doc Document) (*models.Order, error) {
	if doc == nil {
		return nil, fmt.Errorf("invalid document for order %s", id)
	}

	order := models.NewOrder()
	order.OrderID = id

	var err error
	if order.IsPending, err = docBool(doc, "isPending"); err != nil {
		return nil, err
	}
	if order.IsRejected, err = docBool(doc, "isRejected"); err != nil {
		return nil, err
	}
	if order.IsCompleted, err = docBool(doc, "isCompleted"); err != nil {
		return nil, err
	}
	if order.IsRated, err = docBool(doc, "isRated"); err != nil {
		return nil, err
	}
	if order.Rating, err = docNumber(doc, "rating"); err != nil {
		return nil, err
	}
	if flag, ok := doc["complaintSubmitted"].(bool); ok {
		order.ComplaintSubmitted = flag
	}

	chefData, ok := doc["chefInfo"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("order %s has no chefInfo", id)
	}
	clientData, ok := doc["clientInfo"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("order %s has no clientInfo", id)
	}
	addressData, ok := chefData["chefAddress"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("order %s has no chef address", id)
	}

	chefRating, err := docNumber(chefData, "chefRating")
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", id, err)
	}
	description := "no description available"
	if desc, ok := chefData["chefDescription"].(string); ok && desc != "" {
		description = desc
	}
	order.ChefInfo = models.ChefInfo{
		ChefID:          docString(chefData, "chefId"),
		ChefName:        docString(chefData, "chefName"),
		ChefDescription: description,
		ChefRating:      chefRating,
		ChefAddress: models.Address{
			StreetAddress: docString(addressData, "streetAddress"),
			City:          docString(addressData, "city"),
			Country:       docString(addressData, "country"),
			PostalCode:    docString(addressData, "postalCode"),
		},
	}
	order.ClientInfo = models.ClientInfo{
		ClientID:    docString(clientData, "clientId"),
		ClientName:  docString(clientData, "clientName"),
		ClientEmail: docString(clientData, "clientEmail"),
	}

	if raw, ok := doc["date"].(string); ok {
		if date, perr := time.Parse(time.RFC3339, raw); perr == nil {
			order.Date = date
		} else {
			order.Date = time.Now()
			log.Printf("[makeOrderFromDocument] order %s: error parsing date %q", id, raw)
		}
	} else {
		order.Date = time.Now()
		log.Printf("[makeOrderFromDocument] order %s: error parsing date", id)
	}

	mealsData, ok := doc["meals"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("order %s has no meals", id)
	}
	for mealID, raw := range mealsData {
		mealData, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("order %s has malformed meal %s", id, mealID)
		}
		price, err := docNumber(mealData, "price")
		if err != nil {
			return nil, fmt.Errorf("order %s meal %s: %w", id, mealID, err)
		}
		qty, err := docNumber(mealData, "quantity")
		if err != nil {
			return nil, fmt.Errorf("order %s meal %s: %w", id, mealID, err)
		}
		order.AddMealQuantity(mealID, models.MealInfo{
			Name:     docString(mealData, "name"),
			Price:    price,
			Quantity: int(qty),
		})
	}

	return order, nil
}

// complaintToDocument flattens a complaint into its stored shape.
func complaintToDocument(c *models.Complaint) Document {
	return Document{
		"title":       c.Title,
		"description": c.Description,
		"clientId":    c.ClientID,
		"chefId":      c.ChefID,
		"orderId":     c.OrderID,
		"date":        c.Date.Format(time.RFC3339),
	}
}

// makeComplaintFromDocument reconstructs a complaint from its document.
func makeComplaintFromDocument(id string, doc Document) (*models.Complaint, error) {
	if doc == nil {
		return nil, fmt.Errorf("invalid document for complaint %s", id)
	}
	c := &models.Complaint{
		ID:          id,
		Title:       docString(doc, "title"),
		Description: docString(doc, "description"),
		ClientID:    docString(doc, "clientId"),
		ChefID:      docString(doc, "chefId"),
		OrderID:     docString(doc, "orderId"),
	}
	if raw, ok := doc["date"].(string); ok {
		if date, err := time.Parse(time.RFC3339, raw); err == nil {
			c.Date = date
		} else {
			c.Date = time.Now()
			log.Printf("[makeComplaintFromDocument] complaint %s: error parsing date %q", id, raw)
		}
	} else {
		c.Date = time.Now()
	}
	if err := models.ValidateComplaint(c); err != nil {
		return nil, fmt.Errorf("complaint %s: %w", id, err)
	}
	return c, nil
}

func docString(doc map[string]interface{}, field string) string {
	s, _ := doc[field].(string)
	return s
}

func docBool(doc map[string]interface{}, field string) (bool, error) {
	b, ok := doc[field].(bool)
	if !ok {
		return false, fmt.Errorf("missing or malformed field %q", field)
	}
	return b, nil
}

func docNumber(doc map[string]interface{}, field string) (float64, error) {
	switch n := doc[field].(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("missing or malformed field %q", field)
	}
}
