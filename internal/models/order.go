package models

import (
	"fmt"
	"time"
)

// Order represents a client's confirmed request for one chef's meals.
// An order is created locally without an ID and acquires one on first
// successful persistence. After creation only the status flags, the
// rating and the complaint flag are mutated.
type Order struct {
	OrderID            string
	ClientInfo         ClientInfo
	ChefInfo           ChefInfo
	Date               time.Time
	Meals              map[string]MealInfo
	IsPending          bool
	IsRejected         bool
	IsCompleted        bool
	IsRated            bool
	Rating             float64
	ComplaintSubmitted bool
}

// MealInfo is the per-meal line stored inside an order, keyed by meal ID.
type MealInfo struct {
	Name     string
	Price    float64
	Quantity int
}

// ClientInfo identifies the client who placed the order.
type ClientInfo struct {
	ClientID    string
	ClientName  string
	ClientEmail string
}

// ChefInfo identifies the chef fulfilling the order.
type ChefInfo struct {
	ChefID          string
	ChefName        string
	ChefDescription string
	ChefRating      float64
	ChefAddress     Address
}

// NewOrder creates an empty, pending order with no ID.
func NewOrder() *Order {
	return &Order{
		Meals:     make(map[string]MealInfo),
		IsPending: true,
	}
}

// AddMealQuantity folds a meal line into the order's meal map.
func (o *Order) AddMealQuantity(mealID string, meal MealInfo) {
	o.Meals[mealID] = meal
}

// SetRating records the client's rating for the order.
func (o *Order) SetRating(rating float64) error {
	if rating < 0 || rating > 5 {
		return fmt.Errorf("rating must be between 0 and 5, got %v", rating)
	}
	o.Rating = rating
	return nil
}

// Total returns the order's total price across all meal lines.
func (o *Order) Total() float64 {
	var total float64
	for _, meal := range o.Meals {
		total += meal.Price * float64(meal.Quantity)
	}
	return total
}

// ValidateOrder checks that an order is well formed enough to persist.
func ValidateOrder(order *Order) error {
	if order == nil {
		return fmt.Errorf("order is nil")
	}
	if order.ClientInfo.ClientID == "" {
		return fmt.Errorf("order has no client")
	}
	if order.ChefInfo.ChefID == "" {
		return fmt.Errorf("order has no chef")
	}
	if len(order.Meals) == 0 {
		return fmt.Errorf("order has no meals")
	}
	return nil
}
