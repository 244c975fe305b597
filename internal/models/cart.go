package models

// SearchMealItem is a searchable meal listing: the meal offered by a
// chef, as it appears in search results and cart lines.
type SearchMealItem struct {
	MealID string
	Name   string
	Price  float64
	Chef   ChefInfo
}

// OrderItem is a single cart line: a meal listing plus a quantity.
// Two order items are the same line when they reference the same meal,
// regardless of quantity.
type OrderItem struct {
	Meal     SearchMealItem
	Quantity int
}

// Cart is a client's pre-order working set of meal selections. Lines
// are keyed by meal ID and enumerated in insertion order.
type Cart struct {
	lines map[string]OrderItem
	order []string
}

// NewCart creates an empty cart.
func NewCart() *Cart {
	return &Cart{lines: make(map[string]OrderItem)}
}

// UpdateOrderItem adds or replaces a cart line. A zero quantity removes
// the line for that meal.
func (c *Cart) UpdateOrderItem(item OrderItem) {
	id := item.Meal.MealID
	if item.Quantity == 0 {
		c.remove(id)
		return
	}
	if _, ok := c.lines[id]; !ok {
		c.order = append(c.order, id)
	}
	c.lines[id] = item
}

func (c *Cart) remove(mealID string) {
	if _, ok := c.lines[mealID]; !ok {
		return
	}
	delete(c.lines, mealID)
	for i, id := range c.order {
		if id == mealID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Items returns the cart lines in insertion order.
func (c *Cart) Items() []OrderItem {
	items := make([]OrderItem, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, c.lines[id])
	}
	return items
}

// Size returns the number of distinct meal lines in the cart.
func (c *Cart) Size() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Clear removes every line from the cart.
func (c *Cart) Clear() {
	c.lines = make(map[string]OrderItem)
	c.order = nil
}
