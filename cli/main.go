package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)
)

// Model defines the application state
type Model struct {
	mainMenu    list.Model
	orderList   list.Model
	orderDetail Order
	spinner     spinner.Model
	client      *ApiClient
	currentView string
	filter      string
	message     string
	error       string
}

// item represents a list item
type item struct {
	title, desc string
}

// FilterValue implements list.Item interface
func (i item) FilterValue() string { return i.title }

// Title implements list.Item interface
func (i item) Title() string { return i.title }

// Description implements list.Item interface
func (i item) Description() string { return i.desc }

// Initialize the model
func initialModel() Model {
	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	// Initialize main menu items
	items := []list.Item{
		item{title: "Pending Orders", desc: "Orders waiting for a decision"},
		item{title: "Completed Orders", desc: "Orders already fulfilled"},
		item{title: "All Orders", desc: "Every order in the session"},
		item{title: "Sync", desc: "Reload orders from the server"},
		item{title: "Exit", desc: "Exit the application"},
	}

	// Initialize main menu
	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "Mealer Chef CLI"

	// Initialize order list view
	orderList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	orderList.Title = "Orders"

	// Initialize API client
	client := NewApiClient()

	return Model{
		mainMenu:    mainMenu,
		orderList:   orderList,
		spinner:     s,
		client:      client,
		currentView: "main",
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen)
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter":
			if m.currentView == "main" {
				selected, ok := m.mainMenu.SelectedItem().(item)
				if ok {
					switch selected.title {
					case "Exit":
						return m, tea.Quit
					case "Pending Orders":
						m.currentView = "orders"
						m.filter = "pending"
						return m, fetchOrders(m.client, m.filter)
					case "Completed Orders":
						m.currentView = "orders"
						m.filter = "completed"
						return m, fetchOrders(m.client, m.filter)
					case "All Orders":
						m.currentView = "orders"
						m.filter = ""
						return m, fetchOrders(m.client, m.filter)
					case "Sync":
						return m, syncOrders(m.client)
					}
				}
			} else if m.currentView == "orders" {
				if selected, ok := m.orderList.SelectedItem().(orderItem); ok {
					m.currentView = "order_detail"
					return m, fetchOrderDetails(m.client, selected.id)
				}
			} else if m.currentView == "order_detail" {
				m.currentView = "orders"
				return m, fetchOrders(m.client, m.filter)
			}
		case "esc":
			if m.currentView == "order_detail" {
				m.currentView = "orders"
				return m, fetchOrders(m.client, m.filter)
			} else if m.currentView != "main" {
				m.currentView = "main"
			}
		case "a":
			if m.currentView == "order_detail" {
				return m, acceptOrder(m.client, m.orderDetail)
			}
		case "r":
			if m.currentView == "order_detail" {
				return m, rejectOrder(m.client, m.orderDetail)
			}
		case "c":
			if m.currentView == "order_detail" {
				return m, completeOrder(m.client, m.orderDetail)
			}
		case "d":
			if m.currentView == "order_detail" {
				return m, deleteOrder(m.client, m.orderDetail.OrderID)
			}
		}
	case ordersMsg:
		m.orderList.SetItems(convertOrdersToItems(msg.orders))
		return m, nil
	case orderDetailMsg:
		m.orderDetail = msg.order
		m.error = ""
		return m, nil
	case errorMsg:
		m.error = msg.err
		return m, nil
	case confirmMsg:
		m.error = ""
		m.message = msg.message
		if m.currentView == "order_detail" {
			m.currentView = "orders"
		}
		return m, fetchOrders(m.client, m.filter)
	}

	var cmd tea.Cmd
	switch m.currentView {
	case "main":
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case "orders":
		m.orderList, cmd = m.orderList.Update(msg)
	}

	return m, cmd
}

// View renders the UI
func (m Model) View() string {
	switch m.currentView {
	case "main":
		menu := m.mainMenu.View()
		if m.message != "" {
			menu += "\n" + successStyle.Render(m.message)
		}
		return docStyle.Render(menu)
	case "orders":
		help := "\nPress 'enter' to view details, 'esc' to go back\n"
		if m.error != "" {
			help += errorStyle.Render(m.error) + "\n"
		}
		title := "Orders"
		if m.filter != "" {
			title = fmt.Sprintf("Orders (%s)", m.filter)
		}
		return docStyle.Render(titleStyle.Render(title) + "\n\n" + m.orderList.View() + help)
	case "order_detail":
		view := orderDetailView(m.orderDetail)
		if m.error != "" {
			view += "\n" + errorStyle.Render(m.error)
		}
		return docStyle.Render(view)
	default:
		return "Loading..."
	}
}

// Custom message types for the tea.Model
type ordersMsg struct {
	orders []Order
}

type orderDetailMsg struct {
	order Order
}

type errorMsg struct {
	err string
}

type confirmMsg struct {
	message string
}

// orderItem represents an order in the list
type orderItem struct {
	id    string
	title string
	desc  string
}

func (i orderItem) Title() string       { return i.title }
func (i orderItem) Description() string { return i.desc }
func (i orderItem) FilterValue() string { return i.title }

// syncOrders asks the server to reload the chef's orders from storage
func syncOrders(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		if err := client.LoadOrders(); err != nil {
			return errorMsg{err: fmt.Sprintf("Error syncing orders: %v", err)}
		}
		return confirmMsg{message: "Orders are loading from the server"}
	}
}

// fetchOrders retrieves orders from the API
func fetchOrders(client *ApiClient, status string) tea.Cmd {
	return func() tea.Msg {
		orders, err := client.GetOrders(status)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching orders: %v", err)}
		}
		return ordersMsg{orders: orders}
	}
}

// fetchOrderDetails retrieves details for a specific order
func fetchOrderDetails(client *ApiClient, id string) tea.Cmd {
	return func() tea.Msg {
		order, err := client.GetOrder(id)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching order details: %v", err)}
		}
		if order == nil {
			return errorMsg{err: "Order not found"}
		}
		return orderDetailMsg{order: *order}
	}
}

// acceptOrder takes the order out of its pending state
func acceptOrder(client *ApiClient, order Order) tea.Cmd {
	return updateOrder(client, order, false, false, false, "Order accepted")
}

// rejectOrder turns the order down
func rejectOrder(client *ApiClient, order Order) tea.Cmd {
	return updateOrder(client, order, false, true, false, "Order rejected")
}

// completeOrder marks the order fulfilled
func completeOrder(client *ApiClient, order Order) tea.Cmd {
	return updateOrder(client, order, false, false, true, "Order completed")
}

func updateOrder(client *ApiClient, order Order, pending, rejected, completed bool, message string) tea.Cmd {
	return func() tea.Msg {
		order.IsPending = pending
		order.IsRejected = rejected
		order.IsCompleted = completed
		if err := client.UpdateOrder(&order); err != nil {
			return errorMsg{err: fmt.Sprintf("Error updating order: %v", err)}
		}
		return confirmMsg{message: message}
	}
}

// deleteOrder removes an order
func deleteOrder(client *ApiClient, id string) tea.Cmd {
	return func() tea.Msg {
		if err := client.RemoveOrder(id); err != nil {
			return errorMsg{err: fmt.Sprintf("Error removing order: %v", err)}
		}
		return confirmMsg{message: "Order removed successfully"}
	}
}

// convertOrdersToItems converts API orders to list items
func convertOrdersToItems(orders []Order) []list.Item {
	items := make([]list.Item, len(orders))
	for i, order := range orders {
		items[i] = orderItem{
			id:    order.OrderID,
			title: fmt.Sprintf("Order %s ($%.2f)", order.OrderID, order.Total),
			desc:  fmt.Sprintf("%d meals - Status: %s - Client: %s", len(order.Meals), order.Status(), order.ClientID),
		}
	}
	return items
}

// orderDetailView creates a detailed view of an order
func orderDetailView(order Order) string {
	view := titleStyle.Render(fmt.Sprintf("Order %s", order.OrderID)) + "\n\n"
	view += fmt.Sprintf("Client: %s\n", order.ClientID)
	view += fmt.Sprintf("Status: %s\n", order.Status())
	view += fmt.Sprintf("Received: %s\n", order.Date.Format(time.RFC1123))
	if order.IsRated {
		view += fmt.Sprintf("Rating: %.1f/5\n", order.Rating)
	}
	if order.ComplaintSubmitted {
		view += "A complaint was filed for this order\n"
	}

	view += "\nMeals:\n"
	mealIDs := make([]string, 0, len(order.Meals))
	for mealID := range order.Meals {
		mealIDs = append(mealIDs, mealID)
	}
	sort.Strings(mealIDs)
	for i, mealID := range mealIDs {
		meal := order.Meals[mealID]
		view += fmt.Sprintf("%d. %s (x%d) - $%.2f\n", i+1, meal.Name, meal.Quantity, meal.Price)
	}
	view += fmt.Sprintf("\nTotal: $%.2f\n", order.Total)

	view += "\nPress 'a' to accept, 'r' to reject, 'c' to complete, 'd' to delete, 'esc' to go back"

	return view
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}
