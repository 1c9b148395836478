package models

import "time"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Label returns a human-readable status name.
func (s OrderStatus) Label() string {
	switch s {
	case OrderPending:
		return "Pending"
	case OrderProcessing:
		return "Processing"
	case OrderShipped:
		return "Shipped"
	case OrderDelivered:
		return "Delivered"
	case OrderCancelled:
		return "Cancelled"
	}
	return string(s)
}

// PaymentMode is how the buyer paid.
type PaymentMode string

const (
	PaymentCashOnDelivery PaymentMode = "CASH_ON_DELIVERY"
	PaymentOnline         PaymentMode = "ONLINE"
	PaymentCard           PaymentMode = "CARD"
)

// Label returns a human-readable payment mode.
func (m PaymentMode) Label() string {
	switch m {
	case PaymentCashOnDelivery:
		return "Cash on delivery"
	case PaymentOnline:
		return "Online"
	case PaymentCard:
		return "Card"
	}
	return string(m)
}

// Order is a buyer order containing at least one of the seller's products.
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	Email           string      `json:"email"`
	PhoneNumber     string      `json:"phoneNumber,omitempty"`
	Address         string      `json:"address"`
	Status          OrderStatus `json:"status"`
	TotalAmount     float64     `json:"totalAmount"`
	PaymentMode     PaymentMode `json:"paymentMode"`
	DeliveryAgentID *string     `json:"deliveryAgentId"`
	Products        []OrderLine `json:"products"`
	User            OrderBuyer  `json:"user"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// ItemCount sums the quantities of all lines.
func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Products {
		n += l.Quantity
	}
	return n
}

// OrderLine is one product (and optional variant) within an order.
type OrderLine struct {
	Product struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Images      []string `json:"images"`
	} `json:"product"`
	Variant    *OrderVariant `json:"variant"`
	Quantity   int           `json:"quantity"`
	TotalPrice float64       `json:"totalPrice"`
}

// OrderVariant is the variant snapshot attached to an order line.
type OrderVariant struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Price            float64       `json:"price"`
	FormattedOptions []OptionLabel `json:"formattedOptions"`
}

// OptionLabel is a resolved "name: value" pair.
type OptionLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// OrderBuyer is the buyer summary embedded in an order.
type OrderBuyer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ProfilePic string `json:"profilePic,omitempty"`
}
