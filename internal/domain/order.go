package domain

import "time"

// OrderStatus enumerates fulfillment order states. Failed orders are not
// retried automatically; they wait for manual intervention.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusFailed    OrderStatus = "failed"
)

// Order ties one fulfillment attempt to a project. PrintOrderID is the
// print provider's order reference, set once the order is submitted.
type Order struct {
	ID           string
	ProjectToken string
	Email        string
	ProductType  string
	PrintOrderID string
	Status       OrderStatus
	CreatedAt    time.Time
}

// ShippingAddress is the recipient address forwarded to the print provider.
type ShippingAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Country   string `json:"country"`
	Region    string `json:"region,omitempty"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
}
