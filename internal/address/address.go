package address

import (
	"strings"
	"time"

	"github.com/wichananm65/storefront-backend/internal/order"
)

// Address is a saved shipping address. The embedded ShippingAddress is what
// gets copied onto an order at checkout.
type Address struct {
	ID     string `json:"_id"`
	UserID string `json:"user"`
	Label  string `json:"label"`
	Phone  string `json:"phone"`
	order.ShippingAddress
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input is the editable part of an Address.
type Input struct {
	Label      string `json:"label"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (in Input) trimmed() Input {
	return Input{
		Label:      strings.TrimSpace(in.Label),
		Phone:      strings.TrimSpace(in.Phone),
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.TrimSpace(in.Country),
	}
}

func (in Input) apply(a *Address) {
	a.Label = in.Label
	a.Phone = in.Phone
	a.ShippingAddress = order.ShippingAddress{
		Address:    in.Address,
		City:       in.City,
		PostalCode: in.PostalCode,
		Country:    in.Country,
	}
}
