package cart

import (
	"github.com/shopspring/decimal"
)

// MaxQty caps the quantity of one cart entry.
const MaxQty = 10_000

// Item is a cart entry with the product snapshot the client saw.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
}

// ClientItem is a cart entry as sent by a client. Older clients send the
// product reference as _id and may omit qty.
type ClientItem struct {
	ProductID string          `json:"productId"`
	ID        string          `json:"_id"`
	Name      string          `json:"name"`
	Qty       *int            `json:"qty"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
}

// FromClient converts client entries. A missing qty counts as 1 and a qty
// above MaxQty is capped; entries without a product reference or with
// qty <= 0 are dropped.
func FromClient(in []ClientItem) []Item {
	out := make([]Item, 0, len(in))
	for _, c := range in {
		id := c.ProductID
		if id == "" {
			id = c.ID
		}
		qty := 1
		if c.Qty != nil {
			qty = *c.Qty
		}
		if id == "" || qty <= 0 {
			continue
		}
		qty = min(qty, MaxQty)
		out = append(out, Item{ProductID: id, Name: c.Name, Qty: qty, Price: c.Price, Image: c.Image})
	}
	return out
}

// Merge unions server and client by product. Server entries keep their
// position and snapshot; a product in both gets the summed quantity, capped
// at MaxQty. Products
// only the client has are appended in client order with the client snapshot.
//
// Merging the same stale client cart twice counts its quantities twice.
func Merge(server, client []Item) []Item {
	out := make([]Item, 0, len(server)+len(client))
	index := make(map[string]int, len(server)+len(client))
	add := func(it Item) {
		it.Qty = min(it.Qty, MaxQty)
		if i, ok := index[it.ProductID]; ok {
			out[i].Qty = min(out[i].Qty+it.Qty, MaxQty)
			return
		}
		index[it.ProductID] = len(out)
		out = append(out, it)
	}
	for _, it := range server {
		if it.ProductID == "" || it.Qty <= 0 {
			continue
		}
		add(it)
	}
	for _, it := range client {
		if it.ProductID == "" || it.Qty <= 0 {
			continue
		}
		add(it)
	}
	return out
}
