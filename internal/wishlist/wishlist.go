package wishlist

import (
	"strings"
	"time"
)

type Entry struct {
	ProductID string    `json:"product"`
	AddedAt   time.Time `json:"addedAt"`
}

type Wishlist struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user"`
	Products  []Entry   `json:"products"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Dedupe keeps the first occurrence of every product in order and drops
// entries without a product reference. It never returns nil.
func Dedupe(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		e.ProductID = strings.TrimSpace(e.ProductID)
		if e.ProductID == "" || seen[e.ProductID] {
			continue
		}
		seen[e.ProductID] = true
		out = append(out, e)
	}
	return out
}

func (w Wishlist) contains(productID string) bool {
	for _, e := range w.Products {
		if e.ProductID == productID {
			return true
		}
	}
	return false
}
