package category

// Category is a product category name with the number of products in it.
type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
