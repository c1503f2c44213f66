package domain

import "strings"

type Product struct {
	Title      string  `json:"title"`
	Price      float64 `json:"price"`
	ImageURL   string  `json:"image_url"`
	ProductURL string  `json:"product_url"`
}

// UniqueKey is the trimmed, case-sensitive title.
func (p Product) UniqueKey() string {
	return strings.TrimSpace(p.Title)
}

func (p Product) Valid() bool {
	return p.UniqueKey() != "" && p.Price > 0
}
