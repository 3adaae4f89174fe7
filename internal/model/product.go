package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// Price is a display price. It is stored as a string but accepted from JSON
// as either a string or a number.
type Price string

// UnmarshalJSON accepts "100", 100 and 99.5 alike. Numbers keep their literal
// text, so 100.50 stays "100.50".
func (p *Price) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode price: %w", err)
	}

	switch v := raw.(type) {
	case nil:
		*p = ""
	case string, json.Number:
		s, err := cast.ToStringE(v)
		if err != nil {
			return fmt.Errorf("failed to convert price: %w", err)
		}
		*p = Price(s)
	default:
		return fmt.Errorf("price must be a string or a number, got %T", raw)
	}
	return nil
}

// Product represents a catalog item. Products are never updated after creation.
type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    Price  `json:"price"`
	ImageURI string `json:"imageUri"`
}

// Validate checks a product decoded from storage.
func (p Product) Validate() error {
	if p.ID <= 0 {
		return &ValidationError{Field: "id"}
	}
	return requireNonBlank(
		[2]string{"name", p.Name},
		[2]string{"price", string(p.Price)},
		[2]string{"imageUri", p.ImageURI},
	)
}

// ProductCandidate holds the user supplied fields of a product about to be created.
type ProductCandidate struct {
	Name     string `json:"name"`
	Price    Price  `json:"price"`
	ImageURI string `json:"imageUri"`
}

// Validate rejects a candidate with an empty name, price or image.
func (c ProductCandidate) Validate() error {
	return requireNonBlank(
		[2]string{"name", c.Name},
		[2]string{"price", string(c.Price)},
		[2]string{"imageUri", c.ImageURI},
	)
}

// Build turns the candidate into a product with the given id.
func (c ProductCandidate) Build(id int64) Product {
	return Product{
		ID:       id,
		Name:     c.Name,
		Price:    c.Price,
		ImageURI: c.ImageURI,
	}
}
