package model

import "time"

// OrderDateLayout is the short, display-only date stamped on every order.
const OrderDateLayout = "1/2/2006"

// Order is a request to buy a product. ProductName and Price are copied from
// the product when the order is placed.
type Order struct {
	ID          string `json:"id"`
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Price       Price  `json:"price"`
	Date        string `json:"date"`
}

// NewOrder snapshots product into a new order.
func NewOrder(id string, product Product, at time.Time) Order {
	return Order{
		ID:          id,
		ProductID:   product.ID,
		ProductName: product.Name,
		Price:       product.Price,
		Date:        at.Format(OrderDateLayout),
	}
}

// Validate checks an order decoded from storage. Orders are snapshots of
// whatever product they were placed for, so only the id is required.
func (o Order) Validate() error {
	return requireNonBlank([2]string{"id", o.ID})
}
