package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID          int64           `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  *int64          `json:"category_id,omitempty"`
	// CategoryName is resolved via join when the product is read; empty when
	// the product has no category.
	CategoryName string `json:"category_name,omitempty"`
}

const (
	SaleStatusOpen      = "open"
	SaleStatusFinalized = "finalized"
)

type Sale struct {
	ID     int64           `json:"id"`
	Date   time.Time       `json:"date"`
	Status string          `json:"status"`
	Total  decimal.Decimal `json:"total"`
}

// SaleLineItem snapshots ProductCode and UnitPrice at insertion time so a
// later price change or re-coding of the product leaves past sales intact.
// ProductName is NOT snapshotted: reads join the product's current name, so a
// renamed product retroactively changes how old line items display. That
// asymmetry is inherited behavior, kept on purpose.
type SaleLineItem struct {
	ID          int64           `json:"id"`
	SaleID      int64           `json:"sale_id"`
	ProductID   int64           `json:"product_id"`
	ProductCode string          `json:"product_code"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ProductName string          `json:"product_name,omitempty"`
}

// Subtotal is the line's contribution to the sale total.
func (li SaleLineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type ProductSales struct {
	ProductID     int64  `json:"product_id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	TotalQuantity int64  `json:"total_quantity"`
}

type CategorySales struct {
	CategoryID    int64  `json:"category_id"`
	Name          string `json:"name"`
	TotalQuantity int64  `json:"total_quantity"`
}
