package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the processing state of an order. Orders move strictly
// RECEIVED -> PROCESSING -> PROCESSED; there is no failure state, a failed
// pipeline run surfaces as an error to the caller instead.
type Status string

const (
	StatusReceived   Status = "RECEIVED"
	StatusProcessing Status = "PROCESSING"
	StatusProcessed  Status = "PROCESSED"
)

type Order struct {
	ID         int64           `json:"id"`
	ExternalID string          `json:"external_id"`
	Status     Status          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Items      []Item          `json:"items"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Item is a priced quantity of one product. Items live and die with their
// parent order; ids are assigned by the store on persist.
type Item struct {
	ID        int64            `json:"id"`
	OrderID   int64            `json:"order_id"`
	ProductID string           `json:"product_id"`
	UnitPrice *decimal.Decimal `json:"unit_price"` // nil means not supplied, treated as zero
	Quantity  int              `json:"quantity"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Persisted reports whether the store has assigned an identity yet.
func (o *Order) Persisted() bool { return o.ID != 0 }

func (o *Order) Processing() bool { return o.Status == StatusProcessing }
