package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderItem is one inbound line item. UnitPrice is optional; a missing
// price is treated as zero by the calculator.
type CreateOrderItem struct {
	ProductID string           `json:"product_id"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Quantity  int              `json:"quantity"`
}

// CreateOrderRequest is the create payload, shared verbatim by the HTTP API
// and the inbound queue message body.
type CreateOrderRequest struct {
	ExternalID string            `json:"external_id"`
	Items      []CreateOrderItem `json:"items"`
}

type ItemResponse struct {
	ProductID string           `json:"product_id"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Quantity  int              `json:"quantity"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// OrderResponse is the finalized order representation: returned by the HTTP
// API and published as-is to the outbound routing key.
type OrderResponse struct {
	ID         int64           `json:"id"`
	ExternalID string          `json:"external_id"`
	Status     Status          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	Items      []ItemResponse  `json:"items"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// OrderPage is the list envelope.
type OrderPage struct {
	Content       []OrderResponse `json:"content"`
	Page          int             `json:"page"`
	Size          int             `json:"size"`
	TotalElements int64           `json:"total_elements"`
	TotalPages    int             `json:"total_pages"`
}

// toDomain builds a transient order (no id, status RECEIVED) from the create
// payload. A nil items list becomes an empty slice so the rest of the
// pipeline never sees nil.
func toDomain(req CreateOrderRequest) *Order {
	o := &Order{
		ExternalID: req.ExternalID,
		Status:     StatusReceived,
		Items:      make([]Item, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		o.Items = append(o.Items, Item{
			ProductID: it.ProductID,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}
	return o
}

func ToResponse(o *Order) *OrderResponse {
	resp := &OrderResponse{
		ID:         o.ID,
		ExternalID: o.ExternalID,
		Status:     o.Status,
		Total:      o.Total,
		Items:      make([]ItemResponse, 0, len(o.Items)),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, ItemResponse{
			ProductID: it.ProductID,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal,
			CreatedAt: it.CreatedAt,
			UpdatedAt: it.UpdatedAt,
		})
	}
	return resp
}

func ToPage(orders []Order, q ListQuery, total int64) *OrderPage {
	content := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		content = append(content, *ToResponse(&orders[i]))
	}
	pages := 0
	if q.Size > 0 {
		pages = int((total + int64(q.Size) - 1) / int64(q.Size))
	}
	return &OrderPage{
		Content:       content,
		Page:          q.Page,
		Size:          q.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}
