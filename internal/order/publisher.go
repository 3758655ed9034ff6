package order

import "context"

// Publisher sends the finalized order representation to the outbound topic.
// Publishing is not transactional with persistence: a publish failure leaves
// the order stored as PROCESSED and surfaces as an error to the caller.
type Publisher interface {
	PublishOrder(ctx context.Context, o *OrderResponse) error
}
