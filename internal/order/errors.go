package order

import "errors"

var (
	ErrNotFound  = errors.New("order not found")
	ErrDuplicate = errors.New("order with this external id already exists")
)
