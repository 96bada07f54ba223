// Package messaging defines the event publishing contracts used by the shop services.
package messaging

import (
	"context"
)

const (
	OrdersStreamName     = "ORDERS"
	OrdersCreatedSubject = "orders.created"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
