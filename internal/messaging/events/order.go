package events

import (
	"encoding/json"
	"time"

	"github.com/vinkj/autoshop/internal/messaging"
)

// OrderCreatedEvent is published after an order and its stock reservation commit.
type OrderCreatedEvent struct {
	OrderID     int64     `json:"order_id"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	TotalPrice  int64     `json:"total_price"`
	CreatedAt   time.Time `json:"created_at"`
}

func (o OrderCreatedEvent) Subject() string {
	return messaging.OrdersCreatedSubject
}

func (o OrderCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(o)
}
