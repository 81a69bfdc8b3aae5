// Package events fans order status changes out to live subscribers.
package events

import (
	"context"
	"time"

	"foodorder/entity"
)

type OrderEvent struct {
	OrderID      string             `json:"orderId"`
	RestaurantID uint               `json:"restaurantId"`
	CustomerID   uint               `json:"customerId"`
	OwnerID      uint               `json:"ownerId"`
	Status       entity.OrderStatus `json:"status"`
	At           time.Time          `json:"at"`
}

// Concerns reports whether the event is for userID as customer or owner.
func (e OrderEvent) Concerns(userID uint) bool {
	return userID != 0 && (e.CustomerID == userID || e.OwnerID == userID)
}

func FromOrder(o *entity.Order) OrderEvent {
	return OrderEvent{
		OrderID:      o.ID,
		RestaurantID: o.RestaurantID,
		CustomerID:   o.UserID,
		OwnerID:      o.RestaurantSnapshot.OwnerUserID,
		Status:       o.Status,
		At:           time.Now().UTC(),
	}
}

type Bus interface {
	Publish(ctx context.Context, ev OrderEvent) error
	// Subscribe delivers events until ctx is done, then closes the channel.
	Subscribe(ctx context.Context) (<-chan OrderEvent, error)
}
