package entity

import (
	"time"
)

// Order keeps value snapshots of the restaurant, the delivery details and
// the cart so later edits never rewrite past orders.
type Order struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	RestaurantID       uint               `gorm:"index;not null" json:"restaurantId"`
	RestaurantSnapshot RestaurantSnapshot `gorm:"serializer:json" json:"restaurant"`

	UserID uint `gorm:"index;not null" json:"userId"`
	User   User `json:"user"` // preload for list views

	DeliveryDetails DeliveryDetails `gorm:"embedded;embeddedPrefix:delivery_" json:"deliveryDetails"`
	CartItems       []OrderLine     `gorm:"serializer:json" json:"cartItems"`

	// written once on create, never updated
	TotalAmount int64       `gorm:"not null" json:"totalAmount"`
	Status      OrderStatus `gorm:"size:32;index;not null" json:"status"`

	PaymentSessionID string `gorm:"index;size:255" json:"-"`

	History []OrderStatusHistory `gorm:"constraint:OnDelete:CASCADE" json:"history,omitempty"`
}

type RestaurantSnapshot struct {
	ID                    uint   `json:"_id"`
	RestaurantName        string `json:"restaurantName"`
	City                  string `json:"city"`
	Country               string `json:"country"`
	DeliveryPrice         int64  `json:"deliveryPrice"`
	EstimatedDeliveryTime int    `json:"estimatedDeliveryTime"`
	ImageURL              string `json:"imageUrl"`
	OwnerUserID           uint   `json:"user"`
}

type DeliveryDetails struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Email        string `json:"email"`
}

type OrderLine struct {
	MenuItemID string `json:"menuItemId"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unitPrice"`
}
