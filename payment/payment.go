// Package payment talks to the hosted checkout provider.
package payment

import (
	"context"
	"errors"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

type LineItem struct {
	Name      string
	UnitPrice int64 // minor units
	Quantity  int64
}

type SessionRequest struct {
	OrderID      string
	RestaurantID string
	LineItems    []LineItem
	DeliveryFee  int64
	Currency     string
	SuccessURL   string
	CancelURL    string
}

type Session struct {
	ID  string
	URL string
}

type EventType string

const (
	EventCheckoutCompleted EventType = "checkout.session.completed"
	EventCheckoutExpired   EventType = "checkout.session.expired"
	EventAsyncPaymentFail  EventType = "checkout.session.async_payment_failed"
)

// WebhookEvent is the part of a provider event the order flow cares about.
type WebhookEvent struct {
	ID        string
	Type      EventType
	SessionID string
	OrderID   string
}

type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	ExpireSession(ctx context.Context, sessionID string) error
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
