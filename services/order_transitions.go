package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"foodorder/entity"
	"foodorder/payment"
	"foodorder/pkg/apperr"
	"foodorder/utils"

	"gorm.io/gorm"
)

// ----- Owner actions -----

// UpdateStatusByOwner moves an order of the caller's restaurant to status.
func (s *OrderService) UpdateStatusByOwner(ctx context.Context, ident utils.Identity, orderID, status string) (*OrderView, error) {
	to, ok := entity.ParseOrderStatus(status)
	if !ok {
		return nil, apperr.Invalid("invalid status %q", status)
	}

	o, err := s.Repo.FindByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		return nil, err
	}

	owned, err := s.RestRepo.IsOwnedBy(ctx, o.RestaurantID, ident.UserID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, apperr.Unauthorized("unauthorized")
	}

	if err := s.applyTransition(ctx, o, to, entity.SourceOwner, ident.UserID); err != nil {
		return nil, err
	}
	v := NewOrderView(o)
	return &v, nil
}

// ----- Payment processor -----

// HandleWebhook verifies a provider callback and applies it.
func (s *OrderService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.Gateway.ParseWebhook(payload, signature)
	if err != nil {
		// bad signature or unreadable body; the provider will retry
		return apperr.Wrap(apperr.KindInvalid, "Webhook error", err)
	}
	return s.HandlePaymentEvent(ctx, ev)
}

// HandlePaymentEvent applies a verified payment event once. Events for
// unknown orders or orders that already moved on are acknowledged.
func (s *OrderService) HandlePaymentEvent(ctx context.Context, ev *payment.WebhookEvent) error {
	var to entity.OrderStatus
	switch ev.Type {
	case payment.EventCheckoutCompleted:
		to = entity.StatusPaid
	case payment.EventCheckoutExpired, payment.EventAsyncPaymentFail:
		to = entity.StatusFailed
	default:
		slog.DebugContext(ctx, "payment event ignored", "type", ev.Type, "event", ev.ID)
		return nil
	}

	key := "stripe:" + ev.ID
	if s.Idem != nil {
		claimed, err := s.Idem.Claim(ctx, key)
		if err != nil {
			return fmt.Errorf("claim event: %w", err)
		}
		if !claimed {
			slog.InfoContext(ctx, "payment event already handled", "event", ev.ID)
			return nil
		}
	}

	err := s.applyPaymentEvent(ctx, ev, to)
	if err != nil && s.Idem != nil {
		if rerr := s.Idem.Release(context.WithoutCancel(ctx), key); rerr != nil {
			slog.WarnContext(ctx, "release event key", "event", ev.ID, "err", rerr)
		}
	}
	return err
}

func (s *OrderService) applyPaymentEvent(ctx context.Context, ev *payment.WebhookEvent, to entity.OrderStatus) error {
	var (
		o   *entity.Order
		err error
	)
	if ev.OrderID != "" {
		o, err = s.Repo.FindByID(ctx, ev.OrderID)
	} else {
		o, err = s.Repo.FindBySessionID(ctx, ev.SessionID)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		slog.WarnContext(ctx, "payment event for unknown order", "event", ev.ID, "order", ev.OrderID, "session", ev.SessionID)
		return nil
	}
	if err != nil {
		return err
	}

	err = s.applyTransition(ctx, o, to, entity.SourcePayment, 0)
	if apperr.Is(err, apperr.KindConflict) {
		slog.InfoContext(ctx, "payment event does not apply", "order", o.ID, "status", o.Status, "to", to)
		return nil
	}
	return err
}

// ----- Shared -----

// applyTransition moves o to "to" if the edge is allowed for src and the
// stored status is still o.Status. A history row is written in the same
// transaction.
func (s *OrderService) applyTransition(ctx context.Context, o *entity.Order, to entity.OrderStatus, src entity.StatusSource, by uint) error {
	from := o.Status
	if !entity.CanTransition(from, to, src) {
		return apperr.Conflict(fmt.Sprintf("cannot change order status from %s to %s", from, to))
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.Repo.UpdateStatusGuard(tx, o.ID, from, to)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.Conflict("order status changed, reload and try again")
		}
		return s.Repo.AddHistory(tx, &entity.OrderStatusHistory{
			OrderID: o.ID, From: from, To: to, ChangedBy: by, Source: src,
		})
	})
	if err != nil {
		return err
	}

	o.Status = to
	slog.InfoContext(ctx, "order status changed", "order", o.ID, "from", from, "to", to, "source", src)
	s.publish(ctx, o)
	return nil
}
