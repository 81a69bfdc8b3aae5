package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"foodorder/cache"
	"foodorder/entity"
	"foodorder/events"
	"foodorder/payment"
	"foodorder/pkg/apperr"
	"foodorder/repository"
	"foodorder/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderService struct {
	DB       *gorm.DB
	Repo     *repository.OrderRepository
	RestRepo *repository.RestaurantRepository
	UserRepo *repository.UserRepository

	Gateway payment.Gateway
	Bus     events.Bus
	Idem    cache.Idempotency

	Currency    string
	FrontendURL string
	NewID       func() string
}

type OrderServiceDeps struct {
	DB          *gorm.DB
	Gateway     payment.Gateway
	Bus         events.Bus
	Idem        cache.Idempotency
	Currency    string
	FrontendURL string
}

func NewOrderService(d OrderServiceDeps) *OrderService {
	return &OrderService{
		DB:          d.DB,
		Repo:        repository.NewOrderRepository(d.DB),
		RestRepo:    repository.NewRestaurantRepository(d.DB),
		UserRepo:    repository.NewUserRepository(d.DB),
		Gateway:     d.Gateway,
		Bus:         d.Bus,
		Idem:        d.Idem,
		Currency:    d.Currency,
		FrontendURL: strings.TrimRight(d.FrontendURL, "/"),
		NewID:       uuid.NewString,
	}
}

// ----- DTOs from Controller -----

// FlexInt accepts a JSON number or a numeric string.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("not an integer: %q", b)
	}
	*f = FlexInt(n)
	return nil
}

type CheckoutCartItem struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Quantity   FlexInt `json:"quantity"`
}

type CheckoutDeliveryIn struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
	Country      string `json:"country"`
	Email        string `json:"email"`
}

// MaxLineQuantity caps a single cart line.
const MaxLineQuantity = 999

type CheckoutSessionReq struct {
	RestaurantID    FlexInt            `json:"restaurantId"`
	CartItems       []CheckoutCartItem `json:"cartItems"`
	DeliveryDetails CheckoutDeliveryIn `json:"deliveryDetails"`
}

func (r *CheckoutSessionReq) Validate() error {
	if r.RestaurantID <= 0 {
		return apperr.Invalid("restaurantId is required")
	}
	if len(r.CartItems) == 0 {
		return apperr.Invalid("cart is empty")
	}
	for i, it := range r.CartItems {
		if strings.TrimSpace(it.MenuItemID) == "" {
			return apperr.Invalid("cart item %d: menuItemId is required", i)
		}
		if it.Quantity < 1 || it.Quantity > MaxLineQuantity {
			return apperr.Invalid("cart item %d: quantity must be between 1 and %d", i, MaxLineQuantity)
		}
	}
	d := r.DeliveryDetails
	if strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.AddressLine1) == "" || strings.TrimSpace(d.City) == "" {
		return apperr.Invalid("delivery name, address and city are required")
	}
	return nil
}

type CheckoutSessionRes struct {
	URL string `json:"url"`
}

// OrderView is an order as the API returns it.
type OrderView struct {
	entity.Order
	TotalDisplay string `json:"totalDisplay"`
}

func NewOrderView(o *entity.Order) OrderView {
	return OrderView{Order: *o, TotalDisplay: utils.FormatMinor(o.TotalAmount)}
}

func viewsOf(orders []entity.Order) []OrderView {
	out := make([]OrderView, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderView(&orders[i]))
	}
	return out
}

// ----- Create -----

// addLine returns total + price*qty, or false when that leaves int64.
func addLine(total, price, qty int64) (int64, bool) {
	if price < 0 || qty < 0 {
		return total, false
	}
	if qty != 0 && price > (math.MaxInt64-total)/qty {
		return total, false
	}
	return total + price*qty, true
}

// CreateCheckoutSession prices the cart against the current menu, opens a
// hosted payment session and records the order as placed.
func (s *OrderService) CreateCheckoutSession(ctx context.Context, ident utils.Identity, req *CheckoutSessionReq) (*CheckoutSessionRes, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rest, err := s.RestRepo.FindByID(ctx, uint(req.RestaurantID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Restaurant not found")
	}
	if err != nil {
		return nil, err
	}

	lines := make([]entity.OrderLine, 0, len(req.CartItems))
	items := make([]payment.LineItem, 0, len(req.CartItems))
	var (
		total int64
		ok    bool
	)
	for _, it := range req.CartItems {
		var m entity.MenuItem
		m, ok = rest.FindMenuItem(it.MenuItemID)
		if !ok {
			return nil, apperr.Invalid("Menu item not found: %s", it.MenuItemID)
		}
		qty := int64(it.Quantity)
		if total, ok = addLine(total, m.Price, qty); !ok {
			return nil, apperr.Invalid("order total is too large")
		}
		lines = append(lines, entity.OrderLine{
			MenuItemID: m.ID, Name: m.Name, Quantity: int(qty), UnitPrice: m.Price,
		})
		items = append(items, payment.LineItem{Name: m.Name, UnitPrice: m.Price, Quantity: qty})
	}
	if total, ok = addLine(total, rest.DeliveryPrice, 1); !ok {
		return nil, apperr.Invalid("order total is too large")
	}

	d := req.DeliveryDetails
	if strings.TrimSpace(d.Email) == "" {
		u, err := s.UserRepo.FindByID(ctx, ident.UserID)
		if err != nil {
			return nil, fmt.Errorf("load user: %w", err)
		}
		d.Email = u.Email
	}

	order := &entity.Order{
		ID:                 s.NewID(),
		RestaurantID:       rest.ID,
		RestaurantSnapshot: rest.Snapshot(),
		UserID:             ident.UserID,
		DeliveryDetails: entity.DeliveryDetails{
			Name:         strings.TrimSpace(d.Name),
			AddressLine1: strings.TrimSpace(d.AddressLine1),
			City:         strings.TrimSpace(d.City),
			Country:      strings.TrimSpace(d.Country),
			Email:        strings.TrimSpace(d.Email),
		},
		CartItems:   lines,
		TotalAmount: total,
		Status:      entity.StatusPlaced,
	}

	restID := strconv.FormatUint(uint64(rest.ID), 10)
	sess, err := s.Gateway.CreateSession(ctx, payment.SessionRequest{
		OrderID:      order.ID,
		RestaurantID: restID,
		LineItems:    items,
		DeliveryFee:  rest.DeliveryPrice,
		Currency:     s.Currency,
		SuccessURL:   s.FrontendURL + "/order-status?success=true",
		CancelURL:    s.FrontendURL + "/detail/" + restID + "?cancelled=true",
	})
	if err != nil {
		return nil, fmt.Errorf("create payment session: %w", err)
	}
	if sess == nil || sess.URL == "" {
		return nil, errors.New("payment session has no url")
	}
	order.PaymentSessionID = sess.ID

	if err := s.Repo.Create(ctx, order); err != nil {
		// the session must not stay payable for an order we never stored
		if xerr := s.Gateway.ExpireSession(context.WithoutCancel(ctx), sess.ID); xerr != nil {
			slog.WarnContext(ctx, "expire orphaned payment session", "session", sess.ID, "err", xerr)
		}
		return nil, fmt.Errorf("save order: %w", err)
	}

	slog.InfoContext(ctx, "order placed", "order", order.ID, "restaurant", rest.ID, "total", total)
	s.publish(ctx, order)
	return &CheckoutSessionRes{URL: sess.URL}, nil
}

// ----- List & Detail -----

func (s *OrderService) ListForUser(ctx context.Context, ident utils.Identity) ([]OrderView, error) {
	orders, err := s.Repo.ListForUser(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	return viewsOf(orders), nil
}

// DetailForUser returns one of the caller's orders; other users' orders are
// reported as missing.
func (s *OrderService) DetailForUser(ctx context.Context, ident utils.Identity, orderID string) (*OrderView, error) {
	o, err := s.Repo.FindForUser(ctx, ident.UserID, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		return nil, err
	}
	v := NewOrderView(o)
	return &v, nil
}

// ListForOwner lists the orders of the caller's restaurant.
func (s *OrderService) ListForOwner(ctx context.Context, ident utils.Identity) ([]OrderView, error) {
	rest, err := s.RestRepo.FindByOwner(ctx, ident.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("restaurant not found")
	}
	if err != nil {
		return nil, err
	}
	orders, err := s.Repo.ListForRestaurant(ctx, rest.ID)
	if err != nil {
		return nil, err
	}
	return viewsOf(orders), nil
}

func (s *OrderService) publish(ctx context.Context, o *entity.Order) {
	if s.Bus == nil {
		return
	}
	if err := s.Bus.Publish(ctx, events.FromOrder(o)); err != nil {
		slog.WarnContext(ctx, "publish order event", "order", o.ID, "err", err)
	}
}
