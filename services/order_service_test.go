package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"foodorder/cache"
	"foodorder/entity"
	"foodorder/payment"
	"foodorder/pkg/apperr"
	"foodorder/testutil"
	"foodorder/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	db       *gorm.DB
	svc      *OrderService
	gw       *fakeGateway
	bus      *recordingBus
	owner    *entity.User
	customer *entity.User
	rest     *entity.Restaurant
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db := testutil.OpenDB(t)
	gw := &fakeGateway{}
	bus := &recordingBus{}
	svc := NewOrderService(OrderServiceDeps{
		DB:          db,
		Gateway:     gw,
		Bus:         bus,
		Idem:        cache.NewMemoryIdempotency(),
		Currency:    "gbp",
		FrontendURL: "http://localhost:5173/",
	})
	n := 0
	svc.NewID = func() string {
		n++
		return fmt.Sprintf("order-%d", n)
	}

	owner := testutil.CreateUser(t, db, "owner")
	customer := testutil.CreateUser(t, db, "customer")
	rest := testutil.CreateRestaurant(t, db, owner, "Pizza Palace", "London", 299,
		entity.MenuItem{ID: "item-a", Name: "Margherita", Price: 1000},
		entity.MenuItem{ID: "item-b", Name: "Garlic Bread", Price: 450},
	)
	return &orderFixture{db: db, svc: svc, gw: gw, bus: bus, owner: owner, customer: customer, rest: rest}
}

func (f *orderFixture) ident(u *entity.User) utils.Identity {
	return utils.Identity{Subject: u.AuthSubject, UserID: u.ID}
}

func (f *orderFixture) checkout(t *testing.T, items ...CheckoutCartItem) string {
	t.Helper()
	_, err := f.svc.CreateCheckoutSession(context.Background(), f.ident(f.customer), &CheckoutSessionReq{
		RestaurantID:    FlexInt(f.rest.ID),
		CartItems:       items,
		DeliveryDetails: CheckoutDeliveryIn{Name: "Sam", AddressLine1: "1 High St", City: "London"},
	})
	require.NoError(t, err)
	return f.gw.requests[len(f.gw.requests)-1].OrderID
}

func (f *orderFixture) status(t *testing.T, orderID string) entity.OrderStatus {
	t.Helper()
	var o entity.Order
	require.NoError(t, f.db.First(&o, "id = ?", orderID).Error)
	return o.Status
}

func (f *orderFixture) pay(t *testing.T, orderID string) {
	t.Helper()
	require.NoError(t, f.svc.HandlePaymentEvent(context.Background(), &payment.WebhookEvent{
		ID: "evt_paid_" + orderID, Type: payment.EventCheckoutCompleted, OrderID: orderID,
	}))
}

func countOrders(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&entity.Order{}).Count(&n).Error)
	return n
}

func TestCreateCheckoutSession_TotalIncludesDelivery(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	res, err := f.svc.CreateCheckoutSession(ctx, f.ident(f.customer), &CheckoutSessionReq{
		RestaurantID: FlexInt(f.rest.ID),
		CartItems:    []CheckoutCartItem{{MenuItemID: "item-a", Name: "whatever the client says", Quantity: 2}},
		DeliveryDetails: CheckoutDeliveryIn{
			Name: "Sam", AddressLine1: "1 High St", City: "London", Country: "United Kingdom",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/order-1", res.URL)

	require.Len(t, f.gw.requests, 1)
	req := f.gw.requests[0]
	assert.Equal(t, int64(299), req.DeliveryFee)
	assert.Equal(t, "gbp", req.Currency)
	assert.Equal(t, []payment.LineItem{{Name: "Margherita", UnitPrice: 1000, Quantity: 2}}, req.LineItems)
	assert.Equal(t, "http://localhost:5173/order-status?success=true", req.SuccessURL)
	assert.Equal(t, fmt.Sprintf("http://localhost:5173/detail/%d?cancelled=true", f.rest.ID), req.CancelURL)

	o, err := f.svc.DetailForUser(ctx, f.ident(f.customer), "order-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2299), o.TotalAmount)
	assert.Equal(t, "22.99", o.TotalDisplay)
	assert.Equal(t, entity.StatusPlaced, o.Status)
	assert.Equal(t, "cs_order-1", o.PaymentSessionID)
	assert.Equal(t, f.customer.Email, o.DeliveryDetails.Email)
	assert.Equal(t, "Pizza Palace", o.RestaurantSnapshot.RestaurantName)
	assert.Equal(t, f.owner.ID, o.RestaurantSnapshot.OwnerUserID)
	require.Len(t, o.CartItems, 1)
	assert.Equal(t, "Margherita", o.CartItems[0].Name)

	assert.Equal(t, []string{"placed"}, f.bus.statuses())
}

func TestCreateCheckoutSession_SnapshotSurvivesMenuEdit(t *testing.T) {
	f := newOrderFixture(t)
	id := f.checkout(t, CheckoutCartItem{MenuItemID: "item-b", Quantity: 1})

	require.NoError(t, f.db.Model(&entity.MenuItem{}).
		Where("restaurant_id = ? AND id = ?", f.rest.ID, "item-b").
		Update("price", 9999).Error)

	o, err := f.svc.DetailForUser(context.Background(), f.ident(f.customer), id)
	require.NoError(t, err)
	assert.Equal(t, int64(450+299), o.TotalAmount)
	assert.Equal(t, int64(450), o.CartItems[0].UnitPrice)
}

func TestCreateCheckoutSession_UnknownMenuItemPersistsNothing(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.CreateCheckoutSession(context.Background(), f.ident(f.customer), &CheckoutSessionReq{
		RestaurantID: FlexInt(f.rest.ID),
		CartItems: []CheckoutCartItem{
			{MenuItemID: "item-a", Quantity: 1},
			{MenuItemID: "gone", Quantity: 1},
		},
		DeliveryDetails: CheckoutDeliveryIn{Name: "Sam", AddressLine1: "1 High St", City: "London"},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
	assert.Empty(t, f.gw.requests)
	assert.Zero(t, countOrders(t, f.db))
}

func TestCreateCheckoutSession_GatewayFailurePersistsNothing(t *testing.T) {
	f := newOrderFixture(t)
	f.gw.createErr = errors.New("provider down")

	_, err := f.svc.CreateCheckoutSession(context.Background(), f.ident(f.customer), &CheckoutSessionReq{
		RestaurantID:    FlexInt(f.rest.ID),
		CartItems:       []CheckoutCartItem{{MenuItemID: "item-a", Quantity: 1}},
		DeliveryDetails: CheckoutDeliveryIn{Name: "Sam", AddressLine1: "1 High St", City: "London"},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Zero(t, countOrders(t, f.db))
	assert.Empty(t, f.bus.statuses())
}

func TestCreateCheckoutSession_TotalOverflowRejected(t *testing.T) {
	f := newOrderFixture(t)
	require.NoError(t, f.db.Model(&entity.MenuItem{}).
		Where("restaurant_id = ? AND id = ?", f.rest.ID, "item-a").
		Update("price", int64(math.MaxInt64/2)).Error)

	_, err := f.svc.CreateCheckoutSession(context.Background(), f.ident(f.customer), &CheckoutSessionReq{
		RestaurantID:    FlexInt(f.rest.ID),
		CartItems:       []CheckoutCartItem{{MenuItemID: "item-a", Quantity: 3}},
		DeliveryDetails: CheckoutDeliveryIn{Name: "Sam", AddressLine1: "1 High St", City: "London"},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
	assert.Empty(t, f.gw.requests)
	assert.Zero(t, countOrders(t, f.db))
}

func TestAddLine(t *testing.T) {
	total, ok := addLine(100, 1000, 999)
	assert.True(t, ok)
	assert.Equal(t, int64(999100), total)

	_, ok = addLine(0, 1000, 9300000000000000)
	assert.False(t, ok)
	_, ok = addLine(math.MaxInt64-10, 11, 1)
	assert.False(t, ok)
	_, ok = addLine(0, -1, 1)
	assert.False(t, ok)
}

func TestCreateCheckoutSession_RestaurantMissing(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.CreateCheckoutSession(context.Background(), f.ident(f.customer), &CheckoutSessionReq{
		RestaurantID:    9999,
		CartItems:       []CheckoutCartItem{{MenuItemID: "item-a", Quantity: 1}},
		DeliveryDetails: CheckoutDeliveryIn{Name: "Sam", AddressLine1: "1 High St", City: "London"},
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCheckoutSessionReq_Validate(t *testing.T) {
	valid := func() *CheckoutSessionReq {
		return &CheckoutSessionReq{
			RestaurantID:    1,
			CartItems:       []CheckoutCartItem{{MenuItemID: "a", Quantity: 1}},
			DeliveryDetails: CheckoutDeliveryIn{Name: "Sam", AddressLine1: "1 High St", City: "London"},
		}
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(r *CheckoutSessionReq){
		"no restaurant": func(r *CheckoutSessionReq) { r.RestaurantID = 0 },
		"empty cart":    func(r *CheckoutSessionReq) { r.CartItems = nil },
		"zero quantity": func(r *CheckoutSessionReq) { r.CartItems[0].Quantity = 0 },
		"huge quantity": func(r *CheckoutSessionReq) { r.CartItems[0].Quantity = 9300000000000000 },
		"over the cap":  func(r *CheckoutSessionReq) { r.CartItems[0].Quantity = MaxLineQuantity + 1 },
		"no item id":    func(r *CheckoutSessionReq) { r.CartItems[0].MenuItemID = " " },
		"no address":    func(r *CheckoutSessionReq) { r.DeliveryDetails.AddressLine1 = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := valid()
			mutate(r)
			assert.True(t, apperr.Is(r.Validate(), apperr.KindInvalid))
		})
	}
}

func TestFlexInt_AcceptsNumbersAndStrings(t *testing.T) {
	var req CheckoutSessionReq
	body := `{"restaurantId":"7","cartItems":[{"menuItemId":"a","name":"A","quantity":"3"},{"menuItemId":"b","quantity":2}]}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.Equal(t, FlexInt(7), req.RestaurantID)
	assert.Equal(t, FlexInt(3), req.CartItems[0].Quantity)
	assert.Equal(t, FlexInt(2), req.CartItems[1].Quantity)

	var bad FlexInt
	assert.Error(t, json.Unmarshal([]byte(`"two"`), &bad))
}

func TestUpdateStatusByOwner_NonOwnerLeavesStatus(t *testing.T) {
	f := newOrderFixture(t)
	id := f.checkout(t, CheckoutCartItem{MenuItemID: "item-a", Quantity: 1})
	f.pay(t, id)

	other := testutil.CreateUser(t, f.db, "owner-b")
	testutil.CreateRestaurant(t, f.db, other, "Burger Barn", "London", 100)

	_, err := f.svc.UpdateStatusByOwner(context.Background(), f.ident(other), id, "inProgress")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	assert.Equal(t, entity.StatusPaid, f.status(t, id))
}

func TestUpdateStatusByOwner_ForwardOnly(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	owner := f.ident(f.owner)
	id := f.checkout(t, CheckoutCartItem{MenuItemID: "item-a", Quantity: 1})

	// only the payment processor may mark an order paid
	_, err := f.svc.UpdateStatusByOwner(ctx, owner, id, "paid")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	f.pay(t, id)

	_, err = f.svc.UpdateStatusByOwner(ctx, owner, id, "outForDelivery")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	for _, st := range []string{"inProgress", "outForDelivery", "delivered"} {
		v, err := f.svc.UpdateStatusByOwner(ctx, owner, id, st)
		require.NoError(t, err, st)
		assert.Equal(t, entity.OrderStatus(st), v.Status)
		assert.Equal(t, f.customer.ID, v.User.ID)
	}

	_, err = f.svc.UpdateStatusByOwner(ctx, owner, id, "failed")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	_, err = f.svc.UpdateStatusByOwner(ctx, owner, id, "inProgress")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, entity.StatusDelivered, f.status(t, id))

	var hist []entity.OrderStatusHistory
	require.NoError(t, f.db.Where("order_id = ?", id).Order("id").Find(&hist).Error)
	require.Len(t, hist, 4)
	assert.Equal(t, entity.SourcePayment, hist[0].Source)
	assert.Equal(t, entity.StatusDelivered, hist[3].To)
	assert.Equal(t, f.owner.ID, hist[3].ChangedBy)

	assert.Equal(t, []string{"placed", "paid", "inProgress", "outForDelivery", "delivered"}, f.bus.statuses())
}

func TestUpdateStatusByOwner_BadInput(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	id := f.checkout(t, CheckoutCartItem{MenuItemID: "item-a", Quantity: 1})

	_, err := f.svc.UpdateStatusByOwner(ctx, f.ident(f.owner), id, "teleported")
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	_, err = f.svc.UpdateStatusByOwner(ctx, f.ident(f.owner), "missing", "failed")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	v, err := f.svc.UpdateStatusByOwner(ctx, f.ident(f.owner), id, "failed")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFailed, v.Status)
}

func TestHandlePaymentEvent_PaidOnceAndReplaySafe(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	id := f.checkout(t, CheckoutCartItem{MenuItemID: "item-a", Quantity: 2})

	ev := &payment.WebhookEvent{ID: "evt_1", Type: payment.EventCheckoutCompleted, SessionID: "cs_" + id}
	require.NoError(t, f.svc.HandlePaymentEvent(ctx, ev))
	assert.Equal(t, entity.StatusPaid, f.status(t, id))

	require.NoError(t, f.svc.HandlePaymentEvent(ctx, ev))

	// a different event for the same session no longer applies
	late := &payment.WebhookEvent{ID: "evt_2", Type: payment.EventCheckoutExpired, OrderID: id}
	require.NoError(t, f.svc.HandlePaymentEvent(ctx, late))
	assert.Equal(t, entity.StatusPaid, f.status(t, id))

	var hist int64
	require.NoError(t, f.db.Model(&entity.OrderStatusHistory{}).Where("order_id = ?", id).Count(&hist).Error)
	assert.Equal(t, int64(1), hist)

	var o entity.Order
	require.NoError(t, f.db.First(&o, "id = ?", id).Error)
	assert.Equal(t, int64(2299), o.TotalAmount)
}

func TestHandlePaymentEvent_ExpiredFailsOrder(t *testing.T) {
	f := newOrderFixture(t)
	id := f.checkout(t, CheckoutCartItem{MenuItemID: "item-a", Quantity: 1})

	require.NoError(t, f.svc.HandlePaymentEvent(context.Background(),
		&payment.WebhookEvent{ID: "evt_x", Type: payment.EventCheckoutExpired, OrderID: id}))
	assert.Equal(t, entity.StatusFailed, f.status(t, id))
}

func TestHandlePaymentEvent_UnknownOrderAcknowledged(t *testing.T) {
	f := newOrderFixture(t)
	err := f.svc.HandlePaymentEvent(context.Background(),
		&payment.WebhookEvent{ID: "evt_9", Type: payment.EventCheckoutCompleted, OrderID: "nope"})
	assert.NoError(t, err)
}

func TestHandleWebhook_BadSignature(t *testing.T) {
	f := newOrderFixture(t)
	f.gw.parseErr = payment.ErrInvalidSignature

	err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "t=1,v1=bad")
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)
}

func TestListOrders(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	first := f.checkout(t, CheckoutCartItem{MenuItemID: "item-a", Quantity: 1})
	second := f.checkout(t, CheckoutCartItem{MenuItemID: "item-b", Quantity: 3})

	mine, err := f.svc.ListForUser(ctx, f.ident(f.customer))
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second, mine[0].ID)
	assert.Equal(t, first, mine[1].ID)
	assert.Equal(t, f.customer.Email, mine[0].User.Email)

	incoming, err := f.svc.ListForOwner(ctx, f.ident(f.owner))
	require.NoError(t, err)
	assert.Len(t, incoming, 2)

	_, err = f.svc.ListForOwner(ctx, f.ident(f.customer))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.svc.DetailForUser(ctx, f.ident(f.owner), first)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
