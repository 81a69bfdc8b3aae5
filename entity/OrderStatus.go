package entity

type OrderStatus string

const (
	StatusPlaced         OrderStatus = "placed"
	StatusPaid           OrderStatus = "paid"
	StatusInProgress     OrderStatus = "inProgress"
	StatusOutForDelivery OrderStatus = "outForDelivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusFailed         OrderStatus = "failed"
)

// AllStatuses in lifecycle order.
var AllStatuses = []OrderStatus{
	StatusPlaced, StatusPaid, StatusInProgress, StatusOutForDelivery, StatusDelivered, StatusFailed,
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

// StatusSource says who drives a transition.
type StatusSource string

const (
	SourceOwner   StatusSource = "owner"
	SourcePayment StatusSource = "payment"
)

// transitions lists every allowed edge and who may take it.
var transitions = map[OrderStatus]map[OrderStatus][]StatusSource{
	StatusPlaced: {
		StatusPaid:   {SourcePayment},
		StatusFailed: {SourcePayment, SourceOwner},
	},
	StatusPaid: {
		StatusInProgress: {SourceOwner},
		StatusFailed:     {SourceOwner},
	},
	StatusInProgress: {
		StatusOutForDelivery: {SourceOwner},
		StatusFailed:         {SourceOwner},
	},
	StatusOutForDelivery: {
		StatusDelivered: {SourceOwner},
		StatusFailed:    {SourceOwner},
	},
}

// CanTransition reports whether src may move an order from -> to.
func CanTransition(from, to OrderStatus, src StatusSource) bool {
	for _, s := range transitions[from][to] {
		if s == src {
			return true
		}
	}
	return false
}
