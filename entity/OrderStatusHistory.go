package entity

import (
	"time"
)

// OrderStatusHistory is the audit trail of applied transitions.
type OrderStatusHistory struct {
	ID        uint         `gorm:"primaryKey" json:"-"`
	OrderID   string       `gorm:"index;size:36;not null" json:"-"`
	From      OrderStatus  `gorm:"size:32" json:"from"`
	To        OrderStatus  `gorm:"size:32;not null" json:"to"`
	ChangedBy uint         `json:"changedBy"` // 0 = payment processor
	Source    StatusSource `gorm:"size:16" json:"source"`
	CreatedAt time.Time    `json:"createdAt"`
}
