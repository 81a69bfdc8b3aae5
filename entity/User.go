package entity

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"_id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// subject claim of the identity provider token
	AuthSubject  string `gorm:"uniqueIndex;size:191;not null" json:"auth0Id"`
	Email        string `gorm:"not null" json:"email"`
	Name         string `json:"name"`
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
	Country      string `json:"country"`

	Restaurant *Restaurant `gorm:"foreignKey:UserID" json:"-"`
	Orders     []Order     `json:"-"`
}
