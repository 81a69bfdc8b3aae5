package entity

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Restaurant struct {
	ID        uint      `gorm:"primaryKey" json:"_id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// one restaurant per owner; the unique index is what enforces it
	UserID uint `gorm:"uniqueIndex;not null" json:"user"`
	User   User `json:"-"`

	RestaurantName        string    `gorm:"not null;index" json:"restaurantName"`
	City                  string    `gorm:"not null;index" json:"city"`
	Country               string    `json:"country"`
	DeliveryPrice         int64     `json:"deliveryPrice"`
	EstimatedDeliveryTime int       `json:"estimatedDeliveryTime"`
	Cuisines              []string  `gorm:"serializer:json" json:"cuisines"`
	CuisineIndex          string    `json:"-"` // see CuisineIndexOf
	ImageURL              string    `json:"imageUrl"`
	LastUpdated           time.Time `gorm:"index" json:"lastUpdated"`

	MenuItems []MenuItem `gorm:"constraint:OnDelete:CASCADE" json:"menuItems"`
	Orders    []Order    `json:"-"`
}

// CuisineIndexOf renders tags as "|thai|street food|", lowercased, so a
// LIKE on "|tag|" matches whole tags only.
func CuisineIndexOf(cuisines []string) string {
	var b strings.Builder
	for _, c := range cuisines {
		c = CuisineKey(c)
		if c == "" {
			continue
		}
		b.WriteString("|")
		b.WriteString(c)
	}
	if b.Len() == 0 {
		return ""
	}
	return b.String() + "|"
}

// CuisineKey is the form a tag takes inside the index.
func CuisineKey(c string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(c, "|", " ")))
}

func (r *Restaurant) BeforeSave(*gorm.DB) error {
	r.CuisineIndex = CuisineIndexOf(r.Cuisines)
	return nil
}

// Snapshot copies the fields an order keeps for display.
func (r *Restaurant) Snapshot() RestaurantSnapshot {
	return RestaurantSnapshot{
		ID:                    r.ID,
		RestaurantName:        r.RestaurantName,
		City:                  r.City,
		Country:               r.Country,
		DeliveryPrice:         r.DeliveryPrice,
		EstimatedDeliveryTime: r.EstimatedDeliveryTime,
		ImageURL:              r.ImageURL,
		OwnerUserID:           r.UserID,
	}
}

// FindMenuItem looks an item up by id in the current menu.
func (r *Restaurant) FindMenuItem(id string) (MenuItem, bool) {
	for _, m := range r.MenuItems {
		if m.ID == id {
			return m, true
		}
	}
	return MenuItem{}, false
}
