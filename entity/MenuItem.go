package entity

// MenuItem ids are unique within their restaurant only.
type MenuItem struct {
	RestaurantID uint   `gorm:"primaryKey;autoIncrement:false" json:"-"`
	ID           string `gorm:"primaryKey;size:36" json:"_id"`
	Name         string `gorm:"not null" json:"name"`
	Price        int64  `json:"price"`
	Position     int    `json:"-"`
}
