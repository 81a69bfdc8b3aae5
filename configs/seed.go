package configs

import (
	"fmt"
	"log/slog"
	"time"

	"foodorder/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type demoRestaurant struct {
	name     string
	city     string
	delivery int64
	eta      int
	cuisines []string
	menu     []demoItem
}

type demoItem struct {
	name  string
	price int64
}

var demoRestaurants = []demoRestaurant{
	{"Pizza Palace", "London", 299, 30, []string{"Pizza", "Italian"},
		[]demoItem{{"Margherita", 1000}, {"Pepperoni", 1250}, {"Garlic Bread", 450}}},
	{"Curry House", "London", 199, 45, []string{"Indian", "Curry"},
		[]demoItem{{"Chicken Tikka Masala", 1195}, {"Pilau Rice", 350}, {"Naan", 295}}},
	{"Noodle Bar", "Manchester", 350, 25, []string{"Noodles", "Japanese"},
		[]demoItem{{"Ramen", 1150}, {"Gyoza", 595}}},
}

// SeedDemo creates demo owners and restaurants once. It does nothing when any
// restaurant already exists.
func SeedDemo(db *gorm.DB) error {
	var n int64
	if err := db.Model(&entity.Restaurant{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		slog.Info("skip demo seed: restaurants already present", "count", n)
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for i, d := range demoRestaurants {
			owner := entity.User{
				AuthSubject: fmt.Sprintf("demo|owner-%d", i+1),
				Email:       fmt.Sprintf("owner%d@demo.local", i+1),
				Name:        d.name + " Owner",
				City:        d.city,
				Country:     "United Kingdom",
			}
			if err := tx.Create(&owner).Error; err != nil {
				return fmt.Errorf("seed owner: %w", err)
			}

			r := entity.Restaurant{
				UserID:                owner.ID,
				RestaurantName:        d.name,
				City:                  d.city,
				Country:               "United Kingdom",
				DeliveryPrice:         d.delivery,
				EstimatedDeliveryTime: d.eta,
				Cuisines:              d.cuisines,
				LastUpdated:           time.Now().UTC(),
			}
			for pos, it := range d.menu {
				r.MenuItems = append(r.MenuItems, entity.MenuItem{
					ID: uuid.NewString(), Name: it.name, Price: it.price, Position: pos,
				})
			}
			if err := tx.Create(&r).Error; err != nil {
				return fmt.Errorf("seed restaurant: %w", err)
			}
		}
		slog.Info("demo data seeded", "restaurants", len(demoRestaurants))
		return nil
	})
}
