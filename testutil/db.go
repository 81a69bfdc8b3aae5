// Package testutil has helpers shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"foodorder/configs"
	"foodorder/entity"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns a migrated in-memory sqlite database private to t.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := configs.SetupDatabase(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, sub string) *entity.User {
	t.Helper()
	u := &entity.User{AuthSubject: sub, Email: sub + "@example.com", Name: "User " + sub}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// CreateRestaurant stores a restaurant for owner with the given menu.
func CreateRestaurant(t *testing.T, db *gorm.DB, owner *entity.User, name, city string, delivery int64, menu ...entity.MenuItem) *entity.Restaurant {
	t.Helper()
	for i := range menu {
		if menu[i].ID == "" {
			menu[i].ID = uuid.NewString()
		}
		menu[i].Position = i
	}
	r := &entity.Restaurant{
		UserID:                owner.ID,
		RestaurantName:        name,
		City:                  city,
		Country:               "United Kingdom",
		DeliveryPrice:         delivery,
		EstimatedDeliveryTime: 30,
		Cuisines:              []string{"Pizza"},
		MenuItems:             menu,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("create restaurant: %v", err)
	}
	return r
}
