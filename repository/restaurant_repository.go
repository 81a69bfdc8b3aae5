package repository

import (
	"context"

	"foodorder/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RestaurantRepository struct {
	DB *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{DB: db}
}

func menuInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *RestaurantRepository) FindByID(ctx context.Context, id uint) (*entity.Restaurant, error) {
	var rest entity.Restaurant
	err := r.DB.WithContext(ctx).
		Preload("MenuItems", menuInOrder).
		First(&rest, id).Error
	if err != nil {
		return nil, err
	}
	return &rest, nil
}

// restaurant owned by userID
func (r *RestaurantRepository) FindByOwner(ctx context.Context, userID uint) (*entity.Restaurant, error) {
	var rest entity.Restaurant
	err := r.DB.WithContext(ctx).
		Preload("MenuItems", menuInOrder).
		Where("user_id = ?", userID).
		First(&rest).Error
	if err != nil {
		return nil, err
	}
	return &rest, nil
}

func (r *RestaurantRepository) ExistsForOwner(ctx context.Context, userID uint) (bool, error) {
	var cnt int64
	if err := r.DB.WithContext(ctx).Model(&entity.Restaurant{}).Where("user_id = ?", userID).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *RestaurantRepository) IsOwnedBy(ctx context.Context, restID, userID uint) (bool, error) {
	var cnt int64
	if err := r.DB.WithContext(ctx).Model(&entity.Restaurant{}).
		Where("id = ? AND user_id = ?", restID, userID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// Create inserts the restaurant and its menu. A second restaurant for the
// same owner fails with gorm.ErrDuplicatedKey from the unique index.
func (r *RestaurantRepository) Create(ctx context.Context, rest *entity.Restaurant) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := rest.MenuItems
		if err := tx.Omit(clause.Associations).Create(rest).Error; err != nil {
			return err
		}
		return insertMenu(tx, rest.ID, items)
	})
}

// Update overwrites every column and replaces the menu wholesale: rows the
// new menu omits are deleted.
func (r *RestaurantRepository) Update(ctx context.Context, rest *entity.Restaurant) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(rest).Error; err != nil {
			return err
		}
		if err := tx.Where("restaurant_id = ?", rest.ID).Delete(&entity.MenuItem{}).Error; err != nil {
			return err
		}
		return insertMenu(tx, rest.ID, rest.MenuItems)
	})
}

func insertMenu(tx *gorm.DB, restID uint, items []entity.MenuItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].RestaurantID = restID
		items[i].Position = i
	}
	return tx.Create(&items).Error
}
