package repository

import (
	"context"
	"strings"

	"foodorder/entity"

	"gorm.io/gorm"
)

type SortOption string

const (
	SortBestMatch     SortOption = "bestMatch"
	SortDeliveryPrice SortOption = "deliveryPrice"
	SortEstimatedTime SortOption = "estimatedDeliveryTime"
)

// ParseSortOption falls back to best match for unknown keys.
func ParseSortOption(s string) SortOption {
	switch SortOption(s) {
	case SortDeliveryPrice, SortEstimatedTime:
		return SortOption(s)
	default:
		return SortBestMatch
	}
}

// orderBy always ends with the id so equal keys come back in a stable order.
func (s SortOption) orderBy() string {
	switch s {
	case SortDeliveryPrice:
		return "delivery_price ASC, id ASC"
	case SortEstimatedTime:
		return "estimated_delivery_time ASC, id ASC"
	default:
		return "last_updated DESC, id ASC"
	}
}

type SearchQuery struct {
	City     string
	Text     string
	Cuisines []string
	Sort     SortOption
	Page     int // 1-based
	PageSize int
}

const likeEscape = "!"

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func likeContains(s string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(s)) + "%"
}

func (r *RestaurantRepository) inCity(ctx context.Context, city string) *gorm.DB {
	return r.DB.WithContext(ctx).Model(&entity.Restaurant{}).
		Where("LOWER(city) = ?", strings.ToLower(strings.TrimSpace(city)))
}

func (r *RestaurantRepository) CountInCity(ctx context.Context, city string) (int64, error) {
	var total int64
	err := r.inCity(ctx, city).Count(&total).Error
	return total, err
}

// Search translates the query into LIKE filters over the restaurant name
// and the "|tag|" cuisine index.
func (r *RestaurantRepository) Search(ctx context.Context, q SearchQuery) ([]entity.Restaurant, int64, error) {
	filtered := func() *gorm.DB {
		db := r.inCity(ctx, q.City)
		for _, c := range q.Cuisines {
			if key := entity.CuisineKey(c); key != "" {
				db = db.Where("cuisine_index LIKE ? ESCAPE '"+likeEscape+"'", likeContains("|"+key+"|"))
			}
		}
		if text := strings.TrimSpace(q.Text); text != "" {
			name := likeContains(text)
			// separators never match inside a tag
			if tag := strings.TrimSpace(strings.ReplaceAll(text, "|", "")); tag != "" {
				db = db.Where("(LOWER(restaurant_name) LIKE ? ESCAPE '"+likeEscape+"' OR cuisine_index LIKE ? ESCAPE '"+likeEscape+"')",
					name, likeContains(tag))
			} else {
				db = db.Where("LOWER(restaurant_name) LIKE ? ESCAPE '"+likeEscape+"'", name)
			}
		}
		return db
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// pages past the last skip the query
	if q.PageSize < 1 || q.Page < 1 || int64(q.Page-1) >= (total+int64(q.PageSize)-1)/int64(q.PageSize) {
		return []entity.Restaurant{}, total, nil
	}

	var rests []entity.Restaurant
	err := filtered().
		Preload("MenuItems", menuInOrder).
		Order(q.Sort.orderBy()).
		Limit(q.PageSize).
		Offset((q.Page - 1) * q.PageSize).
		Find(&rests).Error
	if err != nil {
		return nil, 0, err
	}
	return rests, total, nil
}
