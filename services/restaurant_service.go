package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"foodorder/entity"
	"foodorder/imagestore"
	"foodorder/pkg/apperr"
	"foodorder/repository"
	"foodorder/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const SearchPageSize = 10

type RestaurantService struct {
	Repo   *repository.RestaurantRepository
	Images imagestore.Uploader
	Now    func() time.Time
}

func NewRestaurantService(repo *repository.RestaurantRepository, images imagestore.Uploader) *RestaurantService {
	return &RestaurantService{Repo: repo, Images: images, Now: time.Now}
}

// ----- DTOs -----

type MenuItemIn struct {
	ID    string
	Name  string
	Price int64
}

// RestaurantIn holds every mutable field; update replaces all of them.
type RestaurantIn struct {
	RestaurantName        string
	City                  string
	Country               string
	DeliveryPrice         int64
	EstimatedDeliveryTime int
	Cuisines              []string
	MenuItems             []MenuItemIn
}

func (in *RestaurantIn) Validate() error {
	switch {
	case strings.TrimSpace(in.RestaurantName) == "":
		return apperr.Invalid("restaurant name is required")
	case strings.TrimSpace(in.City) == "":
		return apperr.Invalid("city is required")
	case strings.TrimSpace(in.Country) == "":
		return apperr.Invalid("country is required")
	case in.DeliveryPrice < 0:
		return apperr.Invalid("delivery price must be a positive number")
	case in.EstimatedDeliveryTime < 0:
		return apperr.Invalid("estimated delivery time must be a positive integer")
	case len(in.Cuisines) == 0:
		return apperr.Invalid("cuisines array cannot be empty")
	}
	for i, m := range in.MenuItems {
		if strings.TrimSpace(m.Name) == "" {
			return apperr.Invalid("menu item %d: name is required", i)
		}
		if m.Price < 0 {
			return apperr.Invalid("menu item %d: price must be a positive number", i)
		}
	}
	return nil
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

type SearchResponse struct {
	Data       []entity.Restaurant `json:"data"`
	Pagination Pagination          `json:"pagination"`
}

type SearchParams struct {
	City             string
	SearchQuery      string
	SelectedCuisines string // comma separated
	SortOption       string
	Page             int
}

// ----- Owner -----

func (s *RestaurantService) GetMine(ctx context.Context, ident utils.Identity) (*entity.Restaurant, error) {
	r, err := s.Repo.FindByOwner(ctx, ident.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("restaurant not found")
	}
	return r, err
}

// CreateMine creates the caller's restaurant. img is required.
func (s *RestaurantService) CreateMine(ctx context.Context, ident utils.Identity, in *RestaurantIn, img *imagestore.Image) (*entity.Restaurant, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, apperr.Invalid("image file is required")
	}

	// cheap early exit so a duplicate does not upload an image first;
	// the unique index still decides races
	exists, err := s.Repo.ExistsForOwner(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("User restaurant already exists")
	}

	url, err := s.Images.Upload(ctx, *img)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	r := &entity.Restaurant{UserID: ident.UserID, ImageURL: url}
	s.apply(r, in, nil)

	if err := s.Repo.Create(ctx, r); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Wrap(apperr.KindConflict, "User restaurant already exists", err)
		}
		return nil, err
	}
	return r, nil
}

// UpdateMine replaces every mutable field and the whole menu. img is optional.
func (s *RestaurantService) UpdateMine(ctx context.Context, ident utils.Identity, in *RestaurantIn, img *imagestore.Image) (*entity.Restaurant, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	r, err := s.GetMine(ctx, ident)
	if err != nil {
		return nil, err
	}

	if img != nil {
		url, err := s.Images.Upload(ctx, *img)
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		r.ImageURL = url
	}

	s.apply(r, in, r.MenuItems)
	if err := s.Repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// apply copies in onto r. Menu ids present in current are kept so carts
// referencing them stay valid; everything else gets a fresh id.
func (s *RestaurantService) apply(r *entity.Restaurant, in *RestaurantIn, current []entity.MenuItem) {
	r.RestaurantName = strings.TrimSpace(in.RestaurantName)
	r.City = strings.TrimSpace(in.City)
	r.Country = strings.TrimSpace(in.Country)
	r.DeliveryPrice = in.DeliveryPrice
	r.EstimatedDeliveryTime = in.EstimatedDeliveryTime
	r.Cuisines = normalizeCuisines(in.Cuisines)
	r.LastUpdated = s.Now().UTC()

	known := make(map[string]bool, len(current))
	for _, m := range current {
		known[m.ID] = true
	}
	used := make(map[string]bool, len(in.MenuItems))
	items := make([]entity.MenuItem, 0, len(in.MenuItems))
	for _, m := range in.MenuItems {
		id := m.ID
		if !known[id] || used[id] {
			id = uuid.NewString()
		}
		used[id] = true
		items = append(items, entity.MenuItem{ID: id, Name: strings.TrimSpace(m.Name), Price: m.Price})
	}
	r.MenuItems = items
}

func normalizeCuisines(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" || seen[strings.ToLower(c)] {
			continue
		}
		seen[strings.ToLower(c)] = true
		out = append(out, c)
	}
	return out
}

// ----- Public -----

func (s *RestaurantService) Get(ctx context.Context, id uint) (*entity.Restaurant, error) {
	r, err := s.Repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("restaurant not found")
	}
	return r, err
}

func (s *RestaurantService) Search(ctx context.Context, p SearchParams) (*SearchResponse, error) {
	page := p.Page
	if page < 1 {
		page = 1
	}

	inCity, err := s.Repo.CountInCity(ctx, p.City)
	if err != nil {
		return nil, err
	}
	if inCity == 0 {
		return &SearchResponse{Data: []entity.Restaurant{}, Pagination: Pagination{Total: 0, Page: 1, Pages: 1}}, nil
	}

	var cuisines []string
	for _, c := range strings.Split(p.SelectedCuisines, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cuisines = append(cuisines, c)
		}
	}

	rests, total, err := s.Repo.Search(ctx, repository.SearchQuery{
		City:     p.City,
		Text:     p.SearchQuery,
		Cuisines: cuisines,
		Sort:     repository.ParseSortOption(p.SortOption),
		Page:     page,
		PageSize: SearchPageSize,
	})
	if err != nil {
		return nil, err
	}
	if rests == nil {
		rests = []entity.Restaurant{}
	}

	return &SearchResponse{
		Data: rests,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Pages: int(math.Ceil(float64(total) / float64(SearchPageSize))),
		},
	}, nil
}
