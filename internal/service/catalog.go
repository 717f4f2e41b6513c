package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"foodorder/internal/id"
	"foodorder/internal/model"
	"foodorder/internal/store"
)

// FoodCache is the read-through cache in front of the catalog.
type FoodCache interface {
	GetFood(ctx context.Context, foodID string) (*model.Food, bool)
	SetFood(ctx context.Context, f *model.Food)
	GetCategories(ctx context.Context) ([]string, bool)
	SetCategories(ctx context.Context, categories []string)
	Invalidate(ctx context.Context, foodID string)
}

type FoodPage struct {
	Foods []model.Food
	Total int64
	Page  int
	Limit int
}

type CatalogService struct {
	foods store.FoodStore
	cache FoodCache
	now   func() time.Time
}

func NewCatalogService(foods store.FoodStore, cache FoodCache) *CatalogService {
	return &CatalogService{foods: foods, cache: cache, now: time.Now}
}

func (s *CatalogService) List(ctx context.Context, f model.FoodFilter) (*FoodPage, error) {
	foods, total, err := s.foods.ListFoods(ctx, f)
	if err != nil {
		return nil, storeFailure("list foods", err)
	}
	return &FoodPage{Foods: foods, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]model.Food, error) {
	foods, err := s.foods.SearchFoods(ctx, query, limit)
	if err != nil {
		return nil, storeFailure("search foods", err)
	}
	return foods, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	if categories, ok := s.cache.GetCategories(ctx); ok {
		return categories, nil
	}

	categories, err := s.foods.FoodCategories(ctx)
	if err != nil {
		return nil, storeFailure("food categories", err)
	}
	s.cache.SetCategories(ctx, categories)
	return categories, nil
}

func (s *CatalogService) Get(ctx context.Context, foodID string) (*model.Food, error) {
	if f, ok := s.cache.GetFood(ctx, foodID); ok {
		return f, nil
	}

	f, err := s.foods.GetFood(ctx, foodID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, storeFailure("get food", err)
	}
	s.cache.SetFood(ctx, f)
	return f, nil
}

func (s *CatalogService) Create(ctx context.Context, f *model.Food) (*model.Food, error) {
	now := s.now().UTC()
	f.ID = id.NewFood()
	f.CreatedAt = now
	f.UpdatedAt = now

	if err := s.foods.CreateFood(ctx, f); err != nil {
		return nil, storeFailure("create food", err)
	}
	s.cache.Invalidate(ctx, f.ID)
	slog.Info("food created", "id", f.ID, "name", f.Name)
	return f, nil
}

// Update replaces the stored item, keeping its id and creation time.
func (s *CatalogService) Update(ctx context.Context, foodID string, apply func(f *model.Food)) (*model.Food, error) {
	f, err := s.foods.GetFood(ctx, foodID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, storeFailure("get food", err)
	}

	apply(f)
	f.ID = foodID
	f.UpdatedAt = s.now().UTC()

	if err := s.foods.UpdateFood(ctx, f); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, storeFailure("update food", err)
	}
	s.cache.Invalidate(ctx, foodID)
	return f, nil
}

func (s *CatalogService) Delete(ctx context.Context, foodID string) error {
	if err := s.foods.DeleteFood(ctx, foodID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrFoodNotFound
		}
		return storeFailure("delete food", err)
	}
	s.cache.Invalidate(ctx, foodID)
	return nil
}
