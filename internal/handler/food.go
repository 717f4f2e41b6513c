package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"foodorder/internal/id"
	"foodorder/internal/model"
	"foodorder/internal/service"
)

const (
	defaultFoodLimit   = 20
	defaultSearchLimit = 10
)

type nutritionRequest struct {
	Calories float64 `json:"calories" validate:"gte=0"`
	Protein  float64 `json:"protein" validate:"gte=0"`
	Carbs    float64 `json:"carbs" validate:"gte=0"`
	Fat      float64 `json:"fat" validate:"gte=0"`
}

func (n *nutritionRequest) info() *model.NutritionalInfo {
	if n == nil {
		return nil
	}
	return &model.NutritionalInfo{Calories: n.Calories, Protein: n.Protein, Carbs: n.Carbs, Fat: n.Fat}
}

type createFoodRequest struct {
	Name            string            `json:"name" validate:"required,min=2,max=100"`
	Description     string            `json:"description" validate:"required,min=10,max=500"`
	Price           *float64          `json:"price" validate:"required,gte=0"`
	Availability    *bool             `json:"availability"`
	DeliveryTime    string            `json:"deliveryTime" validate:"required"`
	ImageURL        string            `json:"imageUrl" validate:"required,url"`
	Quantity        *int              `json:"quantity" validate:"omitempty,gte=0"`
	Category        string            `json:"category" validate:"required,oneof=appetizer main dessert beverage snack pizza burger pasta salad soup"`
	Restaurant      string            `json:"restaurant" validate:"required"`
	Ingredients     []string          `json:"ingredients"`
	NutritionalInfo *nutritionRequest `json:"nutritionalInfo"`
	SpiceLevel      string            `json:"spiceLevel" validate:"omitempty,oneof=Mild Medium Hot 'Very Hot'"`
	IsVegetarian    bool              `json:"isVegetarian"`
	IsVegan         bool              `json:"isVegan"`
	IsGlutenFree    bool              `json:"isGlutenFree"`
}

func (req *createFoodRequest) food() *model.Food {
	f := &model.Food{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Price:           *req.Price,
		Availability:    true,
		DeliveryTime:    req.DeliveryTime,
		ImageURL:        req.ImageURL,
		Quantity:        50,
		Category:        req.Category,
		Restaurant:      req.Restaurant,
		Ingredients:     req.Ingredients,
		NutritionalInfo: req.NutritionalInfo.info(),
		SpiceLevel:      "Medium",
		IsVegetarian:    req.IsVegetarian,
		IsVegan:         req.IsVegan,
		IsGlutenFree:    req.IsGlutenFree,
	}
	if req.Availability != nil {
		f.Availability = *req.Availability
	}
	if req.Quantity != nil {
		f.Quantity = *req.Quantity
	}
	if req.SpiceLevel != "" {
		f.SpiceLevel = req.SpiceLevel
	}
	return f
}

// updateFoodRequest carries a partial update. Absent fields keep their
// stored value.
type updateFoodRequest struct {
	Name            *string           `json:"name" validate:"omitempty,min=2,max=100"`
	Description     *string           `json:"description" validate:"omitempty,min=10,max=500"`
	Price           *float64          `json:"price" validate:"omitempty,gte=0"`
	Availability    *bool             `json:"availability"`
	DeliveryTime    *string           `json:"deliveryTime"`
	ImageURL        *string           `json:"imageUrl" validate:"omitempty,url"`
	Quantity        *int              `json:"quantity" validate:"omitempty,gte=0"`
	Category        *string           `json:"category" validate:"omitempty,oneof=appetizer main dessert beverage snack pizza burger pasta salad soup"`
	Restaurant      *string           `json:"restaurant"`
	Ingredients     []string          `json:"ingredients"`
	NutritionalInfo *nutritionRequest `json:"nutritionalInfo"`
	SpiceLevel      *string           `json:"spiceLevel" validate:"omitempty,oneof=Mild Medium Hot 'Very Hot'"`
	IsVegetarian    *bool             `json:"isVegetarian"`
	IsVegan         *bool             `json:"isVegan"`
	IsGlutenFree    *bool             `json:"isGlutenFree"`
}

func (req *updateFoodRequest) apply(f *model.Food) {
	set(&f.Name, req.Name)
	f.Name = strings.TrimSpace(f.Name)
	set(&f.Description, req.Description)
	set(&f.Price, req.Price)
	set(&f.Availability, req.Availability)
	set(&f.DeliveryTime, req.DeliveryTime)
	set(&f.ImageURL, req.ImageURL)
	set(&f.Quantity, req.Quantity)
	set(&f.Category, req.Category)
	set(&f.Restaurant, req.Restaurant)
	set(&f.SpiceLevel, req.SpiceLevel)
	set(&f.IsVegetarian, req.IsVegetarian)
	set(&f.IsVegan, req.IsVegan)
	set(&f.IsGlutenFree, req.IsGlutenFree)
	if req.Ingredients != nil {
		f.Ingredients = req.Ingredients
	}
	if req.NutritionalInfo != nil {
		f.NutritionalInfo = req.NutritionalInfo.info()
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func parseFoodID(r *http.Request) (string, bool) {
	foodID, err := id.Parse(chi.URLParam(r, "id"), id.PrefixFood)
	return foodID, err == nil
}

func ListFoodsHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := model.FoodFilter{
			Category:   q.Get("category"),
			Restaurant: q.Get("restaurant"),
			MinPrice:   queryFloat(r, "minPrice"),
			MaxPrice:   queryFloat(r, "maxPrice"),
			Vegetarian: queryBool(r, "isVegetarian"),
			Vegan:      queryBool(r, "isVegan"),
			GlutenFree: queryBool(r, "isGlutenFree"),
			SpiceLevel: q.Get("spiceLevel"),
			Search:     q.Get("search"),
			SortBy:     q.Get("sortBy"),
			SortAsc:    q.Get("sortOrder") == "asc",
			Page:       queryInt(r, "page", 1),
			Limit:      clampLimit(queryInt(r, "limit", defaultFoodLimit)),
		}

		page, err := catalog.List(r.Context(), f)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, response{
			Success:    true,
			Message:    "Foods retrieved successfully",
			Data:       page.Foods,
			Pagination: newPagination(page.Page, page.Limit, page.Total),
		})
	}
}

func SearchFoodsHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			Fail(w, http.StatusBadRequest, "Search query is required")
			return
		}

		foods, err := catalog.Search(r.Context(), query, clampLimit(queryInt(r, "limit", defaultSearchLimit)))
		if err != nil {
			writeError(w, err)
			return
		}
		ok(w, http.StatusOK, "Search completed successfully", foods)
	}
}

func FoodCategoriesHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := catalog.Categories(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		ok(w, http.StatusOK, "Food categories retrieved successfully", categories)
	}
}

func GetFoodHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		foodID, valid := parseFoodID(r)
		if !valid {
			writeError(w, service.ErrFoodNotFound)
			return
		}

		food, err := catalog.Get(r.Context(), foodID)
		if err != nil {
			writeError(w, err)
			return
		}
		ok(w, http.StatusOK, "Food item retrieved successfully", food)
	}
}

func CreateFoodHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createFoodRequest
		if !decode(w, r, &req) {
			return
		}

		food, err := catalog.Create(r.Context(), req.food())
		if err != nil {
			writeError(w, err)
			return
		}
		ok(w, http.StatusCreated, "Food item created successfully", food)
	}
}

func UpdateFoodHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		foodID, valid := parseFoodID(r)
		if !valid {
			writeError(w, service.ErrFoodNotFound)
			return
		}

		var req updateFoodRequest
		if !decode(w, r, &req) {
			return
		}

		food, err := catalog.Update(r.Context(), foodID, req.apply)
		if err != nil {
			writeError(w, err)
			return
		}
		ok(w, http.StatusOK, "Food item updated successfully", food)
	}
}

func DeleteFoodHandler(catalog *service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		foodID, valid := parseFoodID(r)
		if !valid {
			writeError(w, service.ErrFoodNotFound)
			return
		}

		if err := catalog.Delete(r.Context(), foodID); err != nil {
			writeError(w, err)
			return
		}
		ok(w, http.StatusOK, "Food item deleted successfully", nil)
	}
}
