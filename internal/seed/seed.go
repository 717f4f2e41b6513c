package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"foodorder/internal/id"
	"foodorder/internal/model"
	"foodorder/internal/store"
)

const day = 24 * time.Hour

type Seeder interface {
	store.FoodStore
	store.PromoCodeStore
}

// Run fills empty catalog and promo collections with sample data. Non-empty
// collections are left alone.
func Run(ctx context.Context, s Seeder, now time.Time) error {
	if err := seedFoods(ctx, s, now); err != nil {
		return err
	}
	return seedPromoCodes(ctx, s, now)
}

func seedFoods(ctx context.Context, s Seeder, now time.Time) error {
	n, err := s.CountFoods(ctx)
	if err != nil {
		return fmt.Errorf("count foods: %w", err)
	}
	if n > 0 {
		slog.Info("food data already exists, skipping seed")
		return nil
	}

	for _, f := range sampleFoods() {
		f.ID = id.NewFood()
		f.Availability = true
		f.CreatedAt = now
		f.UpdatedAt = now
		if err := s.CreateFood(ctx, &f); err != nil {
			return fmt.Errorf("seed food %q: %w", f.Name, err)
		}
	}
	slog.Info("sample food data seeded")
	return nil
}

func seedPromoCodes(ctx context.Context, s Seeder, now time.Time) error {
	n, err := s.CountPromoCodes(ctx)
	if err != nil {
		return fmt.Errorf("count promo codes: %w", err)
	}
	if n > 0 {
		slog.Info("promo code data already exists, skipping seed")
		return nil
	}

	maxWelcome, maxFirst := 50.0, 100.0
	promos := []model.PromoCode{
		{
			Code: "WELCOME", Description: "10% off on your first order",
			DiscountType: model.DiscountTypePercentage, DiscountValue: 10,
			MinimumOrderValue: 100, MaximumDiscount: &maxWelcome, UsageLimit: 1000,
			ValidUntil: now.Add(30 * day),
		},
		{
			Code: "SAVE50", Description: "50 ETB off on orders above 300 ETB",
			DiscountType: model.DiscountTypeFixed, DiscountValue: 50,
			MinimumOrderValue: 300, UsageLimit: 500,
			ValidUntil: now.Add(15 * day),
		},
		{
			Code: "FIRST20", Description: "20% off for new customers",
			DiscountType: model.DiscountTypePercentage, DiscountValue: 20,
			MinimumOrderValue: 150, MaximumDiscount: &maxFirst, UsageLimit: 200,
			ValidUntil: now.Add(45 * day),
		},
	}

	for _, p := range promos {
		p.ID = id.NewPromo()
		p.ValidFrom = now
		p.IsActive = true
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := s.CreatePromoCode(ctx, &p); err != nil {
			return fmt.Errorf("seed promo code %s: %w", p.Code, err)
		}
	}
	slog.Info("sample promo code data seeded")
	return nil
}

func sampleFoods() []model.Food {
	return []model.Food{
		{
			Name: "Margherita Pizza", Description: "Classic pizza with fresh mozzarella, tomato sauce, and basil",
			Price: 250, DeliveryTime: "25-30 mins", Quantity: 50, Category: "pizza", Restaurant: "Spice and Sizzle",
			ImageURL:        "https://images.unsplash.com/photo-1574071318508-1cdbab80d002?w=500",
			Ingredients:     []string{"Mozzarella", "Tomato Sauce", "Basil", "Olive Oil"},
			NutritionalInfo: &model.NutritionalInfo{Calories: 285, Protein: 12, Carbs: 36, Fat: 10},
			SpiceLevel:      "Mild", IsVegetarian: true,
		},
		{
			Name: "Chicken Burger Deluxe", Description: "Grilled chicken breast with lettuce, tomato, cheese, and special sauce",
			Price: 180, DeliveryTime: "20-25 mins", Quantity: 30, Category: "burger", Restaurant: "Burger Palace",
			ImageURL:        "https://images.unsplash.com/photo-1568901346375-23c9450c58cd?w=500",
			Ingredients:     []string{"Chicken Breast", "Lettuce", "Tomato", "Cheese", "Special Sauce", "Bun"},
			NutritionalInfo: &model.NutritionalInfo{Calories: 520, Protein: 35, Carbs: 42, Fat: 22},
			SpiceLevel:      "Medium",
		},
		{
			Name: "Pasta Carbonara", Description: "Creamy pasta with bacon, eggs, parmesan cheese, and black pepper",
			Price: 220, DeliveryTime: "15-20 mins", Quantity: 25, Category: "pasta", Restaurant: "Italian Corner",
			ImageURL:        "https://images.unsplash.com/photo-1621996346565-e3dbc353d2e5?w=500",
			Ingredients:     []string{"Pasta", "Bacon", "Eggs", "Parmesan", "Black Pepper", "Cream"},
			NutritionalInfo: &model.NutritionalInfo{Calories: 580, Protein: 28, Carbs: 55, Fat: 28},
			SpiceLevel:      "Mild",
		},
		{
			Name: "Caesar Salad", Description: "Fresh romaine lettuce with caesar dressing, croutons, and parmesan",
			Price: 120, DeliveryTime: "10-15 mins", Quantity: 40, Category: "salad", Restaurant: "Green Garden",
			ImageURL:        "https://images.unsplash.com/photo-1546793665-c74683f339c1?w=500",
			Ingredients:     []string{"Romaine Lettuce", "Caesar Dressing", "Croutons", "Parmesan"},
			NutritionalInfo: &model.NutritionalInfo{Calories: 185, Protein: 8, Carbs: 12, Fat: 12},
			SpiceLevel:      "Mild", IsVegetarian: true,
		},
		{
			Name: "Spicy Chicken Wings", Description: "Hot and spicy chicken wings with blue cheese dip",
			Price: 200, DeliveryTime: "25-30 mins", Quantity: 35, Category: "appetizer", Restaurant: "Wing Stop",
			ImageURL:        "https://images.unsplash.com/photo-1527477396-31ff8b3806d7?w=500",
			Ingredients:     []string{"Chicken Wings", "Hot Sauce", "Blue Cheese", "Celery"},
			NutritionalInfo: &model.NutritionalInfo{Calories: 430, Protein: 32, Carbs: 5, Fat: 31},
			SpiceLevel:      "Hot", IsGlutenFree: true,
		},
		{
			Name: "Chocolate Brownie", Description: "Rich chocolate brownie with vanilla ice cream",
			Price: 80, DeliveryTime: "10-15 mins", Quantity: 20, Category: "dessert", Restaurant: "Sweet Treats",
			ImageURL:        "https://images.unsplash.com/photo-1606313564200-e75d5e30476c?w=500",
			Ingredients:     []string{"Chocolate", "Butter", "Sugar", "Eggs", "Flour", "Vanilla Ice Cream"},
			NutritionalInfo: &model.NutritionalInfo{Calories: 385, Protein: 6, Carbs: 52, Fat: 18},
			SpiceLevel:      "Mild", IsVegetarian: true,
		},
		{
			Name: "Fresh Orange Juice", Description: "Freshly squeezed orange juice",
			Price: 45, DeliveryTime: "5-10 mins", Quantity: 50, Category: "beverage", Restaurant: "Juice Bar",
			ImageURL:        "https://images.unsplash.com/photo-1613478223719-2ab802602423?w=500",
			Ingredients:     []string{"Fresh Oranges"},
			NutritionalInfo: &model.NutritionalInfo{Calories: 110, Protein: 2, Carbs: 26, Fat: 0},
			SpiceLevel:      "Mild", IsVegetarian: true, IsVegan: true, IsGlutenFree: true,
		},
		{
			Name: "Vegetable Soup", Description: "Healthy mixed vegetable soup with herbs",
			Price: 90, DeliveryTime: "15-20 mins", Quantity: 30, Category: "soup", Restaurant: "Healthy Bowls",
			ImageURL:        "https://images.unsplash.com/photo-1547592166-23ac45744acd?w=500",
			Ingredients:     []string{"Mixed Vegetables", "Vegetable Broth", "Herbs", "Spices"},
			NutritionalInfo: &model.NutritionalInfo{Calories: 85, Protein: 3, Carbs: 17, Fat: 1},
			SpiceLevel:      "Mild", IsVegetarian: true, IsVegan: true, IsGlutenFree: true,
		},
	}
}
