package postgres

import (
	"context"
	"fmt"
	"strings"

	"foodorder/internal/model"
	"foodorder/internal/store"
)

const foodColumns = `id, name, description, price, availability, delivery_time, image_url, quantity,
	category, restaurant, ingredients, nutritional_info, spice_level, is_vegetarian, is_vegan,
	is_gluten_free, created_at, updated_at`

var foodSortColumns = map[string]string{
	"createdAt": "created_at",
	"price":     "price",
	"name":      "name",
}

func scanFood(row scanner) (*model.Food, error) {
	var f model.Food
	var ingredients, nutrition []byte
	err := row.Scan(&f.ID, &f.Name, &f.Description, &f.Price, &f.Availability, &f.DeliveryTime,
		&f.ImageURL, &f.Quantity, &f.Category, &f.Restaurant, &ingredients, &nutrition, &f.SpiceLevel,
		&f.IsVegetarian, &f.IsVegan, &f.IsGlutenFree, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := scanJSON(ingredients, &f.Ingredients); err != nil {
		return nil, fmt.Errorf("decode ingredients: %w", err)
	}
	if err := scanJSON(nutrition, &f.NutritionalInfo); err != nil {
		return nil, fmt.Errorf("decode nutritional info: %w", err)
	}
	return &f, nil
}

func (s *Store) queryFoods(ctx context.Context, query string, args ...any) ([]model.Food, error) {
	rows, err := s.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query foods: %w", err)
	}
	defer rows.Close()

	foods := make([]model.Food, 0)
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food: %w", err)
		}
		foods = append(foods, *f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return foods, nil
}

func foodWhere(f model.FoodFilter) (string, []any) {
	conds := []string{"availability = TRUE"}
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.Restaurant != "" {
		add("restaurant = $%d", f.Restaurant)
	}
	if f.MinPrice != nil {
		add("price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("price <= $%d", *f.MaxPrice)
	}
	if f.Vegetarian {
		conds = append(conds, "is_vegetarian = TRUE")
	}
	if f.Vegan {
		conds = append(conds, "is_vegan = TRUE")
	}
	if f.GlutenFree {
		conds = append(conds, "is_gluten_free = TRUE")
	}
	if f.SpiceLevel != "" {
		add("spice_level = $%d", f.SpiceLevel)
	}
	if f.Search != "" {
		add("to_tsvector('simple', name || ' ' || description) @@ plainto_tsquery('simple', $%d)", f.Search)
	}
	return strings.Join(conds, " AND "), args
}

func (s *Store) ListFoods(ctx context.Context, f model.FoodFilter) ([]model.Food, int64, error) {
	where, args := foodWhere(f)

	column, ok := foodSortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	dir := "DESC"
	if f.SortAsc {
		dir = "ASC"
	}

	query := fmt.Sprintf(`SELECT %s FROM foods WHERE %s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		foodColumns, where, column, dir, len(args)+1, len(args)+2)
	foods, err := s.queryFoods(ctx, query, append(args, f.Limit, f.Skip())...)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM foods WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count foods: %w", err)
	}
	return foods, total, nil
}

func (s *Store) SearchFoods(ctx context.Context, query string, limit int) ([]model.Food, error) {
	return s.queryFoods(ctx, `SELECT `+foodColumns+` FROM foods
		WHERE availability = TRUE
		  AND to_tsvector('simple', name || ' ' || description) @@ plainto_tsquery('simple', $1)
		ORDER BY name
		LIMIT $2`, query, limit)
}

func (s *Store) FoodCategories(ctx context.Context) ([]string, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT DISTINCT category FROM foods ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) GetFood(ctx context.Context, foodID string) (*model.Food, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = $1`, foodID)
	f, err := scanFood(row)
	if err != nil {
		if notFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get food: %w", err)
	}
	return f, nil
}

func foodArgs(f *model.Food) ([]any, error) {
	ingredients, err := jsonArg(f.Ingredients)
	if err != nil {
		return nil, err
	}
	nutrition, err := jsonArg(f.NutritionalInfo)
	if err != nil {
		return nil, err
	}
	return []any{f.ID, f.Name, f.Description, f.Price, f.Availability, f.DeliveryTime, f.ImageURL,
		f.Quantity, f.Category, f.Restaurant, ingredients, nutrition, f.SpiceLevel, f.IsVegetarian,
		f.IsVegan, f.IsGlutenFree, f.CreatedAt, f.UpdatedAt}, nil
}

func (s *Store) CreateFood(ctx context.Context, f *model.Food) error {
	args, err := foodArgs(f)
	if err != nil {
		return fmt.Errorf("encode food: %w", err)
	}

	_, err = s.q(ctx).ExecContext(ctx, `INSERT INTO foods (`+foodColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("insert food: %w", err)
	}
	return nil
}

func (s *Store) UpdateFood(ctx context.Context, f *model.Food) error {
	args, err := foodArgs(f)
	if err != nil {
		return fmt.Errorf("encode food: %w", err)
	}

	res, err := s.q(ctx).ExecContext(ctx, `UPDATE foods SET
		name = $2, description = $3, price = $4, availability = $5, delivery_time = $6, image_url = $7,
		quantity = $8, category = $9, restaurant = $10, ingredients = $11, nutritional_info = $12,
		spice_level = $13, is_vegetarian = $14, is_vegan = $15, is_gluten_free = $16,
		created_at = $17, updated_at = $18
		WHERE id = $1`, args...)
	if err != nil {
		return fmt.Errorf("update food: %w", err)
	}
	return affectedOne(res)
}

func (s *Store) DeleteFood(ctx context.Context, foodID string) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM foods WHERE id = $1`, foodID)
	if err != nil {
		return fmt.Errorf("delete food: %w", err)
	}
	return affectedOne(res)
}

func (s *Store) CountFoods(ctx context.Context) (int64, error) {
	var n int64
	if err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM foods`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count foods: %w", err)
	}
	return n, nil
}
