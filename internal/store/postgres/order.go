package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"foodorder/internal/model"
	"foodorder/internal/store"
)

const orderColumns = `id, user_id, items, total_price, discount, delivery_fee, final_total, status,
	delivery_type, delivery_address, payment_method, payment_status, cutlery_count, promo_code,
	special_instructions, estimated_delivery_time, actual_delivery_time, rating, created_at, updated_at`

func scanOrder(row scanner) (*model.Order, error) {
	var o model.Order
	var items, address, rating []byte
	var delivered sql.NullTime
	err := row.Scan(&o.ID, &o.UserID, &items, &o.TotalPrice, &o.Discount, &o.DeliveryFee,
		&o.FinalTotal, &o.Status, &o.DeliveryType, &address, &o.PaymentMethod, &o.PaymentStatus,
		&o.CutleryCount, &o.PromoCode, &o.SpecialInstructions, &o.EstimatedDeliveryTime, &delivered,
		&rating, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if delivered.Valid {
		o.ActualDeliveryTime = &delivered.Time
	}
	if err := scanJSON(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if err := scanJSON(address, &o.DeliveryAddress); err != nil {
		return nil, fmt.Errorf("decode address: %w", err)
	}
	if err := scanJSON(rating, &o.Rating); err != nil {
		return nil, fmt.Errorf("decode rating: %w", err)
	}
	return &o, nil
}

func (s *Store) CreateOrder(ctx context.Context, o *model.Order) error {
	items, err := jsonArg(o.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	address, err := jsonArg(o.DeliveryAddress)
	if err != nil {
		return fmt.Errorf("encode address: %w", err)
	}
	rating, err := jsonArg(o.Rating)
	if err != nil {
		return fmt.Errorf("encode rating: %w", err)
	}

	_, err = s.q(ctx).ExecContext(ctx, `INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		o.ID, o.UserID, items, o.TotalPrice, o.Discount, o.DeliveryFee, o.FinalTotal, o.Status,
		o.DeliveryType, address, o.PaymentMethod, o.PaymentStatus, o.CutleryCount, o.PromoCode,
		o.SpecialInstructions, o.EstimatedDeliveryTime, o.ActualDeliveryTime, rating, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *Store) getOrder(ctx context.Context, query string, args ...any) (*model.Order, error) {
	o, err := scanOrder(s.q(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		if notFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return s.getOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
}

func (s *Store) GetUserOrder(ctx context.Context, userID, orderID string) (*model.Order, error) {
	return s.getOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, orderID, userID)
}

func (s *Store) ListOrders(ctx context.Context, f model.OrderFilter) ([]model.Order, int64, error) {
	where := "user_id = $1"
	args := []any{f.UserID}
	if f.Status != "" {
		where += " AND status = $2"
		args = append(args, f.Status)
	}

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2)
	rows, err := s.q(ctx).QueryContext(ctx, query, append(args, f.Limit, f.Skip())...)
	if err != nil {
		return nil, 0, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows iteration failed: %w", err)
	}

	var total int64
	if err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	return orders, total, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, u store.StatusUpdate) (*model.Order, error) {
	args := []any{u.OrderID, u.Status, u.At}
	set := "status = $2, updated_at = $3"
	if u.ActualDeliveryTime != nil {
		args = append(args, *u.ActualDeliveryTime)
		set += fmt.Sprintf(", actual_delivery_time = $%d", len(args))
	}

	where := "id = $1"
	if u.UserID != "" {
		args = append(args, u.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if len(u.From) > 0 {
		placeholders := make([]string, 0, len(u.From))
		for _, st := range u.From {
			args = append(args, st)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		where += " AND status IN (" + strings.Join(placeholders, ", ") + ")"
	}

	return s.getOrder(ctx, `UPDATE orders SET `+set+` WHERE `+where+` RETURNING `+orderColumns, args...)
}

func (s *Store) RateOrder(ctx context.Context, userID, orderID string, r model.Rating, at time.Time) (*model.Order, error) {
	rating, err := jsonArg(r)
	if err != nil {
		return nil, fmt.Errorf("encode rating: %w", err)
	}
	return s.getOrder(ctx, `UPDATE orders SET rating = $3, updated_at = $4
		WHERE id = $1 AND user_id = $2 AND status = 'delivered'
		RETURNING `+orderColumns, orderID, userID, rating, at)
}
