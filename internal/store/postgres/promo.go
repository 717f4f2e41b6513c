package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"foodorder/internal/model"
	"foodorder/internal/store"
)

const promoColumns = `id, code, description, discount_type, discount_value, minimum_order_value,
	maximum_discount, usage_limit, used_count, valid_from, valid_until, is_active,
	applicable_restaurants, created_at, updated_at`

const redeemableCond = `is_active AND valid_from <= $1 AND valid_until >= $1 AND used_count < usage_limit`

func scanPromo(row scanner) (*model.PromoCode, error) {
	var p model.PromoCode
	var maxDiscount sql.NullFloat64
	var restaurants []byte
	err := row.Scan(&p.ID, &p.Code, &p.Description, &p.DiscountType, &p.DiscountValue,
		&p.MinimumOrderValue, &maxDiscount, &p.UsageLimit, &p.UsedCount, &p.ValidFrom, &p.ValidUntil,
		&p.IsActive, &restaurants, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if maxDiscount.Valid {
		p.MaximumDiscount = &maxDiscount.Float64
	}
	if err := scanJSON(restaurants, &p.ApplicableRestaurants); err != nil {
		return nil, fmt.Errorf("decode restaurants: %w", err)
	}
	return &p, nil
}

func (s *Store) FindRedeemable(ctx context.Context, code string, now time.Time) (*model.PromoCode, error) {
	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT `+promoColumns+` FROM promo_codes WHERE code = $2 AND `+redeemableCond, now, code)
	p, err := scanPromo(row)
	if err != nil {
		if notFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find promo code: %w", err)
	}
	return p, nil
}

func (s *Store) ListRedeemable(ctx context.Context, now time.Time) ([]model.PromoCode, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT `+promoColumns+` FROM promo_codes WHERE `+redeemableCond+` ORDER BY code`, now)
	if err != nil {
		return nil, fmt.Errorf("query promo codes: %w", err)
	}
	defer rows.Close()

	promos := make([]model.PromoCode, 0)
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promo code: %w", err)
		}
		promos = append(promos, *p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return promos, nil
}

// Redeem is a single conditional UPDATE, so concurrent redemptions can
// never push used_count past usage_limit.
func (s *Store) Redeem(ctx context.Context, code string, now time.Time) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE promo_codes SET used_count = used_count + 1, updated_at = $1
		WHERE code = $2 AND `+redeemableCond, now, code)
	if err != nil {
		return fmt.Errorf("redeem promo code: %w", err)
	}
	return affectedOne(res)
}

func (s *Store) GetPromoCode(ctx context.Context, code string) (*model.PromoCode, error) {
	row := s.q(ctx).QueryRowContext(ctx, `SELECT `+promoColumns+` FROM promo_codes WHERE code = $1`, code)
	p, err := scanPromo(row)
	if err != nil {
		if notFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get promo code: %w", err)
	}
	return p, nil
}

func (s *Store) CreatePromoCode(ctx context.Context, p *model.PromoCode) error {
	restaurants, err := jsonArg(p.ApplicableRestaurants)
	if err != nil {
		return fmt.Errorf("encode restaurants: %w", err)
	}

	_, err = s.q(ctx).ExecContext(ctx, `INSERT INTO promo_codes (`+promoColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.Code, p.Description, p.DiscountType, p.DiscountValue, p.MinimumOrderValue,
		p.MaximumDiscount, p.UsageLimit, p.UsedCount, p.ValidFrom, p.ValidUntil, p.IsActive,
		restaurants, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("insert promo code: %w", err)
	}
	return nil
}

func (s *Store) CountPromoCodes(ctx context.Context) (int64, error) {
	var n int64
	if err := s.q(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM promo_codes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count promo codes: %w", err)
	}
	return n, nil
}

func (s *Store) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE promo_codes SET is_active = FALSE, updated_at = $1
		WHERE is_active AND (valid_until < $1 OR used_count >= usage_limit)`, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate promo codes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
