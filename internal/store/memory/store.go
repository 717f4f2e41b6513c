package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"foodorder/internal/model"
	"foodorder/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	foods  map[string]model.Food
	promos map[string]model.PromoCode // keyed by code
	orders map[string]model.Order
	users  map[string]model.User // keyed by email
}

func New() *Store {
	return &Store{
		foods:  make(map[string]model.Food),
		promos: make(map[string]model.PromoCode),
		orders: make(map[string]model.Order),
		users:  make(map[string]model.User),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close(context.Context) error { return nil }

type txKey struct{}

// undoLog collects compensating writes for one transaction. Entries run in
// reverse order with s.mu held.
type undoLog struct {
	ops []func()
}

// record registers undo for a write made through ctx. It must be called with
// s.mu held. Writes outside a transaction are not recorded.
func record(ctx context.Context, undo func()) {
	if l, ok := ctx.Value(txKey{}).(*undoLog); ok {
		l.ops = append(l.ops, undo)
	}
}

// WithinTx serializes transactions and, if fn fails, reverts only the writes
// fn made. Writes committed outside the transaction in the meantime survive.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	log := &undoLog{}
	if err := fn(context.WithValue(ctx, txKey{}, log)); err != nil {
		s.mu.Lock()
		for i := len(log.ops) - 1; i >= 0; i-- {
			log.ops[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) restoreOrder(prev model.Order) func() {
	return func() { s.orders[prev.ID] = prev }
}

// Food

func (s *Store) ListFoods(_ context.Context, f model.FoodFilter) ([]model.Food, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Food, 0)
	for _, food := range s.foods {
		if matchFood(&food, f) {
			result = append(result, food)
		}
	}
	sortFoods(result, f.SortBy, f.SortAsc)

	total := int64(len(result))
	return paginate(result, f.Skip(), f.Limit), total, nil
}

func matchFood(food *model.Food, f model.FoodFilter) bool {
	if !food.Availability {
		return false
	}
	if f.Category != "" && food.Category != f.Category {
		return false
	}
	if f.Restaurant != "" && food.Restaurant != f.Restaurant {
		return false
	}
	if f.MinPrice != nil && food.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && food.Price > *f.MaxPrice {
		return false
	}
	if f.Vegetarian && !food.IsVegetarian {
		return false
	}
	if f.Vegan && !food.IsVegan {
		return false
	}
	if f.GlutenFree && !food.IsGlutenFree {
		return false
	}
	if f.SpiceLevel != "" && food.SpiceLevel != f.SpiceLevel {
		return false
	}
	if f.Search != "" && !textMatch(food, f.Search) {
		return false
	}
	return true
}

// textMatch approximates the document store's text index over name and
// description: any query word may match.
func textMatch(food *model.Food, q string) bool {
	for _, word := range strings.Fields(q) {
		if containsFold(food.Name, word) || containsFold(food.Description, word) {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func sortFoods(foods []model.Food, by string, asc bool) {
	less := func(a, b *model.Food) bool {
		switch by {
		case "price":
			return a.Price < b.Price
		case "name":
			return a.Name < b.Name
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(foods, func(i, j int) bool {
		if asc {
			return less(&foods[i], &foods[j])
		}
		return less(&foods[j], &foods[i])
	})
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip > len(items) {
		skip = len(items)
	}
	end := skip + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

func (s *Store) SearchFoods(_ context.Context, query string, limit int) ([]model.Food, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Food, 0)
	for _, food := range s.foods {
		if food.Availability && textMatch(&food, query) {
			result = append(result, food)
		}
	}
	sortFoods(result, "name", true)
	return paginate(result, 0, limit), nil
}

func (s *Store) FoodCategories(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, food := range s.foods {
		if !seen[food.Category] {
			seen[food.Category] = true
			categories = append(categories, food.Category)
		}
	}
	sort.Strings(categories)
	return categories, nil
}

func (s *Store) GetFood(_ context.Context, foodID string) (*model.Food, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	food, ok := s.foods[foodID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &food, nil
}

func (s *Store) CreateFood(_ context.Context, f *model.Food) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.foods[f.ID]; exists {
		return store.ErrDuplicate
	}
	s.foods[f.ID] = *f
	return nil
}

func (s *Store) UpdateFood(_ context.Context, f *model.Food) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.foods[f.ID]; !exists {
		return store.ErrNotFound
	}
	s.foods[f.ID] = *f
	return nil
}

func (s *Store) DeleteFood(_ context.Context, foodID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.foods[foodID]; !exists {
		return store.ErrNotFound
	}
	delete(s.foods, foodID)
	return nil
}

func (s *Store) CountFoods(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.foods)), nil
}

// Promo codes

func (s *Store) FindRedeemable(_ context.Context, code string, now time.Time) (*model.PromoCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.promos[code]
	if !ok || !p.RedeemableAt(now) {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListRedeemable(_ context.Context, now time.Time) ([]model.PromoCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.PromoCode, 0)
	for _, p := range s.promos {
		if p.RedeemableAt(now) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (s *Store) Redeem(ctx context.Context, code string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.promos[code]
	if !ok || !p.RedeemableAt(now) {
		return store.ErrNotFound
	}
	prevUpdatedAt := p.UpdatedAt
	p.UsedCount++
	p.UpdatedAt = now
	s.promos[code] = p
	record(ctx, func() {
		cur := s.promos[code]
		cur.UsedCount--
		cur.UpdatedAt = prevUpdatedAt
		s.promos[code] = cur
	})
	return nil
}

func (s *Store) GetPromoCode(_ context.Context, code string) (*model.PromoCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.promos[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) CreatePromoCode(ctx context.Context, p *model.PromoCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.promos[p.Code]; exists {
		return store.ErrDuplicate
	}
	s.promos[p.Code] = *p
	code := p.Code
	record(ctx, func() { delete(s.promos, code) })
	return nil
}

func (s *Store) CountPromoCodes(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.promos)), nil
}

func (s *Store) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for code, p := range s.promos {
		if p.IsActive && (p.ValidUntil.Before(now) || p.UsedCount >= p.UsageLimit) {
			prevUpdatedAt := p.UpdatedAt
			p.IsActive = false
			p.UpdatedAt = now
			s.promos[code] = p
			record(ctx, func() {
				cur := s.promos[code]
				cur.IsActive = true
				cur.UpdatedAt = prevUpdatedAt
				s.promos[code] = cur
			})
			n++
		}
	}
	return n, nil
}

// Orders

func (s *Store) CreateOrder(ctx context.Context, o *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[o.ID]; exists {
		return store.ErrDuplicate
	}
	s.orders[o.ID] = *o
	id := o.ID
	record(ctx, func() { delete(s.orders, id) })
	return nil
}

func (s *Store) GetOrder(_ context.Context, orderID string) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (s *Store) GetUserOrder(_ context.Context, userID, orderID string) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (s *Store) ListOrders(_ context.Context, f model.OrderFilter) ([]model.Order, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Order, 0)
	for _, o := range s.orders {
		if o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		result = append(result, o)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	total := int64(len(result))
	return paginate(result, f.Skip(), f.Limit), total, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, u store.StatusUpdate) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[u.OrderID]
	if !ok || !u.Matches(&o) {
		return nil, store.ErrNotFound
	}
	record(ctx, s.restoreOrder(o))
	o.Status = u.Status
	if u.ActualDeliveryTime != nil {
		t := *u.ActualDeliveryTime
		o.ActualDeliveryTime = &t
	}
	o.UpdatedAt = u.At
	s.orders[o.ID] = o
	return &o, nil
}

func (s *Store) RateOrder(ctx context.Context, userID, orderID string, r model.Rating, at time.Time) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok || o.UserID != userID || o.Status != model.OrderStatusDelivered {
		return nil, store.ErrNotFound
	}
	record(ctx, s.restoreOrder(o))
	o.Rating = &r
	o.UpdatedAt = at
	s.orders[o.ID] = o
	return &o, nil
}

// Users

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.Email]; exists {
		return store.ErrDuplicate
	}
	s.users[u.Email] = *u
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}
