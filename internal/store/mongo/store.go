package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"foodorder/internal/model"
	"foodorder/internal/store"
)

const (
	colFoods  = "foods"
	colPromos = "promocodes"
	colOrders = "orders"
	colUsers  = "users"
)

var _ store.Store = (*Store)(nil)

// Store implements store.Store on MongoDB. Transactions need a replica set
// and are only used when enabled.
type Store struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
}

func Connect(ctx context.Context, uri, database string, transactions bool) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	s := &Store{client: client, db: client.Database(database), transactions: transactions}
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Migrate creates the indexes the queries rely on.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colFoods: {
			{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "restaurant", Value: 1}}},
			{Keys: bson.D{{Key: "price", Value: 1}}},
			{Keys: bson.D{{Key: "availability", Value: 1}}},
		},
		colPromos: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "validFrom", Value: 1}, {Key: "validUntil", Value: 1}}},
			{Keys: bson.D{{Key: "isActive", Value: 1}}},
		},
		colOrders: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for col, models := range indexes {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo: ping: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactions {
		return fn(ctx)
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo: start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// Food

func foodQuery(f model.FoodFilter) bson.M {
	q := bson.M{"availability": true}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Restaurant != "" {
		q["restaurant"] = f.Restaurant
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		q["price"] = price
	}
	if f.Vegetarian {
		q["isVegetarian"] = true
	}
	if f.Vegan {
		q["isVegan"] = true
	}
	if f.GlutenFree {
		q["isGlutenFree"] = true
	}
	if f.SpiceLevel != "" {
		q["spiceLevel"] = f.SpiceLevel
	}
	if f.Search != "" {
		q["$text"] = bson.M{"$search": f.Search}
	}
	return q
}

var foodSortFields = map[string]string{
	"createdAt": "createdAt",
	"price":     "price",
	"name":      "name",
}

// foodSort maps the requested sort onto a known field, falling back to
// createdAt for anything else.
func foodSort(f model.FoodFilter) bson.D {
	field, ok := foodSortFields[f.SortBy]
	if !ok {
		field = "createdAt"
	}
	dir := -1
	if f.SortAsc {
		dir = 1
	}
	return bson.D{{Key: field, Value: dir}}
}

func (s *Store) ListFoods(ctx context.Context, f model.FoodFilter) ([]model.Food, int64, error) {
	q := foodQuery(f)

	opts := options.Find().
		SetSort(foodSort(f)).
		SetSkip(int64(f.Skip())).
		SetLimit(int64(f.Limit))

	foods := make([]model.Food, 0)
	cursor, err := s.db.Collection(colFoods).Find(ctx, q, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("mongo: list foods: %w", err)
	}
	if err := cursor.All(ctx, &foods); err != nil {
		return nil, 0, fmt.Errorf("mongo: decode foods: %w", err)
	}

	total, err := s.db.Collection(colFoods).CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("mongo: count foods: %w", err)
	}
	return foods, total, nil
}

func (s *Store) SearchFoods(ctx context.Context, query string, limit int) ([]model.Food, error) {
	q := bson.M{"$text": bson.M{"$search": query}, "availability": true}

	foods := make([]model.Food, 0)
	cursor, err := s.db.Collection(colFoods).Find(ctx, q, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("mongo: search foods: %w", err)
	}
	if err := cursor.All(ctx, &foods); err != nil {
		return nil, fmt.Errorf("mongo: decode foods: %w", err)
	}
	return foods, nil
}

func (s *Store) FoodCategories(ctx context.Context) ([]string, error) {
	categories := make([]string, 0)
	if err := s.db.Collection(colFoods).Distinct(ctx, "category", bson.M{}).Decode(&categories); err != nil {
		return nil, fmt.Errorf("mongo: food categories: %w", err)
	}
	return categories, nil
}

func (s *Store) GetFood(ctx context.Context, foodID string) (*model.Food, error) {
	var f model.Food
	err := s.db.Collection(colFoods).FindOne(ctx, bson.M{"_id": foodID}).Decode(&f)
	if err != nil {
		if isNoDocuments(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: get food: %w", err)
	}
	return &f, nil
}

func (s *Store) CreateFood(ctx context.Context, f *model.Food) error {
	if _, err := s.db.Collection(colFoods).InsertOne(ctx, f); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("mongo: create food: %w", err)
	}
	return nil
}

func (s *Store) UpdateFood(ctx context.Context, f *model.Food) error {
	res, err := s.db.Collection(colFoods).ReplaceOne(ctx, bson.M{"_id": f.ID}, f)
	if err != nil {
		return fmt.Errorf("mongo: update food: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteFood(ctx context.Context, foodID string) error {
	res, err := s.db.Collection(colFoods).DeleteOne(ctx, bson.M{"_id": foodID})
	if err != nil {
		return fmt.Errorf("mongo: delete food: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CountFoods(ctx context.Context) (int64, error) {
	n, err := s.db.Collection(colFoods).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("mongo: count foods: %w", err)
	}
	return n, nil
}

// Promo codes

// redeemable matches codes that can be applied at now. usedCount is
// compared field to field, which needs $expr.
func redeemable(now time.Time) bson.M {
	return bson.M{
		"isActive":   true,
		"validFrom":  bson.M{"$lte": now},
		"validUntil": bson.M{"$gte": now},
		"$expr":      bson.M{"$lt": bson.A{"$usedCount", "$usageLimit"}},
	}
}

func (s *Store) FindRedeemable(ctx context.Context, code string, now time.Time) (*model.PromoCode, error) {
	q := redeemable(now)
	q["code"] = code

	var p model.PromoCode
	if err := s.db.Collection(colPromos).FindOne(ctx, q).Decode(&p); err != nil {
		if isNoDocuments(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: find promo code: %w", err)
	}
	return &p, nil
}

func (s *Store) ListRedeemable(ctx context.Context, now time.Time) ([]model.PromoCode, error) {
	promos := make([]model.PromoCode, 0)
	cursor, err := s.db.Collection(colPromos).Find(ctx, redeemable(now),
		options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo: list promo codes: %w", err)
	}
	if err := cursor.All(ctx, &promos); err != nil {
		return nil, fmt.Errorf("mongo: decode promo codes: %w", err)
	}
	return promos, nil
}

func (s *Store) Redeem(ctx context.Context, code string, now time.Time) error {
	q := redeemable(now)
	q["code"] = code

	res, err := s.db.Collection(colPromos).UpdateOne(ctx, q, bson.M{
		"$inc": bson.M{"usedCount": 1},
		"$set": bson.M{"updatedAt": now},
	})
	if err != nil {
		return fmt.Errorf("mongo: redeem promo code: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) GetPromoCode(ctx context.Context, code string) (*model.PromoCode, error) {
	var p model.PromoCode
	if err := s.db.Collection(colPromos).FindOne(ctx, bson.M{"code": code}).Decode(&p); err != nil {
		if isNoDocuments(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: get promo code: %w", err)
	}
	return &p, nil
}

func (s *Store) CreatePromoCode(ctx context.Context, p *model.PromoCode) error {
	if _, err := s.db.Collection(colPromos).InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("mongo: create promo code: %w", err)
	}
	return nil
}

func (s *Store) CountPromoCodes(ctx context.Context) (int64, error) {
	n, err := s.db.Collection(colPromos).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("mongo: count promo codes: %w", err)
	}
	return n, nil
}

func (s *Store) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.Collection(colPromos).UpdateMany(ctx, bson.M{
		"isActive": true,
		"$or": bson.A{
			bson.M{"validUntil": bson.M{"$lt": now}},
			bson.M{"$expr": bson.M{"$gte": bson.A{"$usedCount", "$usageLimit"}}},
		},
	}, bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}})
	if err != nil {
		return 0, fmt.Errorf("mongo: deactivate promo codes: %w", err)
	}
	return res.ModifiedCount, nil
}

// Orders

func (s *Store) CreateOrder(ctx context.Context, o *model.Order) error {
	if _, err := s.db.Collection(colOrders).InsertOne(ctx, o); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("mongo: create order: %w", err)
	}
	return nil
}

func (s *Store) findOrder(ctx context.Context, q bson.M) (*model.Order, error) {
	var o model.Order
	if err := s.db.Collection(colOrders).FindOne(ctx, q).Decode(&o); err != nil {
		if isNoDocuments(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: get order: %w", err)
	}
	return &o, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return s.findOrder(ctx, bson.M{"_id": orderID})
}

func (s *Store) GetUserOrder(ctx context.Context, userID, orderID string) (*model.Order, error) {
	return s.findOrder(ctx, bson.M{"_id": orderID, "userId": userID})
}

func (s *Store) ListOrders(ctx context.Context, f model.OrderFilter) ([]model.Order, int64, error) {
	q := bson.M{"userId": f.UserID}
	if f.Status != "" {
		q["status"] = f.Status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(f.Skip())).
		SetLimit(int64(f.Limit))

	orders := make([]model.Order, 0)
	cursor, err := s.db.Collection(colOrders).Find(ctx, q, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("mongo: list orders: %w", err)
	}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("mongo: decode orders: %w", err)
	}

	total, err := s.db.Collection(colOrders).CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("mongo: count orders: %w", err)
	}
	return orders, total, nil
}

func (s *Store) updateOrder(ctx context.Context, q, update bson.M) (*model.Order, error) {
	var o model.Order
	err := s.db.Collection(colOrders).
		FindOneAndUpdate(ctx, q, update, options.FindOneAndUpdate().SetReturnDocument(options.After)).
		Decode(&o)
	if err != nil {
		if isNoDocuments(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: update order: %w", err)
	}
	return &o, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, u store.StatusUpdate) (*model.Order, error) {
	q := bson.M{"_id": u.OrderID}
	if u.UserID != "" {
		q["userId"] = u.UserID
	}
	if len(u.From) > 0 {
		q["status"] = bson.M{"$in": u.From}
	}

	set := bson.M{"status": u.Status, "updatedAt": u.At}
	if u.ActualDeliveryTime != nil {
		set["actualDeliveryTime"] = *u.ActualDeliveryTime
	}
	return s.updateOrder(ctx, q, bson.M{"$set": set})
}

func (s *Store) RateOrder(ctx context.Context, userID, orderID string, r model.Rating, at time.Time) (*model.Order, error) {
	q := bson.M{"_id": orderID, "userId": userID, "status": model.OrderStatusDelivered}
	return s.updateOrder(ctx, q, bson.M{"$set": bson.M{"rating": r, "updatedAt": at}})
}

// Users

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if _, err := s.db.Collection(colUsers).InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("mongo: create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.db.Collection(colUsers).FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if isNoDocuments(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: get user: %w", err)
	}
	return &u, nil
}
