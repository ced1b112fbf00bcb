package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/domain"
)

const (
	subscriptionCollection = "push_subscriptions"
	templateCollection     = "notification_templates"
)

// MongoRegistry implements SubscriptionStore and TemplateStore on MongoDB.
//
// The backing store may be absent at startup. Instead of an implicit
// nil-handle check, an explicit degraded flag is set once by Connect and
// consulted before every operation: reads return empty results and writes
// become no-ops, matching the degrade-don't-crash contract.
type MongoRegistry struct {
	db       *mongo.Database
	degraded bool
	logger   *zap.Logger
}

func NewMongoRegistry(logger *zap.Logger) *MongoRegistry {
	return &MongoRegistry{degraded: true, logger: logger}
}

// Connect attempts the single startup connection. On failure the registry
// stays degraded for the process lifetime and the error is advisory only.
func (r *MongoRegistry) Connect(ctx context.Context, url, database string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(url).SetConnectTimeout(timeout))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping mongo: %w", err)
	}

	r.db = client.Database(database)
	r.degraded = false
	return nil
}

// Degraded reports whether the registry is running without a backing store.
func (r *MongoRegistry) Degraded() bool {
	return r.degraded
}

func (r *MongoRegistry) Get(ctx context.Context, userID string) ([]domain.Subscription, error) {
	if r.degraded {
		return []domain.Subscription{}, nil
	}

	cur, err := r.db.Collection(subscriptionCollection).Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		// A runtime store error degrades this lookup to an empty result so a
		// push still succeeds with zero deliveries.
		r.logger.Warn("subscription lookup failed", zap.String("user_id", userID), zap.Error(err))
		return []domain.Subscription{}, nil
	}
	defer cur.Close(ctx)

	var subs []domain.Subscription
	if err := cur.All(ctx, &subs); err != nil {
		r.logger.Warn("subscription decode failed", zap.String("user_id", userID), zap.Error(err))
		return []domain.Subscription{}, nil
	}
	return subs, nil
}

func (r *MongoRegistry) Put(ctx context.Context, userID string, sub domain.Subscription) (string, error) {
	if r.degraded {
		return "", nil
	}

	sub.ID = uuid.New().String()
	sub.UserID = userID
	sub.CreatedAt = time.Now().UTC()

	// Last-write-wins on endpoint identity: replace the existing document for
	// this endpoint or insert a fresh one.
	_, err := r.db.Collection(subscriptionCollection).ReplaceOne(
		ctx,
		bson.M{"endpoint": sub.Endpoint},
		sub,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return "", fmt.Errorf("save subscription: %w", err)
	}
	return sub.ID, nil
}

func (r *MongoRegistry) Delete(ctx context.Context, endpoint string) error {
	if r.degraded {
		return nil
	}

	if _, err := r.db.Collection(subscriptionCollection).DeleteOne(ctx, bson.M{"endpoint": endpoint}); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

func (r *MongoRegistry) List(ctx context.Context, userID string) ([]domain.Template, error) {
	if r.degraded {
		return []domain.Template{}, nil
	}

	cur, err := r.db.Collection(templateCollection).Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		r.logger.Warn("template lookup failed", zap.String("user_id", userID), zap.Error(err))
		return []domain.Template{}, nil
	}
	defer cur.Close(ctx)

	var tpls []domain.Template
	if err := cur.All(ctx, &tpls); err != nil {
		r.logger.Warn("template decode failed", zap.String("user_id", userID), zap.Error(err))
		return []domain.Template{}, nil
	}
	return tpls, nil
}

func (r *MongoRegistry) Save(ctx context.Context, userID string, tpl domain.Template) (string, error) {
	if r.degraded {
		return "", nil
	}

	now := time.Now().UTC()
	tpl.ID = uuid.New().String()
	tpl.UserID = userID
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	if _, err := r.db.Collection(templateCollection).InsertOne(ctx, tpl); err != nil {
		return "", fmt.Errorf("save template: %w", err)
	}
	return tpl.ID, nil
}

// compile-time checks
var (
	_ SubscriptionStore = (*MongoRegistry)(nil)
	_ TemplateStore     = (*MongoRegistry)(nil)
)
