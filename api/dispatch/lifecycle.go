// Package dispatch holds the push fan-out core: token lifecycle, provider
// chunking and per-owner orchestration.
package dispatch

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/kestrelapps/taskdeck-api/databases"
	"github.com/kestrelapps/taskdeck-api/models"
	"github.com/kestrelapps/taskdeck-api/pushgateway"
)

// ErrInvalidToken means the token failed the gateway's format validation and
// nothing was persisted. Retrying with the same token will not help.
var ErrInvalidToken = errors.New("push token failed gateway format validation")

// Lifecycle owns device token registration, deactivation and aging
type Lifecycle struct {
	DB      databases.DeviceTokenDatabase
	Gateway pushgateway.Gateway
}

// NewLifecycle creates a lifecycle manager over the given store and gateway
func NewLifecycle(db databases.DeviceTokenDatabase, gateway pushgateway.Gateway) *Lifecycle {
	return &Lifecycle{DB: db, Gateway: gateway}
}

// Register upserts a device token keyed by the token value. Re-registering an
// existing token overwrites owner, platform and device in place (a device
// handed to another account switches owners) and reactivates it. The stored
// record is read back so callers see the persisted timestamps.
func (l *Lifecycle) Register(ctx context.Context, ownerID, token, platform, deviceID string) (*models.DeviceToken, error) {
	if !l.Gateway.ValidToken(token) {
		return nil, ErrInvalidToken
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	update := bson.M{
		"$set": bson.M{
			"ownerId":    ownerID,
			"platform":   platform,
			"deviceId":   deviceID,
			"active":     true,
			"lastUsedAt": now,
			"updatedAt":  now,
		},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}
	upsert := true
	_, err := l.DB.UpdateOne(ctx, bson.M{"token": token}, update, &options.UpdateOptions{Upsert: &upsert})
	if mongo.IsDuplicateKeyError(err) {
		// two first-time registrations raced on the unique token index;
		// the row exists now, so the retry matches it and last write wins
		_, err = l.DB.UpdateOne(ctx, bson.M{"token": token}, update, &options.UpdateOptions{Upsert: &upsert})
	}
	if err != nil {
		return nil, err
	}

	return l.DB.FindOne(ctx, bson.M{"token": token})
}

// Unregister deactivates a token. Unknown tokens are a no-op success so
// clients can retry freely.
func (l *Lifecycle) Unregister(ctx context.Context, token string) error {
	now := primitive.NewDateTimeFromTime(time.Now())
	_, err := l.DB.UpdateOne(ctx, bson.M{"token": token}, bson.M{
		"$set": bson.M{"active": false, "updatedAt": now},
	})
	return err
}

// ExpireStale deactivates every active token whose lastUsedAt is strictly
// older than now minus the retention window, and returns how many were
// deactivated. Invoked by the scheduler; read paths never expire anything.
func (l *Lifecycle) ExpireStale(ctx context.Context, window time.Duration) (int64, error) {
	now := time.Now()
	cutoff := primitive.NewDateTimeFromTime(now.Add(-window))
	res, err := l.DB.UpdateMany(ctx, bson.M{
		"active":     true,
		"lastUsedAt": bson.M{"$lt": cutoff},
	}, bson.M{
		"$set": bson.M{"active": false, "updatedAt": primitive.NewDateTimeFromTime(now)},
	})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// TokensFor returns the owner's active tokens only
func (l *Lifecycle) TokensFor(ctx context.Context, ownerID string) ([]models.DeviceToken, error) {
	return l.DB.Find(ctx, bson.M{"ownerId": ownerID, "active": true})
}

// Touch bumps lastUsedAt for tokens that just took a successful delivery
func (l *Lifecycle) Touch(ctx context.Context, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	now := primitive.NewDateTimeFromTime(time.Now())
	_, err := l.DB.UpdateMany(ctx, bson.M{"token": bson.M{"$in": tokens}}, bson.M{
		"$set": bson.M{"lastUsedAt": now, "updatedAt": now},
	})
	if err != nil {
		zap.S().Errorw("failed to touch delivered tokens", "count", len(tokens), "error", err)
	}
}

// Deactivate flips tokens the gateway reported permanently gone. Local
// recovery only; callers never see this as a failure.
func (l *Lifecycle) Deactivate(ctx context.Context, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	now := primitive.NewDateTimeFromTime(time.Now())
	_, err := l.DB.UpdateMany(ctx, bson.M{"token": bson.M{"$in": tokens}}, bson.M{
		"$set": bson.M{"active": false, "updatedAt": now},
	})
	if err != nil {
		zap.S().Errorw("failed to deactivate dead tokens", "count", len(tokens), "error", err)
		return
	}
	zap.S().Infow("deactivated tokens reported gone by the gateway", "count", len(tokens))
}
