package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DeviceToken holds the structure for the devicetokens collection in mongo.
// A token is never hard-deleted; aging and unregistration flip Active instead
// so the registration history stays around for debugging.
type DeviceToken struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Token      string             `json:"token" bson:"token"` // provider push token (e.g., "ExponentPushToken[xxx]")
	OwnerID    string             `json:"ownerId" bson:"ownerId"`
	Platform   string             `json:"platform" bson:"platform"` // "ios", "android" or "web"
	DeviceID   string             `json:"deviceId" bson:"deviceId"` // stable per-install identifier
	Active     bool               `json:"active" bson:"active"`
	LastUsedAt primitive.DateTime `json:"lastUsedAt" bson:"lastUsedAt"`
	CreatedAt  primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt  primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// IsStale reports whether the token has gone unused for longer than the
// retention window. A token last used exactly at the cutoff is not yet stale.
// The sweep applies this same strict-cutoff predicate as a $lt filter in one
// UpdateMany rather than scanning rows; IsStale is the reference form for
// callers holding a record in memory.
func (d DeviceToken) IsStale(now time.Time, window time.Duration) bool {
	return d.LastUsedAt.Time().Before(now.Add(-window))
}

// ValidPlatform reports whether the given platform string is one we register
func ValidPlatform(platform string) bool {
	switch platform {
	case "ios", "android", "web":
		return true
	}
	return false
}
