package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Group holds the structure for the groups collection in mongo
type Group struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	OwnerID   string             `json:"ownerId" bson:"ownerId"`
	MemberIDs []string           `json:"memberIds" bson:"memberIds"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
