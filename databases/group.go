package databases

// go generate: mockery --name GroupDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kestrelapps/taskdeck-api/models"
)

const groupCollectionName = "groups"

// GroupDatabase contains the read-only methods the push subsystem needs from
// the groups collection. Group CRUD itself lives with the rest of the app.
type GroupDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Group, error)
	MembersOf(ctx context.Context, groupID string) ([]string, error)
}

type groupDatabase struct {
	db DatabaseHelper
}

// NewGroupDatabase initializes a new instance of group database with the provided db connection
func NewGroupDatabase(db DatabaseHelper) GroupDatabase {
	return &groupDatabase{
		db: db,
	}
}

func (g *groupDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Group, error) {
	group := &models.Group{}
	err := g.db.Collection(groupCollectionName).FindOne(ctx, filter).Decode(group)
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (g *groupDatabase) MembersOf(ctx context.Context, groupID string) ([]string, error) {
	gID, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return nil, err
	}
	group, err := g.FindOne(ctx, bson.M{"_id": gID})
	if err != nil {
		return nil, err
	}
	return group.MemberIDs, nil
}
