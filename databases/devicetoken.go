package databases

// go generate: mockery --name DeviceTokenDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kestrelapps/taskdeck-api/models"
)

const deviceTokenCollectionName = "devicetokens"

// DeviceTokenDatabase contains the methods to use with the device token database
type DeviceTokenDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.DeviceToken, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.DeviceToken, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type deviceTokenDatabase struct {
	db DatabaseHelper
}

// NewDeviceTokenDatabase initializes a new instance of device token database with the provided db connection
func NewDeviceTokenDatabase(db DatabaseHelper) DeviceTokenDatabase {
	return &deviceTokenDatabase{
		db: db,
	}
}

func (d *deviceTokenDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.DeviceToken, error) {
	token := &models.DeviceToken{}
	err := d.db.Collection(deviceTokenCollectionName).FindOne(ctx, filter, opts...).Decode(token)
	if err != nil {
		return nil, err
	}
	return token, nil
}

func (d *deviceTokenDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	cur := d.db.Collection(deviceTokenCollectionName).Find(ctx, filter, opts...)
	err := cur.Decode(&tokens)
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (d *deviceTokenDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return d.db.Collection(deviceTokenCollectionName).UpdateOne(ctx, filter, update, opts...)
}

func (d *deviceTokenDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return d.db.Collection(deviceTokenCollectionName).UpdateMany(ctx, filter, update, opts...)
}

func (d *deviceTokenDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return d.db.Collection(deviceTokenCollectionName).CountDocuments(ctx, filter, opts...)
}

// EnsureIndexes creates the unique index on the token value. Upserts keyed by
// token rely on this to guarantee a duplicate registration never creates a
// second row.
func (d *deviceTokenDatabase) EnsureIndexes(ctx context.Context) error {
	unique := true
	return d.db.Collection(deviceTokenCollectionName).EnsureIndex(ctx,
		bson.D{{Key: "token", Value: 1}},
		&options.IndexOptions{Unique: &unique},
	)
}
