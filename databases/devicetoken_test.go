package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kestrelapps/taskdeck-api/config"
	"github.com/kestrelapps/taskdeck-api/databases"
	"github.com/kestrelapps/taskdeck-api/databases/mocks"
	"github.com/kestrelapps/taskdeck-api/models"
)

func TestNewDeviceTokenDatabase(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := config.New()

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	tokenDB := databases.NewDeviceTokenDatabase(db)

	assert.NotEmpty(t, tokenDB)
}

func TestDeviceTokenDatabase_FindOne(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*models.DeviceToken)
		arg.Token = "mocked-token"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": false}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "devicetokens").Return(collectionHelper)

	// Create new database with mocked Database interface
	tokenDba := databases.NewDeviceTokenDatabase(dbHelper)

	// Call method with defined filter, that in our mocked function returns
	// mocked-error
	token, err := tokenDba.FindOne(context.Background(), bson.M{"error": true})

	assert.Empty(t, token)
	assert.EqualError(t, err, "mocked-error")

	// Now call the same function with different filter for correct result
	token, err = tokenDba.FindOne(context.Background(), bson.M{"error": false})

	assert.Equal(t, "mocked-token", token.Token)
	assert.NoError(t, err)
}

func TestDeviceTokenDatabase_Find(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var curHelperErr databases.CursorHelper
	var curHelperCorrect databases.CursorHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	curHelperErr = &mocks.CursorHelper{}
	curHelperCorrect = &mocks.CursorHelper{}

	curHelperErr.(*mocks.CursorHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	curHelperCorrect.(*mocks.CursorHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.DeviceToken)
		(*arg) = []models.DeviceToken{{Token: "mocked-token", Active: true}}
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": true}).
		Return(curHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": false}).
		Return(curHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "devicetokens").Return(collectionHelper)

	tokenDba := databases.NewDeviceTokenDatabase(dbHelper)

	tokens, err := tokenDba.Find(context.Background(), bson.M{"error": true})

	assert.Empty(t, tokens)
	assert.EqualError(t, err, "mocked-error")

	tokens, err = tokenDba.Find(context.Background(), bson.M{"error": false})

	assert.Equal(t, []models.DeviceToken{{Token: "mocked-token", Active: true}}, tokens)
	assert.NoError(t, err)
}

func TestDeviceTokenDatabase_CountDocuments(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("CountDocuments", context.Background(), bson.M{"active": true}).
		Return(int64(7), nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "devicetokens").Return(collectionHelper)

	tokenDba := databases.NewDeviceTokenDatabase(dbHelper)

	count, err := tokenDba.CountDocuments(context.Background(), bson.M{"active": true})

	assert.Equal(t, int64(7), count)
	assert.NoError(t, err)
}

func TestDeviceTokenDatabase_UpdateOne(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("UpdateOne", context.Background(), bson.M{"token": "abc"}, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "devicetokens").Return(collectionHelper)

	tokenDba := databases.NewDeviceTokenDatabase(dbHelper)

	res, err := tokenDba.UpdateOne(context.Background(), bson.M{"token": "abc"}, bson.M{"$set": bson.M{"active": false}})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), res.ModifiedCount)
}

func TestDeviceTokenDatabase_EnsureIndexes(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("EnsureIndex", context.Background(), mock.Anything, mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		keys := args.Get(1).(bson.D)
		assert.Equal(t, "token", keys[0].Key)
	})

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "devicetokens").Return(collectionHelper)

	tokenDba := databases.NewDeviceTokenDatabase(dbHelper)

	err := tokenDba.EnsureIndexes(context.Background())

	assert.NoError(t, err)
	collectionHelper.(*mocks.CollectionHelper).AssertExpectations(t)
}
