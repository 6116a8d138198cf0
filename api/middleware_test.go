package api_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/kestrelapps/taskdeck-api/api"
	"github.com/kestrelapps/taskdeck-api/databases/mocks"
	"github.com/kestrelapps/taskdeck-api/models"
)

func userWithPassword(t *testing.T, email, password string) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return models.User{
		ID: "mocked-user",
		Details: models.UserDetails{
			Email:    email,
			Password: string(hash),
		},
	}
}

func TestMiddlewareDB_ValidateUser(t *testing.T) {
	db := &mocks.UserDatabase{}
	db.On("Find", context.Background(), bson.M{"user.email": "user@taskdeck.app"}).
		Return([]models.User{userWithPassword(t, "user@taskdeck.app", "hunter2")}, nil)

	m := api.MiddlewareDB{DB: db}
	info, err := m.ValidateUser(context.Background(), nil, "user@taskdeck.app", "hunter2")

	assert.NoError(t, err)
	assert.Equal(t, "user@taskdeck.app", info.UserName())
}

func TestMiddlewareDB_ValidateUserWrongPassword(t *testing.T) {
	db := &mocks.UserDatabase{}
	db.On("Find", context.Background(), bson.M{"user.email": "user@taskdeck.app"}).
		Return([]models.User{userWithPassword(t, "user@taskdeck.app", "hunter2")}, nil)

	m := api.MiddlewareDB{DB: db}
	info, err := m.ValidateUser(context.Background(), nil, "user@taskdeck.app", "not-hunter2")

	assert.Nil(t, info)
	assert.EqualError(t, err, "failed to compare password")
}

func TestMiddlewareDB_ValidateUserUnknownEmail(t *testing.T) {
	db := &mocks.UserDatabase{}
	db.On("Find", context.Background(), bson.M{"user.email": "nobody@taskdeck.app"}).
		Return([]models.User{}, nil)

	m := api.MiddlewareDB{DB: db}
	info, err := m.ValidateUser(context.Background(), nil, "nobody@taskdeck.app", "hunter2")

	assert.Nil(t, info)
	assert.EqualError(t, err, "no matching email found")
}

func TestMiddlewareDB_ValidateUserLookupError(t *testing.T) {
	db := &mocks.UserDatabase{}
	db.On("Find", context.Background(), bson.M{"user.email": "user@taskdeck.app"}).
		Return(nil, errors.New("mocked-error"))

	m := api.MiddlewareDB{DB: db}
	info, err := m.ValidateUser(context.Background(), nil, "user@taskdeck.app", "hunter2")

	assert.Nil(t, info)
	assert.EqualError(t, err, "failed to get user by email")
}
