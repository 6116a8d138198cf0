package databases

// go generate: mockery --name UserDatabase

import (
	"context"

	"github.com/kestrelapps/taskdeck-api/models"
)

const userCollectionName = "users"

// UserDatabase contains the user lookups the auth middleware needs
type UserDatabase interface {
	Find(ctx context.Context, filter interface{}) ([]models.User, error)
}

type userDatabase struct {
	db DatabaseHelper
}

// NewUserDatabase initializes a new instance of user database with the provided db connection
func NewUserDatabase(db DatabaseHelper) UserDatabase {
	return &userDatabase{
		db: db,
	}
}

func (u *userDatabase) Find(ctx context.Context, filter interface{}) ([]models.User, error) {
	var users []models.User
	cur := u.db.Collection(userCollectionName).Find(ctx, filter)
	err := cur.Decode(&users)
	if err != nil {
		return nil, err
	}
	return users, nil
}
