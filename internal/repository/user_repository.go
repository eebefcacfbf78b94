package repository

import (
	"context"
	"regexp"
	"time"

	"literacy_backend/internal/model"
	"literacy_backend/pkg/database"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepository struct {
	Coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{Coll: db.Collection(database.UsersCollection)}
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var u model.User
	if err := r.Coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) FindByIDNumber(ctx context.Context, idNumber string) (*model.User, error) {
	var u model.User
	if err := r.Coll.FindOne(ctx, bson.M{"idNumber": idNumber}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// FindByName matches first and last name case-insensitively.
func (r *UserRepository) FindByName(ctx context.Context, firstName, lastName string) (*model.User, error) {
	filter := bson.M{
		"firstName": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(firstName) + "$", Options: "i"},
		"lastName":  primitive.Regex{Pattern: "^" + regexp.QuoteMeta(lastName) + "$", Options: "i"},
	}
	var u model.User
	if err := r.Coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	u.Touch(time.Now())
	_, err := r.Coll.InsertOne(ctx, u)
	return errors.Wrap(err, "insert user")
}
