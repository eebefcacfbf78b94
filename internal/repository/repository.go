package repository

import (
	"context"
	"errors"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned by every repository when the addressed document is absent.
var ErrNotFound = errors.New("document not found")

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// StudentKeys carries every representation a student may be stored under.
type StudentKeys struct {
	ObjectID primitive.ObjectID
	IDNumber string
}

// LegacyValues lists the values a legacy studentId field may hold for the student.
func (k StudentKeys) LegacyValues() []interface{} {
	var vals []interface{}
	if !k.ObjectID.IsZero() {
		vals = append(vals, k.ObjectID, k.ObjectID.Hex())
	}
	if k.IDNumber != "" {
		vals = append(vals, k.IDNumber)
		if n, err := strconv.ParseInt(k.IDNumber, 10, 64); err == nil {
			vals = append(vals, n)
		}
	}
	return vals
}

func (k StudentKeys) filter() bson.M {
	or := bson.A{}
	if !k.ObjectID.IsZero() {
		or = append(or, bson.M{"studentObjectId": k.ObjectID})
	}
	if vals := k.LegacyValues(); len(vals) > 0 {
		or = append(or, bson.M{"studentId": bson.M{"$in": vals}})
	}
	if len(or) == 0 {
		// nothing to match on
		return bson.M{"_id": primitive.NilObjectID}
	}
	return bson.M{"$or": or}
}

// TxRunner runs fn so that all repository calls made with the passed context
// commit or abort together. Atomic reports whether that guarantee holds; when
// it does not, callers compensate by hand.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Atomic() bool
}

// MongoTxRunner uses client sessions. Transactions need a replica set, so the
// runner degrades to a plain call when disabled.
type MongoTxRunner struct {
	Client  *mongo.Client
	Enabled bool
}

func NewMongoTxRunner(client *mongo.Client, enabled bool) *MongoTxRunner {
	return &MongoTxRunner{Client: client, Enabled: enabled}
}

func (r *MongoTxRunner) Atomic() bool {
	return r.Enabled
}

func (r *MongoTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !r.Enabled {
		return fn(ctx)
	}
	session, err := r.Client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
