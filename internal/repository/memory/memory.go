// Package memory holds in-process implementations of the repositories. They
// back the service and controller tests and mirror the Mongo repositories'
// semantics, including ErrNotFound and the guarded writes.
package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"literacy_backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrDuplicateKey = errors.New("duplicate key")

// clone round-trips v through BSON so callers never share slices with the store
// and values look exactly as they would after a database read.
func clone[T any](v *T) *T {
	b, err := bson.Marshal(v)
	if err != nil {
		panic(err)
	}
	out := new(T)
	if err := bson.Unmarshal(b, out); err != nil {
		panic(err)
	}
	return out
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// newestFirst orders by creation time, then by id, descending.
func newestFirst[T any](items []T, created func(T) time.Time, id func(T) primitive.ObjectID) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]).Hex() > id(items[j]).Hex()
	})
}

// TxRunner runs the function directly and reports that it is not atomic, which
// makes services take their compensation paths.
type TxRunner struct{}

func (t *TxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (t *TxRunner) Atomic() bool {
	return false
}

var _ repository.TxRunner = (*TxRunner)(nil)
