package memory

import (
	"context"
	"strings"
	"sync"

	"literacy_backend/internal/model"
	"literacy_backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]*model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: map[primitive.ObjectID]*model.User{}}
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) FindByIDNumber(ctx context.Context, idNumber string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.items {
		if u.IDNumber != "" && u.IDNumber == idNumber {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) FindByName(ctx context.Context, firstName, lastName string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.items {
		if strings.EqualFold(u.FirstName, firstName) && strings.EqualFold(u.LastName, lastName) {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.Touch(now())
	if _, ok := r.items[u.ID]; ok {
		return ErrDuplicateKey
	}
	r.items[u.ID] = clone(u)
	return nil
}
