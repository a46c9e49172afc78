package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository"
	"vehicle-rental-backend/internal/storage"
)

const UserKey = "user"

type userRepository struct {
	store storage.BlobStore
}

func NewUserRepository(store storage.BlobStore) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) GetCurrent(ctx context.Context) (*domain.User, error) {
	data, err := r.store.Load(ctx, UserKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrCorrupt, err)
	}
	return &user, nil
}

func (r *userRepository) SaveCurrent(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return r.store.Save(ctx, UserKey, data)
}

func (r *userRepository) DeleteCurrent(ctx context.Context) error {
	return r.store.Delete(ctx, UserKey)
}
