package repository

import (
	"context"
	"errors"
	"fmt"

	"go-ombor/internal/model"
	"go-ombor/pkg/kvstore"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrProtectedUser = errors.New("the admin account cannot be deleted")
)

// Seed administrator materialized the first time the users collection is read.
const (
	SeedAdminID       = "admin_1"
	SeedAdminPassword = "123"
	SeedAdminFullName = "Bosh Administrator"
)

type UserRepository interface {
	FindAll(ctx context.Context) ([]model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) ([]model.User, error)
	Save(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
}

type userRepo struct {
	users collection[model.User]
}

func NewUserRepo(store kvstore.Store) UserRepository {
	return &userRepo{users: collection[model.User]{store: store, key: UsersKey}}
}

// SeedAdmin builds the default administrator with every permission.
func SeedAdmin() (model.User, error) {
	admin := model.User{
		ID:          SeedAdminID,
		Username:    model.AdminUsername,
		FullName:    SeedAdminFullName,
		Permissions: model.FullPermissionSet(),
	}
	if err := admin.SetPassword(SeedAdminPassword); err != nil {
		return model.User{}, fmt.Errorf("hash seed admin password: %w", err)
	}
	return admin, nil
}

// FindAll writes the seed admin through when the collection has never been stored.
func (r *userRepo) FindAll(ctx context.Context) ([]model.User, error) {
	users, found, err := r.users.load(ctx)
	if err != nil {
		return nil, err
	}
	if found {
		return users, nil
	}
	admin, err := SeedAdmin()
	if err != nil {
		return nil, err
	}
	users = []model.User{admin}
	if err := r.users.save(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	users, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// FindByUsername returns every user with that exact username; uniqueness is not enforced.
func (r *userRepo) FindByUsername(ctx context.Context, username string) ([]model.User, error) {
	users, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	matched := []model.User{}
	for _, u := range users {
		if u.Username == username {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

func (r *userRepo) Save(ctx context.Context, user *model.User) error {
	if _, err := r.FindAll(ctx); err != nil {
		return err
	}
	return r.users.upsert(ctx, *user)
}

// Delete removes a user by id. Any user whose username is the reserved admin handle is kept.
func (r *userRepo) Delete(ctx context.Context, id string) error {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsProtected() {
		return ErrProtectedUser
	}
	_, err = r.users.remove(ctx, id)
	return err
}
