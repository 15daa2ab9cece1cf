package service

import (
	"context"
	"errors"
	"strings"

	applog "go-ombor/internal/log"
	"go-ombor/internal/model"
	"go-ombor/internal/repository"
	"go-ombor/pkg/validator"
)

var (
	ErrUsernameTaken = errors.New("username already exists")
)

type UserService interface {
	List(ctx context.Context) ([]model.UserResponse, error)
	Get(ctx context.Context, id string) (*model.UserResponse, error)
	Create(ctx context.Context, req *CreateUserRequest, actor string) (*model.UserResponse, error)
	Update(ctx context.Context, id string, req *UpdateUserRequest, actor string) (*model.UserResponse, error)
	Delete(ctx context.Context, id string, actor string) error
}

type CreateUserRequest struct {
	Username    string   `json:"username" validate:"required"`
	Password    string   `json:"password" validate:"required"`
	FullName    string   `json:"full_name" validate:"required"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,permission"`
}

// UpdateUserRequest replaces a user's fields. An empty password keeps the current one.
type UpdateUserRequest struct {
	Username    string   `json:"username" validate:"required"`
	Password    string   `json:"password"`
	FullName    string   `json:"full_name" validate:"required"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,permission"`
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, users[i].ToResponse())
	}
	return out, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) usernameTaken(ctx context.Context, username, exceptID string) (bool, error) {
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	for _, u := range existing {
		if u.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

// Create adds a user. Without explicit permissions the user may only see the dashboard.
func (s *userService) Create(ctx context.Context, req *CreateUserRequest, actor string) (*model.UserResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	perms, err := model.ParsePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}
	if len(perms) == 0 {
		perms = []model.Permission{model.PermDashboard}
	}
	taken, err := s.usernameTaken(ctx, req.Username, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	user := &model.User{
		ID:          model.NewID(),
		Username:    req.Username,
		FullName:    req.FullName,
		Permissions: perms,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	applog.Audit(nil, "user_created", map[string]any{"user_id": user.ID, "username": user.Username, "by": actor})
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, id string, req *UpdateUserRequest, actor string) (*model.UserResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	perms, err := model.ParsePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// renaming the admin account would lift its deletion guard
	if user.IsProtected() && req.Username != model.AdminUsername {
		return nil, repository.ErrProtectedUser
	}
	if req.Username != user.Username {
		taken, err := s.usernameTaken(ctx, req.Username, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
	}

	user.Username = req.Username
	user.FullName = req.FullName
	user.Permissions = perms
	if req.Password != "" {
		if err := user.SetPassword(req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	applog.Audit(nil, "user_updated", map[string]any{"user_id": user.ID, "by": actor})
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) Delete(ctx context.Context, id string, actor string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	applog.Audit(nil, "user_deleted", map[string]any{"user_id": id, "by": actor})
	return nil
}
