package service

import (
	"context"
	"errors"

	"go-ombor/internal/access"
	applog "go-ombor/internal/log"
	"go-ombor/internal/model"
	"go-ombor/internal/repository"
	"go-ombor/internal/session"
	"go-ombor/pkg/validator"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("session expired, please sign in again")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
	Current(ctx context.Context, token string) (*session.Session, error)
	ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error
}

type LoginResponse struct {
	Token string `json:"token"`
	SessionView
}

// SessionView is what the client needs to render navigation for a signed-in user.
type SessionView struct {
	User    model.UserResponse `json:"user"`
	Menu    []access.MenuItem  `json:"menu"`
	Landing access.Page        `json:"landing"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// DescribeSession builds the navigation view from a session.
func DescribeSession(s *session.Session) SessionView {
	perms := s.Permissions
	if perms == nil {
		perms = []model.Permission{}
	}
	return SessionView{
		User: model.UserResponse{
			ID:          s.UserID,
			Username:    s.Username,
			FullName:    s.FullName,
			Permissions: perms,
		},
		Menu:    access.Menu(perms),
		Landing: access.Landing(perms),
	}
}

type authService struct {
	userRepo repository.UserRepository
	sessions *session.Manager
}

func NewAuthService(userRepo repository.UserRepository, sessions *session.Manager) AuthService {
	return &authService{
		userRepo: userRepo,
		sessions: sessions,
	}
}

// Login succeeds only for a user whose username and password both match exactly.
func (s *authService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	candidates, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	var matched *model.User
	for i := range candidates {
		if candidates[i].CheckPassword(password) {
			matched = &candidates[i]
			break
		}
	}
	if matched == nil {
		return nil, ErrInvalidCredentials
	}

	sess, token, err := s.sessions.Start(ctx, matched)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, SessionView: DescribeSession(sess)}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.End(ctx, sessionID)
}

// Current resolves the session behind token and refreshes it from the users collection.
// A session whose user was deleted is torn down.
func (s *authService) Current(ctx context.Context, token string) (*session.Session, error) {
	sess, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	user, err := s.userRepo.FindByID(ctx, sess.UserID)
	if errors.Is(err, repository.ErrUserNotFound) {
		s.sessions.End(ctx, sess.ID)
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	sess.Apply(user)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error {
	if err := validator.Check(req); err != nil {
		return err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(req.OldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	applog.Audit(nil, "password_changed", map[string]any{"user_id": user.ID})
	return nil
}
