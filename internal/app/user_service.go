package app

import (
	"context"
	"errors"
	"time"

	"quizhub-service/internal/domain"
)

// UserService maintains the directory of externally-authenticated identities.
// It never issues or validates credentials; the ID is whatever the caller's
// auth layer vouched for.
type UserService struct {
	users UserStore
	now   func() time.Time
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users, now: time.Now}
}

// Register creates a directory entry, failing if the identity is known.
func (s *UserService) Register(ctx context.Context, id, email, name string) (domain.User, error) {
	if err := validateIdentity(id, email, name); err != nil {
		return domain.User{}, err
	}
	if _, err := s.users.GetUser(ctx, id); err == nil {
		return domain.User{}, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, err
	}

	user := domain.User{ID: id, Email: email, Name: name, CreatedAt: s.now()}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Login returns the existing entry, creating one on first login.
func (s *UserService) Login(ctx context.Context, id, email, name string) (domain.User, error) {
	if err := validateIdentity(id, email, name); err != nil {
		return domain.User{}, err
	}
	user, err := s.users.GetUser(ctx, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, err
	}

	user = domain.User{ID: id, Email: email, Name: name, CreatedAt: s.now()}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Profile fetches a directory entry, including the owned-quiz index.
func (s *UserService) Profile(ctx context.Context, id string) (domain.User, error) {
	if id == "" {
		return domain.User{}, domain.Validationf("user id is required")
	}
	return s.users.GetUser(ctx, id)
}

func validateIdentity(id, email, name string) error {
	if id == "" {
		return domain.Validationf("user id is required")
	}
	if email == "" {
		return domain.Validationf("email is required")
	}
	if name == "" {
		return domain.Validationf("name is required")
	}
	return nil
}
