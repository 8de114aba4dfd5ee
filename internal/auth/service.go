// Package auth issues and verifies session tokens and manages user accounts.
package auth

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/avdeyev/storefront/internal/domain"
	"github.com/avdeyev/storefront/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Session is the authenticated response payload: the user projection plus
// a bearer token.
type Session struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

type Service struct {
	users  repository.UserRepository
	tokens *TokenManager
}

func NewService(users repository.UserRepository, tokens *TokenManager) *Service {
	return &Service{users: users, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     domain.RoleUser,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return s.session(user)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.session(user)
}

func (s *Service) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// UpdateProfile applies partial updates; empty fields keep their current
// value. A password change is re-hashed, and a fresh token is issued so the
// client session stays valid.
func (s *Service) UpdateProfile(ctx context.Context, userID primitive.ObjectID, name, email, password string) (*Session, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}
	if password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	return s.session(user)
}

func (s *Service) session(user *domain.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}
