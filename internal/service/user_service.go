package service

import (
	"context"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"go-threads-api/internal/apperror"
	"go-threads-api/internal/core/auth"
	"go-threads-api/internal/domain"
	"go-threads-api/pkg/utils"
)

type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UserService owns registration and credential verification. Repositories
// are injected so tests can swap in an in-memory store.
type UserService struct {
	users domain.UserRepository
	jwter *auth.JWTer
	log   *zap.Logger
}

func NewUserService(users domain.UserRepository, jwter *auth.JWTer, log *zap.Logger) *UserService {
	return &UserService{users: users, jwter: jwter, log: log}
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.FirstName == "" {
		return nil, apperror.Validation("firstName", "firstName is required")
	}
	if in.Email == "" {
		return nil, apperror.Validation("email", "email is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, apperror.Validation("email", "email is malformed")
	}
	if in.Password == "" {
		return nil, apperror.Validation("password", "password is required")
	}

	salt, err := auth.GenerateSalt()
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:           utils.NewID(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: auth.HashPassword(in.Password, salt),
		Salt:         salt,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user created", zap.String("user_id", u.ID))
	return u, nil
}

// GetUserToken verifies the credentials and signs a token carrying the
// user's id and email.
func (s *UserService) GetUserToken(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperror.Validation("email", "email and password are required")
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", apperror.NotFound("user", email)
	}
	if !auth.VerifyPassword(password, u.Salt, u.PasswordHash) {
		return "", apperror.Unauthorized("invalid password")
	}
	return s.jwter.Issue(u.ID, u.Email)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, apperror.Validation("id", "id is required")
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}
