package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"ResourceShare/internal/apperrors"
	"ResourceShare/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type UserService struct {
	repo   *UserRepository
	logger *zap.Logger
}

func NewUserService(repo *UserRepository, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, logger: logger.Named("auth")}
}

// Login creates the user for req.Email on first use and overwrites every mutable field on
// later logins. There is no credential check.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*User, error) {
	req.Email = NormalizeEmail(req.Email)

	now := time.Now().UTC()
	fields := bson.M{
		"name":       req.Name,
		"email":      req.Email,
		"role":       req.Role,
		"semester":   req.Semester,
		"department": DefaultDepartment,
		"is_active":  true,
		"updated_at": now,
	}

	existing, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		user := &User{
			Name:       req.Name,
			Email:      req.Email,
			Role:       req.Role,
			Semester:   req.Semester,
			Department: DefaultDepartment,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		err = s.repo.CreateUser(ctx, user)
		if err == nil {
			s.logger.Info("user created", zap.String("email", user.Email), zap.String("role", user.Role))
			return s.reload(ctx, user.ID)
		}
		if !errors.Is(err, store.ErrDuplicateKey) {
			return nil, err
		}
		// a concurrent first login for the same email won the insert
		existing, err = s.repo.FindByEmail(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, errors.New("user vanished after duplicate key error")
		}
	}

	if err := s.repo.UpdateUser(ctx, existing.ID, fields); err != nil {
		return nil, err
	}
	return s.reload(ctx, existing.ID)
}

// reload reads the stored user back so the response carries stored precision.
func (s *UserService) reload(ctx context.Context, id primitive.ObjectID) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NotFound("User not found")
	}
	return user, nil
}

// NormalizeEmail lowercases the domain part so one mailbox maps to one user. The local part
// is kept as given.
func NormalizeEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
