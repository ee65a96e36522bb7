package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/foodmate/app/models"
	"github.com/shashiranjanraj/foodmate/app/repositories"
	"github.com/shashiranjanraj/foodmate/pkg/logger"
)

// UserService is the user and role directory.
type UserService struct {
	users repositories.UserRepository
	auth  *AuthService
}

func NewUserService(users repositories.UserRepository, auth *AuthService) *UserService {
	return &UserService{users: users, auth: auth}
}

type RegisterInput struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name"`
	Photo   string `json:"photo"`
	Address string `json:"address"`
}

// RegisterResult is {insertedId} for a new user and
// {message, insertedId: null} when the email is already registered.
type RegisterResult struct {
	Message    string              `json:"message,omitempty"`
	InsertedID *primitive.ObjectID `json:"insertedId"`
}

const msgUserExists = "user already exists"

// List returns every user. Admin-only; the route guard enforces it.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Profile returns the user or nil when there is none. Absence is not an error.
func (s *UserService) Profile(ctx context.Context, email string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return u, nil
}

// UpdateProfile sets only the supplied fields.
func (s *UserService) UpdateProfile(ctx context.Context, caller, email string, p models.ProfilePatch) (repositories.UpdateResult, error) {
	if err := s.auth.RequireSelf(email, caller); err != nil {
		return repositories.UpdateResult{}, err
	}
	if p.Empty() {
		return repositories.UpdateResult{}, invalid("nothing to update")
	}
	res, err := s.users.UpdateProfile(ctx, email, p)
	if err != nil {
		return res, fmt.Errorf("update profile: %w", err)
	}
	return res, nil
}

// Register creates the user once per email. New users always start with
// role and status none, whatever the client sent.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return RegisterResult{}, invalid("email is required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return RegisterResult{Message: msgUserExists}, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return RegisterResult{}, fmt.Errorf("register: %w", err)
	}

	u := &models.User{
		Email:   email,
		Name:    in.Name,
		Photo:   in.Photo,
		Address: in.Address,
		Role:    models.RoleNone,
		Status:  models.StatusNone,
	}
	id, err := s.users.Insert(ctx, u)
	if errors.Is(err, repositories.ErrDuplicate) {
		return RegisterResult{Message: msgUserExists}, nil
	}
	if err != nil {
		return RegisterResult{}, fmt.Errorf("register: %w", err)
	}

	logger.WithCtx(ctx).Info("user registered", "email", email)
	return RegisterResult{InsertedID: &id}, nil
}

// RequestRole records a pending role request. It does not grant anything.
func (s *UserService) RequestRole(ctx context.Context, caller, email string, role models.Role) (repositories.UpdateResult, error) {
	if err := s.auth.RequireSelf(email, caller); err != nil {
		return repositories.UpdateResult{}, err
	}
	if role != models.RoleChef && role != models.RoleAdmin {
		return repositories.UpdateResult{}, invalid("requestedRole must be chef or admin")
	}
	res, err := s.users.RequestRole(ctx, email, role)
	if err != nil {
		return res, fmt.Errorf("request role: %w", err)
	}
	logger.WithCtx(ctx).Info("role requested", "email", email, "role", role)
	return res, nil
}

// GrantRole sets the role, activates the user and clears any pending
// request. Admin-only; the route guard enforces it.
func (s *UserService) GrantRole(ctx context.Context, id string, role models.Role) (repositories.UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.UpdateResult{}, invalid("malformed user id %q", id)
	}
	if !role.Valid() {
		return repositories.UpdateResult{}, invalid("unknown role %q", role)
	}
	res, err := s.users.GrantRole(ctx, oid, role)
	if err != nil {
		return res, fmt.Errorf("grant role: %w", err)
	}
	logger.WithCtx(ctx).Info("role granted", "user_id", id, "role", role, "matched", res.MatchedCount)
	return res, nil
}

// IsAdmin answers for the caller only. An unknown user is not an admin.
func (s *UserService) IsAdmin(ctx context.Context, caller, email string) (bool, error) {
	return s.hasRole(ctx, caller, email, models.RoleAdmin)
}

// IsChef answers for the caller only. An unknown user is not a chef.
func (s *UserService) IsChef(ctx context.Context, caller, email string) (bool, error) {
	return s.hasRole(ctx, caller, email, models.RoleChef)
}

func (s *UserService) hasRole(ctx context.Context, caller, email string, role models.Role) (bool, error) {
	if err := s.auth.RequireSelf(email, caller); err != nil {
		return false, err
	}
	got, err := s.auth.RoleOf(ctx, email)
	if err != nil {
		return false, err
	}
	return got == string(role), nil
}
