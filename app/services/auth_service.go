package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/foodmate/app/models"
	"github.com/shashiranjanraj/foodmate/app/repositories"
	"github.com/shashiranjanraj/foodmate/pkg/auth"
)

// AuthService issues credentials and answers the two access policies:
// "caller is the subject" and "caller is an admin".
type AuthService struct {
	signer *auth.Signer
	users  repositories.UserRepository
}

func NewAuthService(signer *auth.Signer, users repositories.UserRepository) *AuthService {
	return &AuthService{signer: signer, users: users}
}

// CredentialInput is the identity claim a client exchanges for a token.
type CredentialInput struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

// IssueCredential signs a token for the claimed identity.
func (s *AuthService) IssueCredential(_ context.Context, in CredentialInput) (string, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return "", invalid("email is required")
	}
	token, err := s.signer.Issue(auth.Claims{Email: email, Name: in.Name})
	if err != nil {
		return "", fmt.Errorf("issue credential: %w", err)
	}
	return token, nil
}

// RequireSelf fails with ErrForbidden unless caller and subject are the
// same email, compared exactly.
func (s *AuthService) RequireSelf(subject, caller string) error {
	if caller == "" {
		return ErrUnauthorized
	}
	if subject != caller {
		return ErrForbidden
	}
	return nil
}

// RequireAdmin fails with ErrForbidden unless the caller's stored role is admin.
func (s *AuthService) RequireAdmin(ctx context.Context, caller string) error {
	if caller == "" {
		return ErrUnauthorized
	}
	role, err := s.RoleOf(ctx, caller)
	if err != nil {
		return err
	}
	if role != string(models.RoleAdmin) {
		return ErrForbidden
	}
	return nil
}

// IsAdmin reports whether email belongs to an admin.
func (s *AuthService) IsAdmin(ctx context.Context, email string) (bool, error) {
	role, err := s.RoleOf(ctx, email)
	return role == string(models.RoleAdmin), err
}

// RoleOf returns the stored role of email, or "" when there is no such
// user. It satisfies rbac.RoleResolver.
func (s *AuthService) RoleOf(ctx context.Context, email string) (string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("role lookup: %w", err)
	}
	return string(u.EffectiveRole()), nil
}
