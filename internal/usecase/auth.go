package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "github.com/AliXAbdullah03/nge-brain/internal/domain/errors"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/model"
	"github.com/AliXAbdullah03/nge-brain/internal/domain/repository"
	pkgAuth "github.com/AliXAbdullah03/nge-brain/internal/pkg/auth"
)

// AuthUseCase handles operator accounts and token management.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy}
}

// CreateUser stores a new operator with the given role.
func (u *AuthUseCase) CreateUser(ctx context.Context, login, password, roleName string) (*model.User, error) {
	login = strings.TrimSpace(login)
	verr := domainErrors.NewValidationError("login, password and a known role are required")
	if login == "" {
		verr.WithField("login", "required")
	}
	if password == "" {
		verr.WithField("password", "required")
	}
	role, ok := model.ParseRole(roleName)
	if !ok {
		verr.WithField("role", "unknown role")
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	return u.users.Create(ctx, login, hash, role)
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if usr.Status != model.UserStatusActive {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// ResolveActor turns a token into the acting operator. Inactive accounts are rejected.
func (u *AuthUseCase) ResolveActor(ctx context.Context, token string) (model.Actor, error) {
	if token == "" {
		return model.Actor{}, pkgAuth.ErrInvalidToken
	}
	id, err := u.tokens.ParseToken(token)
	if err != nil {
		return model.Actor{}, err
	}

	usr, err := u.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return model.Actor{}, pkgAuth.ErrInvalidToken
		}
		return model.Actor{}, err
	}
	if usr.Status != model.UserStatusActive {
		return model.Actor{}, pkgAuth.ErrInvalidToken
	}
	return model.Actor{ID: usr.ID, Role: usr.Role}, nil
}

// EnsureAdmin creates the Super Admin account unless the login is already taken.
// It reports whether an account was created.
func (u *AuthUseCase) EnsureAdmin(ctx context.Context, login, password string) (bool, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return false, nil
	}
	_, err := u.users.GetByLogin(ctx, strings.TrimSpace(login))
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, domainErrors.ErrNotFound):
		return false, fmt.Errorf("look up admin %q: %w", login, err)
	}

	if _, err := u.CreateUser(ctx, login, password, string(model.RoleSuperAdmin)); err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
