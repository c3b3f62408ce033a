// Package services – UserService
//
// This file implements UserService, the admin-only account management used
// by the users screen: listing with activity counters, creation with a
// role, partial updates and cascading deletion.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/authz"
	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/repo"
)

// UserService manages accounts on behalf of admins.
type UserService struct {
	DB         *gorm.DB
	BcryptCost int
}

// CreateUserInput is an admin-created account. Role defaults to client.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdateUserInput carries the fields to change; nil means unchanged.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
}

func (s *UserService) authorize(requestor *domain.User, action authz.Action) error {
	if !authz.Authorize(requestor, action, authz.ResourceUser) {
		return ErrForbidden
	}
	return nil
}

// List returns every user with conversation, ticket and feedback counts.
func (s *UserService) List(ctx context.Context, requestor *domain.User) ([]repo.UserStats, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "List")
	defer span.End()

	if err := s.authorize(requestor, authz.ActionList); err != nil {
		return nil, err
	}
	return repo.ListUsersWithStats(ctx, s.DB)
}

// Get returns a single user with roles.
func (s *UserService) Get(ctx context.Context, requestor *domain.User, id uint) (*domain.User, error) {
	if err := s.authorize(requestor, authz.ActionRead); err != nil {
		return nil, err
	}
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return u, nil
}

// Create adds an account with the given role.
func (s *UserService) Create(ctx context.Context, requestor *domain.User, in CreateUserInput) (*domain.User, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("role", in.Role)),
	)
	defer span.End()

	if err := s.authorize(requestor, authz.ActionCreate); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if utf8.RuneCountInString(name) < MinNameLength || strings.TrimSpace(in.Email) == "" || len(in.Password) < MinPasswordLength {
		return nil, ErrInvalidInput
	}
	role := in.Role
	if role == "" {
		role = domain.RoleClient
	}
	if role != domain.RoleClient && role != domain.RoleAdmin {
		return nil, ErrInvalidInput
	}

	hash, err := hashPassword(in.Password, s.BcryptCost)
	if err != nil {
		return nil, err
	}

	var u *domain.User
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := repo.CreateUser(ctx, tx, name, in.Email, hash)
		if err != nil {
			return err
		}
		if err := repo.AttachRole(ctx, tx, created, role); err != nil {
			return err
		}
		u = created
		return nil
	})
	if err != nil {
		return nil, mapUserErr(err)
	}
	return u, nil
}

// Update changes the given fields. A new password is re-hashed.
func (s *UserService) Update(ctx context.Context, requestor *domain.User, id uint, in UpdateUserInput) (*domain.User, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.Int64("target.id", int64(id))),
	)
	defer span.End()

	if err := s.authorize(requestor, authz.ActionUpdate); err != nil {
		return nil, err
	}
	if in.Name != nil && utf8.RuneCountInString(strings.TrimSpace(*in.Name)) < MinNameLength {
		return nil, ErrInvalidInput
	}
	if in.Email != nil && strings.TrimSpace(*in.Email) == "" {
		return nil, ErrInvalidInput
	}

	var hash *string
	if in.Password != nil {
		if len(*in.Password) < MinPasswordLength {
			return nil, ErrInvalidInput
		}
		h, err := hashPassword(*in.Password, s.BcryptCost)
		if err != nil {
			return nil, err
		}
		hash = &h
	}

	u, err := repo.UpdateUser(ctx, s.DB, id, in.Name, in.Email, hash)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return u, nil
}

// Delete removes a user and everything it owns. Admins cannot delete
// themselves.
func (s *UserService) Delete(ctx context.Context, requestor *domain.User, id uint) error {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int64("target.id", int64(id))),
	)
	defer span.End()

	if err := s.authorize(requestor, authz.ActionDelete); err != nil {
		return err
	}
	if requestor.ID == id {
		return ErrForbidden
	}
	return mapUserErr(repo.DeleteUser(ctx, s.DB, id))
}

func mapUserErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, repo.ErrDuplicate):
		return ErrEmailTaken
	default:
		return err
	}
}
