// Package services – AuthService
//
// This file implements AuthService: registration, password login, logout
// and bearer-token authentication. Tokens are opaque random strings handed
// to the client once; only their SHA-256 digest is stored.
//
// Login revokes every earlier token of the user, so a user holds at most
// one password-login token at a time.
package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/repo"
)

const (
	// TokenName labels tokens issued by Register and Login.
	TokenName = "auth_token"
	// TokenType is the scheme clients send tokens with.
	TokenType = "Bearer"

	tokenBytes = 40

	MinNameLength     = 4
	MinPasswordLength = 8
)

// AuthService issues and verifies bearer tokens.
type AuthService struct {
	DB *gorm.DB
	// TokenTTL bounds token lifetime; zero means tokens never expire.
	TokenTTL time.Duration
	// AdminSecret must be presented to register an admin. Empty disables
	// admin registration.
	AdminSecret string
	BcryptCost  int
	Now         func() time.Time
}

// RegisterInput is a sign-up request. Role is "client" when empty.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Role        string
	AdminSecret string
}

// AuthResult is returned by Register, Login and the OAuth callback.
// Soft is set when a secondary step failed without failing the call.
type AuthResult struct {
	User      *domain.User `json:"user"`
	Roles     []string     `json:"roles"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	Soft      error        `json:"-"`
}

// TokenInfo describes the token a request was authenticated with.
type TokenInfo struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	UserID     uint       `json:"user_id"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// HashPassword bcrypt-hashes pw with the service cost.
func (s *AuthService) HashPassword(pw string) (string, error) {
	return hashPassword(pw, s.BcryptCost)
}

func hashPassword(pw string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Register creates an account with one role and returns it with a fresh
// token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Register",
		trace.WithAttributes(attribute.String("role", in.Role)),
	)
	defer span.End()

	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if utf8.RuneCountInString(name) < MinNameLength || email == "" || len(in.Password) < MinPasswordLength {
		return nil, ErrInvalidInput
	}

	role := strings.TrimSpace(in.Role)
	switch role {
	case "", domain.RoleClient:
		role = domain.RoleClient
	case domain.RoleAdmin:
		if s.AdminSecret == "" || subtle.ConstantTimeCompare([]byte(in.AdminSecret), []byte(s.AdminSecret)) != 1 {
			return nil, ErrAdminSecret
		}
	default:
		return nil, ErrInvalidInput
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var res *AuthResult
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := repo.CreateUser(ctx, tx, name, email, hash)
		if err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrEmailTaken
			}
			return err
		}
		if err := repo.AttachRole(ctx, tx, u, role); err != nil {
			return err
		}
		res, err = s.issue(ctx, tx, u)
		return err
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("user.id", int64(res.User.ID)))
	return res, nil
}

// Login checks credentials, revokes the user's previous tokens and issues
// a new one. Users without any role get "client"; if that fails the login
// still succeeds and the failure is reported in AuthResult.Soft.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Login")
	defer span.End()

	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	span.SetAttributes(attribute.Int64("user.id", int64(u.ID)))

	if _, err := repo.DeleteUserTokens(ctx, s.DB, u.ID); err != nil {
		return nil, err
	}

	var soft error
	if len(u.Roles) == 0 {
		if err := repo.AttachRole(ctx, s.DB, u, domain.RoleClient); err != nil {
			soft = fmt.Errorf("attach default role: %w", err)
			zerolog.Ctx(ctx).Warn().Err(err).Uint("user_id", u.ID).Msg("default role not attached")
		}
	}

	res, err := s.issue(ctx, s.DB, u)
	if err != nil {
		return nil, err
	}
	res.Soft = soft
	return res, nil
}

// IssueToken creates a token for an already verified user.
func (s *AuthService) IssueToken(ctx context.Context, u *domain.User) (*AuthResult, error) {
	return s.issue(ctx, s.DB, u)
}

func (s *AuthService) issue(ctx context.Context, db *gorm.DB, u *domain.User) (*AuthResult, error) {
	plain, hash, err := newToken()
	if err != nil {
		return nil, err
	}
	var expires *time.Time
	if s.TokenTTL > 0 {
		t := s.now().Add(s.TokenTTL)
		expires = &t
	}
	if _, err := repo.CreateToken(ctx, db, u.ID, TokenName, hash, expires); err != nil {
		return nil, err
	}
	return &AuthResult{
		User:      u,
		Roles:     u.RoleNames(),
		Token:     plain,
		TokenType: TokenType,
		ExpiresAt: expires,
	}, nil
}

// Logout revokes the token with the given id.
func (s *AuthService) Logout(ctx context.Context, tokenID uint) error {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Logout",
		trace.WithAttributes(attribute.Int64("token.id", int64(tokenID))),
	)
	defer span.End()

	if err := repo.DeleteToken(ctx, s.DB, tokenID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUnauthenticated
		}
		return err
	}
	return nil
}

// Authenticate resolves a plain bearer token to its user and token row.
// Unknown and expired tokens yield ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, bearer string) (*domain.User, *domain.AccessToken, error) {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return nil, nil, ErrUnauthenticated
	}
	t, err := repo.FindTokenByHash(ctx, s.DB, HashToken(bearer))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrUnauthenticated
		}
		return nil, nil, err
	}
	now := s.now()
	if t.ExpiresAt != nil && !now.Before(*t.ExpiresAt) {
		return nil, nil, ErrUnauthenticated
	}
	if err := repo.TouchToken(ctx, s.DB, t.ID, now); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Uint("token_id", t.ID).Msg("token touch failed")
	} else {
		t.LastUsedAt = &now
	}
	u := t.User
	return &u, t, nil
}

// TokenInfo returns the metadata of t.
func (s *AuthService) TokenInfo(t *domain.AccessToken) TokenInfo {
	return TokenInfo{
		ID:         t.ID,
		Name:       t.Name,
		UserID:     t.UserID,
		CreatedAt:  t.CreatedAt,
		LastUsedAt: t.LastUsedAt,
		ExpiresAt:  t.ExpiresAt,
	}
}

// HashToken returns the hex SHA-256 of a plain token.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

func newToken() (plain, hash string, err error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}
	plain = hex.EncodeToString(b)
	return plain, HashToken(plain), nil
}
