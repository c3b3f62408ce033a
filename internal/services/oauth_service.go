// Package services – OAuthService
//
// This file implements Google sign-in. The state parameter is a short-lived
// HS256 JWT carrying the post-login redirect, so no server-side session is
// needed between the redirect and the callback. On callback the code is
// exchanged, the Google profile is fetched and the matching account is
// found or created before a bearer token is issued.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/support-chat-backend/internal/domain"
	"github.com/tbourn/support-chat-backend/internal/repo"
)

// GoogleUserInfoURL is the OpenID userinfo endpoint.
const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// DefaultOAuthStateTTL bounds how long a login attempt may take.
const DefaultOAuthStateTTL = 10 * time.Minute

// OAuthService signs users in with Google.
type OAuthService struct {
	DB   *gorm.DB
	Auth *AuthService
	// OAuth is nil when Google sign-in is not configured.
	OAuth       *oauth2.Config
	StateSecret []byte
	StateTTL    time.Duration
	UserInfoURL string
	// HTTPClient is used for the code exchange and profile fetch.
	HTTPClient *http.Client
	Now        func() time.Time
}

// GoogleConfig returns an oauth2 config for Google, or nil when clientID is
// empty.
func GoogleConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	if clientID == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

type stateClaims struct {
	Redirect string `json:"redirect,omitempty"`
	jwt.RegisteredClaims
}

// GoogleProfile is the subset of the userinfo response we use.
type GoogleProfile struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// OAuthResult is the outcome of a successful callback.
type OAuthResult struct {
	*AuthResult
	Created  bool   `json:"created"`
	Redirect string `json:"-"`
}

func (s *OAuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// AuthURL returns the Google consent URL. redirect is carried through the
// state and handed back by Callback.
func (s *OAuthService) AuthURL(redirect string) (string, error) {
	if s.OAuth == nil {
		return "", ErrOAuthDisabled
	}
	ttl := s.StateTTL
	if ttl <= 0 {
		ttl = DefaultOAuthStateTTL
	}
	now := s.now()
	claims := stateClaims{
		Redirect: redirect,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	state, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.StateSecret)
	if err != nil {
		return "", fmt.Errorf("sign oauth state: %w", err)
	}
	return s.OAuth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

func (s *OAuthService) verifyState(state string) (*stateClaims, error) {
	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims,
		func(*jwt.Token) (any, error) { return s.StateSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthState, err)
	}
	return &claims, nil
}

// Callback completes a Google sign-in.
func (s *OAuthService) Callback(ctx context.Context, code, state string) (*OAuthResult, error) {
	tr := otel.Tracer("services/OAuthService")
	ctx, span := tr.Start(ctx, "Callback")
	defer span.End()

	if s.OAuth == nil {
		return nil, ErrOAuthDisabled
	}
	claims, err := s.verifyState(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: missing code", ErrOAuthExchange)
	}

	if s.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.HTTPClient)
	}
	tok, err := s.OAuth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}
	profile, err := s.fetchProfile(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}

	u, created, err := s.findOrCreate(ctx, profile)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("user.id", int64(u.ID)),
		attribute.Bool("user.created", created),
	)

	res, err := s.Auth.IssueToken(ctx, u)
	if err != nil {
		return nil, err
	}
	return &OAuthResult{AuthResult: res, Created: created, Redirect: claims.Redirect}, nil
}

func (s *OAuthService) fetchProfile(ctx context.Context, tok *oauth2.Token) (*GoogleProfile, error) {
	url := s.UserInfoURL
	if url == "" {
		url = GoogleUserInfoURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.OAuth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("userinfo: http %d", resp.StatusCode)
	}
	var p GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("userinfo: %w", err)
	}
	if strings.TrimSpace(p.Email) == "" {
		return nil, errors.New("userinfo: no email")
	}
	return &p, nil
}

func (s *OAuthService) findOrCreate(ctx context.Context, p *GoogleProfile) (*domain.User, bool, error) {
	u, err := repo.GetUserByEmail(ctx, s.DB, p.Email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, false, err
	}

	pw := make([]byte, 24)
	if _, err := rand.Read(pw); err != nil {
		return nil, false, err
	}
	hash, err := s.Auth.HashPassword(hex.EncodeToString(pw))
	if err != nil {
		return nil, false, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := repo.CreateUser(ctx, tx, displayName(p), p.Email, hash)
		if err != nil {
			return err
		}
		if err := repo.AttachRole(ctx, tx, created, domain.RoleClient); err != nil {
			return err
		}
		u = created
		return nil
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// Created concurrently by another callback.
		u, err = repo.GetUserByEmail(ctx, s.DB, p.Email)
		return u, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// displayName falls back to the title-cased local part of the email.
func displayName(p *GoogleProfile) string {
	if n := strings.TrimSpace(p.Name); n != "" {
		return n
	}
	local, _, _ := strings.Cut(p.Email, "@")
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	return cases.Title(language.Und).String(local)
}
