package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/serenity-bookings/internal/persistence"
)

// CredentialStore captures the user lookups authentication needs.
type CredentialStore interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// Claims is the JWT payload issued on login.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService issues and validates HS256 bearer tokens against the user store.
type AuthService struct {
	users    CredentialStore
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewAuthService constructs an auth service with the signing secret and token
// lifetime.
func NewAuthService(users CredentialStore, secret []byte, tokenTTL time.Duration, now func() time.Time, logger *slog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:    users,
		secret:   secret,
		tokenTTL: tokenTTL,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// LoginResult carries the signed token and the authenticated identity.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Principal Principal
}

// Login verifies the credentials and signs a bearer token. Unknown emails and
// wrong passwords are indistinguishable to the caller; disabled accounts are
// reported separately.
func (s *AuthService) Login(ctx context.Context, email, password string) (result LoginResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Login", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to login", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", result.Principal.UserID).InfoContext(ctx, "login succeeded")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(email) == "" {
		vErr.Add("email", "email is required")
	}
	if password == "" {
		vErr.Add("password", "password is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var user User
	user, err = s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}
	if !user.Active {
		err = ErrAccountDisabled
		return
	}
	if err = VerifyPassword(user.PasswordHash, password); err != nil {
		return
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.tokenTTL)
	claims := Claims{
		Role:  user.Role,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	var signed string
	signed, err = token.SignedString(s.secret)
	if err != nil {
		err = fmt.Errorf("sign token: %w", err)
		return
	}

	result = LoginResult{
		Token:     signed,
		ExpiresAt: expiresAt,
		Principal: Principal{UserID: user.ID, Email: user.Email, Role: user.Role},
	}
	return
}

// ValidateToken parses and verifies a bearer token and returns the principal
// it encodes. Any parse or signature failure is reported as ErrUnauthorized.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (Principal, error) {
	if s == nil {
		return Principal{}, fmt.Errorf("AuthService is nil")
	}
	_ = ctx

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Principal{}, ErrUnauthorized
	}

	return Principal{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
