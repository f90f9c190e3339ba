package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/aptiva/examgate-backend/internal/config"
	"github.com/aptiva/examgate-backend/internal/model"
	"github.com/aptiva/examgate-backend/internal/repository"
)

// TokenType distinguishes access from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims extends JWT standard claims with app-specific fields. Department is
// embedded so eligibility checks never need a user lookup per request.
type Claims struct {
	jwt.RegisteredClaims
	TokenType  TokenType  `json:"token_type"`
	UserID     uuid.UUID  `json:"user_id"`
	Name       string     `json:"name"`
	Role       model.Role `json:"role"`
	Department string     `json:"department,omitempty"`
}

// User materializes the claims as a lightweight user record for services
// that only need identity, role and department.
func (c *Claims) User() *model.User {
	return &model.User{
		ID:         c.UserID,
		Name:       c.Name,
		Role:       c.Role,
		Department: c.Department,
	}
}

// AuthService handles authentication and JWT pair management.
type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
	audit    *AuditPublisher
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository, audit *AuditPublisher) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo, audit: audit}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// Login verifies credentials and issues a fresh token pair. The refresh
// token's hash replaces any previously stored one, so each login invalidates
// older refresh tokens.
func (s *AuthService) Login(ctx context.Context, email, password, clientIP string) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEvent{
		UserID:    &user.ID,
		Action:    model.AuditLogin,
		IPAddress: clientIP,
		Metadata:  map[string]any{"role": user.Role},
	})

	pair.User = user
	return pair, nil
}

// Refresh validates a refresh token against the stored hash and rotates the
// pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.LoginResponse, error) {
	claims, err := s.parseToken(refreshToken, s.cfg.JWTRefreshSecret)
	if err != nil || claims.TokenType != TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if user.RefreshTokenHash == nil || !tokenHashMatches(*user.RefreshTokenHash, refreshToken) {
		return nil, ErrInvalidRefreshToken
	}

	return s.issueTokenPair(ctx, user)
}

// Logout invalidates the user's stored refresh token.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, clientIP string) error {
	if err := s.userRepo.SetRefreshTokenHash(ctx, userID, nil); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		UserID:    &userID,
		Action:    model.AuditLogout,
		IPAddress: clientIP,
	})
	return nil
}

// ValidateAccessToken parses and validates an access JWT.
func (s *AuthService) ValidateAccessToken(tokenStr string) (*Claims, error) {
	claims, err := s.parseToken(tokenStr, s.cfg.JWTAccessSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, errors.New("not an access token")
	}
	return claims, nil
}

func (s *AuthService) issueTokenPair(ctx context.Context, user *model.User) (*model.LoginResponse, error) {
	access, err := s.signToken(user, TokenTypeAccess, s.cfg.JWTAccessSecret, s.cfg.AccessExpiry)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.signToken(user, TokenTypeRefresh, s.cfg.JWTRefreshSecret, s.cfg.RefreshExpiry)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	hash := hashRefreshToken(refresh)
	if err := s.userRepo.SetRefreshTokenHash(ctx, user.ID, &hash); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &model.LoginResponse{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) signToken(user *model.User, tokenType TokenType, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		TokenType:  tokenType,
		UserID:     user.ID,
		Name:       user.Name,
		Role:       user.Role,
		Department: user.Department,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *AuthService) parseToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Refresh tokens exceed bcrypt's input limit, so they get the same
// hash-then-compare treatment as attempt session tokens.
func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func tokenHashMatches(storedHash, token string) bool {
	computed := hashRefreshToken(token)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(computed)) == 1
}
