package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aptiva/examgate-backend/internal/config"
	"github.com/aptiva/examgate-backend/internal/model"
)

func testAuthService() *AuthService {
	cfg := &config.Config{
		JWTAccessSecret:  "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		AccessExpiry:     15 * time.Minute,
		RefreshExpiry:    168 * time.Hour,
		BcryptCost:       4,
	}
	return NewAuthService(cfg, nil, nil)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := testAuthService()
	user := &model.User{
		ID:         uuid.New(),
		Name:       "Prof. Stone",
		Role:       model.RoleProfessor,
		Department: "Physics",
	}

	token, err := svc.signToken(user, TokenTypeAccess, svc.cfg.JWTAccessSecret, svc.cfg.AccessExpiry)
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != model.RoleProfessor || claims.Department != "Physics" {
		t.Errorf("claims = %+v, want the signed user identity", claims)
	}
	if claims.Name != "Prof. Stone" {
		t.Errorf("Name = %q, want %q", claims.Name, "Prof. Stone")
	}
}

func TestValidateAccessTokenRejectsRefreshToken(t *testing.T) {
	svc := testAuthService()
	user := &model.User{ID: uuid.New(), Role: model.RoleStudent}

	refresh, err := svc.signToken(user, TokenTypeRefresh, svc.cfg.JWTRefreshSecret, svc.cfg.RefreshExpiry)
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}
	if _, err := svc.ValidateAccessToken(refresh); err == nil {
		t.Errorf("a refresh token must not pass access validation")
	}
}

func TestValidateAccessTokenRejectsWrongSecret(t *testing.T) {
	svc := testAuthService()
	user := &model.User{ID: uuid.New(), Role: model.RoleStudent}

	forged, err := svc.signToken(user, TokenTypeAccess, "some-other-secret", svc.cfg.AccessExpiry)
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}
	if _, err := svc.ValidateAccessToken(forged); err == nil {
		t.Errorf("a token signed with the wrong secret must be rejected")
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	// Refresh JWTs exceed bcrypt's 72-byte input limit, so they are stored
	// as sha256 digests and compared in constant time.
	token := "header.payload.signature-that-is-quite-long-and-exceeds-bcrypt-limits-easily-0123456789"
	hash := hashRefreshToken(token)

	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(hash))
	}
	if !tokenHashMatches(hash, token) {
		t.Errorf("token should match its own hash")
	}
	if tokenHashMatches(hash, token+"x") {
		t.Errorf("altered token must not match")
	}
}

func TestClaimsUser(t *testing.T) {
	svc := testAuthService()
	user := &model.User{ID: uuid.New(), Name: "Ana", Role: model.RoleStudent, Department: "CS"}

	token, err := svc.signToken(user, TokenTypeAccess, svc.cfg.JWTAccessSecret, svc.cfg.AccessExpiry)
	if err != nil {
		t.Fatalf("signToken: %v", err)
	}
	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}

	got := claims.User()
	if got.ID != user.ID || got.Name != user.Name || got.Role != user.Role || got.Department != user.Department {
		t.Errorf("User() = %+v, want the original identity fields", got)
	}
}
