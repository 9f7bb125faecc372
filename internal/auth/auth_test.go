package auth

import (
	"strings"
	"testing"
	"time"

	"hireflow/internal/config"
)

func testService() *Service {
	return NewService(&config.JWTConfig{
		Secret:            "test-secret",
		Expiration:        15 * time.Minute,
		RefreshExpiration: 168 * time.Hour,
	})
}

func TestHashPassword(t *testing.T) {
	svc := testService()

	password := "testpassword123"
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if hash == "" {
		t.Error("Hash should not be empty")
	}

	if hash == password {
		t.Error("Hash should not equal the original password")
	}
}

func TestVerifyPassword(t *testing.T) {
	svc := testService()

	password := "testpassword123"
	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if err := svc.VerifyPassword(hash, password); err != nil {
		t.Errorf("Should verify correct password, got error: %v", err)
	}

	if err := svc.VerifyPassword(hash, "wrongpassword"); err == nil {
		t.Error("Should not verify incorrect password")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := testService()

	token, jti, err := svc.GenerateToken(42, "test@example.com")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if token == "" {
		t.Error("Token should not be empty")
	}
	if jti == "" {
		t.Error("JTI should not be empty")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("Expected user ID 42, got %d", claims.UserID)
	}
	if claims.Email != "test@example.com" {
		t.Errorf("Expected email test@example.com, got %s", claims.Email)
	}
	if claims.ID != jti {
		t.Errorf("Claims JTI %s should match the returned JTI %s", claims.ID, jti)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc := testService()
	other := NewService(&config.JWTConfig{
		Secret:            "another-secret",
		Expiration:        15 * time.Minute,
		RefreshExpiration: 168 * time.Hour,
	})

	token, _, err := svc.GenerateToken(1, "test@example.com")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Error("Token signed with a different secret should not validate")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewService(&config.JWTConfig{
		Secret:            "test-secret",
		Expiration:        -time.Minute,
		RefreshExpiration: 168 * time.Hour,
	})

	token, _, err := svc.GenerateToken(1, "test@example.com")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("Expired token should not validate")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := testService()

	if _, err := svc.ValidateToken("not-a-token"); err == nil {
		t.Error("Garbage input should not validate")
	}
}

func TestExtractJTIFromExpiredToken(t *testing.T) {
	expired := NewService(&config.JWTConfig{
		Secret:            "test-secret",
		Expiration:        -time.Minute,
		RefreshExpiration: 168 * time.Hour,
	})

	token, jti, err := expired.GenerateToken(1, "test@example.com")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	extracted, err := expired.ExtractJTI(token)
	if err != nil {
		t.Fatalf("Failed to extract JTI from expired token: %v", err)
	}
	if extracted != jti {
		t.Errorf("Extracted JTI %s should match %s", extracted, jti)
	}
}

func TestRefreshTokenIsDistinct(t *testing.T) {
	svc := testService()

	access, accessJTI, err := svc.GenerateToken(1, "test@example.com")
	if err != nil {
		t.Fatalf("Failed to generate access token: %v", err)
	}
	refresh, refreshJTI, err := svc.GenerateRefreshToken(1, "test@example.com")
	if err != nil {
		t.Fatalf("Failed to generate refresh token: %v", err)
	}

	if access == refresh {
		t.Error("Access and refresh tokens should differ")
	}
	if accessJTI == refreshJTI {
		t.Error("Access and refresh JTIs should differ")
	}
	if strings.Count(refresh, ".") != 2 {
		t.Error("Refresh token should be a JWT")
	}
}
