package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("secret", time.Minute)
	token, err := svc.GenerateAccessToken("u-1", RoleAdmin, "warden@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "u-1" || claims.Role != RoleAdmin || claims.Email != "warden@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateExpired(t *testing.T) {
	svc := NewService("secret", -time.Minute)
	token, err := svc.GenerateAccessToken("u-1", RoleStudent, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.ValidateAccessToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	token, _ := NewService("one", time.Minute).GenerateAccessToken("u-1", RoleStudent, "")
	if _, err := NewService("two", time.Minute).ValidateAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIsAdmin(t *testing.T) {
	if !IsAdmin(RoleSuperAdmin) || !IsAdmin(RoleAdmin) || IsAdmin(RoleStudent) {
		t.Fatal("unexpected IsAdmin result")
	}
}
