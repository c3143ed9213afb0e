package authapp_test

import (
	"errors"
	"github.com/burenotti/go_health_tracker/internal/app/authapp"
	"github.com/golang-jwt/jwt"
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()
	a := authapp.NewAuthorizer("secret", time.Hour)

	token, err := a.GenerateAccessToken("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := a.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.UserID != "user-1" || data.TokenID == "" {
		t.Fatalf("unexpected token data %+v", data)
	}
}

func TestValidateAccessTokenRejects(t *testing.T) {
	t.Parallel()
	a := authapp.NewAuthorizer("secret", time.Hour)

	other := authapp.NewAuthorizer("other-secret", time.Hour)
	foreign, err := other.GenerateAccessToken("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expired := authapp.NewAuthorizer("secret", time.Hour)
	expired.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.GenerateAccessToken("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		token  string
		target error
	}{
		{"garbage", "not-a-token", authapp.ErrAccessTokenInvalid},
		{"wrong secret", foreign, authapp.ErrAccessTokenInvalid},
		{"expired", old, authapp.ErrAccessTokenExpired},
		{"no subject", noSubject, authapp.ErrAccessTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.ValidateAccessToken(tt.token)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestGenerateAccessTokenRequiresSubject(t *testing.T) {
	t.Parallel()
	a := authapp.NewAuthorizer("secret", time.Hour)

	if _, err := a.GenerateAccessToken(""); !errors.Is(err, authapp.ErrAccessTokenInvalid) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}
