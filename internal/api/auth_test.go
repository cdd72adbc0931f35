package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/stocknexus/backend/internal/models"
)

func TestGenerateJWTTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "round-trip-secret")

	tokenString, err := generateJWTToken("u42", "u42@example.com", models.RoleDistrictManager)
	if err != nil {
		t.Fatalf("generateJWTToken returned error: %v", err)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte("round-trip-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("issued token failed to parse: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not MapClaims")
	}
	if claims["user_id"] != "u42" {
		t.Errorf("user_id = %v, want u42", claims["user_id"])
	}
	if claims["email"] != "u42@example.com" {
		t.Errorf("email = %v, want u42@example.com", claims["email"])
	}
	if claims["role"] != "district_manager" {
		t.Errorf("role = %v, want district_manager", claims["role"])
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		t.Fatal("exp claim missing")
	}
	if time.Unix(int64(exp), 0).Before(time.Now()) {
		t.Error("issued token is already expired")
	}
}

func TestGenerateJWTTokenRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := generateJWTToken("u1", "u1@example.com", models.RoleStaff); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestRefreshTokenStrings(t *testing.T) {
	first, err := generateRefreshTokenString(32)
	if err != nil {
		t.Fatalf("generateRefreshTokenString returned error: %v", err)
	}
	second, err := generateRefreshTokenString(32)
	if err != nil {
		t.Fatalf("generateRefreshTokenString returned error: %v", err)
	}
	if first == second {
		t.Error("two generated refresh tokens should not collide")
	}

	if hashRefreshTokenString(first) != hashRefreshTokenString(first) {
		t.Error("hash must be deterministic for the same input")
	}
	if hashRefreshTokenString(first) == hashRefreshTokenString(second) {
		t.Error("different tokens should hash differently")
	}
	if hashRefreshTokenString(first) == first {
		t.Error("stored hash must not equal the plain token")
	}
}

// Signing out must succeed no matter what the client still holds: an
// expired token, a malformed one, or none at all.
func TestLogoutAlwaysSucceeds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(nil, nil, nil, nil, nil)
	router := gin.New()
	router.POST("/api/auth/logout", handler.Logout)

	expiredToken := signTestToken(t, "test-secret", jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	tests := []struct {
		name       string
		authHeader string
	}{
		{"no authorization header", ""},
		{"malformed token", "Bearer not.a.jwt"},
		{"not bearer", "Basic abc123"},
		{"expired token", "Bearer " + expiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			if recorder.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (body %s)", recorder.Code, recorder.Body.String())
			}
		})
	}
}

func TestBestEffortUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	expiredToken := signTestToken(t, "irrelevant-secret", jwt.MapClaims{
		"user_id": "u9",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	tests := []struct {
		name       string
		authHeader string
		want       string
	}{
		{"expired token still yields the claim", "Bearer " + expiredToken, "u9"},
		{"garbage token yields nothing", "Bearer not.a.jwt", ""},
		{"no header yields nothing", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
			if tt.authHeader != "" {
				c.Request.Header.Set("Authorization", tt.authHeader)
			}
			if got := bestEffortUserID(c); got != tt.want {
				t.Errorf("bestEffortUserID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAccessTokenTTL(t *testing.T) {
	t.Setenv("JWT_EXPIRATION_MINUTES", "")
	if got := accessTokenTTL(); got != 30*time.Minute {
		t.Errorf("default TTL = %v, want 30m", got)
	}

	t.Setenv("JWT_EXPIRATION_MINUTES", "5")
	if got := accessTokenTTL(); got != 5*time.Minute {
		t.Errorf("TTL = %v, want 5m", got)
	}

	t.Setenv("JWT_EXPIRATION_MINUTES", "garbage")
	if got := accessTokenTTL(); got != 30*time.Minute {
		t.Errorf("TTL with bad env = %v, want fallback 30m", got)
	}
}
