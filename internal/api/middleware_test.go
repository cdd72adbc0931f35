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

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func authTestRouter() (*gin.Engine, *jwt.MapClaims) {
	gin.SetMode(gin.TestMode)
	var seen jwt.MapClaims
	router := gin.New()
	router.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		seen = jwt.MapClaims{}
		if v, ok := c.Get("user_id"); ok {
			seen["user_id"] = v
		}
		if v, ok := c.Get("role"); ok {
			seen["role"] = v
		}
		c.Status(http.StatusOK)
	})
	return router, &seen
}

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	validToken := signTestToken(t, "test-secret", jwt.MapClaims{
		"user_id": "u1",
		"email":   "u1@example.com",
		"role":    "manager",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	expiredToken := signTestToken(t, "test-secret", jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	wrongKeyToken := signTestToken(t, "other-secret", jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc123", http.StatusUnauthorized},
		{"malformed token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"wrong signing key", "Bearer " + wrongKeyToken, http.StatusUnauthorized},
		{"expired token", "Bearer " + expiredToken, http.StatusUnauthorized},
		{"valid token", "Bearer " + validToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, seen := authTestRouter()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			if recorder.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", recorder.Code, tt.wantStatus, recorder.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				if (*seen)["user_id"] != "u1" {
					t.Errorf("user_id claim = %v, want u1", (*seen)["user_id"])
				}
				if (*seen)["role"] != "manager" {
					t.Errorf("role claim = %v, want manager", (*seen)["role"])
				}
			}
		})
	}
}

func TestRoleAtLeast(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		role       string
		minRole    models.Role
		wantStatus int
	}{
		{"staff blocked from manager endpoint", "staff", models.RoleManager, http.StatusForbidden},
		{"assistant manager blocked from manager endpoint", "assistant_manager", models.RoleManager, http.StatusForbidden},
		{"manager allowed at manager endpoint", "manager", models.RoleManager, http.StatusOK},
		{"admin allowed everywhere", "admin", models.RoleManager, http.StatusOK},
		{"regional manager blocked from admin endpoint", "regional_manager", models.RoleAdmin, http.StatusForbidden},
		{"unknown role blocked", "superuser", models.RoleStaff, http.StatusForbidden},
		{"missing role blocked", "", models.RoleStaff, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/guarded", func(c *gin.Context) {
				if tt.role != "" {
					c.Set("role", tt.role)
				}
			}, RoleAtLeast(tt.minRole), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/guarded", nil))

			if recorder.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}
		})
	}
}
