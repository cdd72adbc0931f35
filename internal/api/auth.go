package api

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/stocknexus/backend/internal/models"
)

// --- Refresh token helpers ---

func generateRefreshTokenString(n int) (string, error) {
	if n <= 0 {
		n = 32
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashRefreshTokenString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func refreshTokenTTL() time.Duration {
	days := getEnvInt("REFRESH_TOKEN_TTL_DAYS", 30)
	return time.Duration(days) * 24 * time.Hour
}

func accessTokenTTL() time.Duration {
	minutes := getEnvInt("JWT_EXPIRATION_MINUTES", 30)
	if minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

// generateJWTToken creates a JWT token for the user
func generateJWTToken(userID, email string, role models.Role) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    string(role),
		"exp":     time.Now().Add(accessTokenTTL()).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// isDuplicateEmailError checks if the error is due to the unique email constraint
func isDuplicateEmailError(err error) bool {
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint") &&
		strings.Contains(err.Error(), "email")
}

// issueSession creates the access and refresh tokens for a profile.
func (h *Handler) issueSession(ctx context.Context, c *gin.Context, profile *models.Profile) (*models.AuthResponse, error) {
	token, err := generateJWTToken(profile.ID, profile.Email, profile.Role)
	if err != nil {
		return nil, err
	}

	plainRefresh, err := generateRefreshTokenString(32)
	if err != nil {
		return nil, err
	}
	refreshExpiresAt := time.Now().Add(refreshTokenTTL())
	if _, err := h.DB.CreateRefreshToken(ctx, profile.ID, hashRefreshTokenString(plainRefresh),
		refreshExpiresAt, getClientIP(c), c.GetHeader("User-Agent")); err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token:            token,
		ExpiresAt:        time.Now().Add(accessTokenTTL()),
		RefreshToken:     plainRefresh,
		RefreshExpiresAt: refreshExpiresAt,
		User:             *profile,
	}, nil
}

// Signup handles self-service registration. Self-registered accounts
// always start as staff; higher roles are created through /staff by a
// manager or admin.
func (h *Handler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to process password",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	profile, err := h.DB.CreateProfile(ctx, models.CreateStaffRequest{
		Email:    req.Email,
		Name:     req.Name,
		Role:     models.RoleStaff,
		Phone:    req.Phone,
		BranchID: req.BranchID,
	}, string(hash))
	if err != nil {
		if isDuplicateEmailError(err) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "Email already registered",
				Message: "An account with this email already exists",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to create account",
			Message: err.Error(),
		})
		return
	}

	session, err := h.issueSession(ctx, c, profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to create session",
			Message: err.Error(),
		})
		return
	}

	h.logActivity(profile.ID, "signup", map[string]interface{}{"ip": getClientIP(c)})
	c.JSON(http.StatusCreated, session)
}

// Login handles email/password authentication.
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	profile, hash, err := h.DB.GetCredentialsByEmail(ctx, req.Email)
	if err != nil {
		// Do not reveal whether the email exists
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "Invalid credentials",
			Message: "Email or password is incorrect",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "Invalid credentials",
			Message: "Email or password is incorrect",
		})
		return
	}

	session, err := h.issueSession(ctx, c, profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to create session",
			Message: err.Error(),
		})
		return
	}

	// Access bookkeeping and audit are best-effort; login already succeeded.
	if err := h.DB.RecordAccess(ctx, profile.ID); err != nil {
		c.Error(err)
	}
	h.logActivity(profile.ID, "login", map[string]interface{}{"ip": getClientIP(c)})

	c.JSON(http.StatusOK, session)
}

// RefreshWithRefreshToken exchanges a refresh token for a new access token.
// By default it DOES NOT rotate the refresh token unless rotate=true is provided.
type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
	Rotate       *bool  `json:"rotate,omitempty"`
}

func (h *Handler) Refresh(c *gin.Context) {
	var req refreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request", Message: "refresh_token is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	hash := hashRefreshTokenString(req.RefreshToken)
	id, userID, expiresAt, revoked, err := h.DB.GetRefreshToken(ctx, hash)
	if err != nil || revoked || time.Now().After(expiresAt) {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid refresh token", Message: "Token is invalid, expired, or revoked"})
		return
	}

	profile, err := h.DB.GetProfileByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid refresh token", Message: "The token's user no longer exists"})
		return
	}

	token, err := generateJWTToken(profile.ID, profile.Email, profile.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token", Message: err.Error()})
		return
	}
	accessExpiresAt := time.Now().Add(accessTokenTTL())

	rotate := req.Rotate != nil && *req.Rotate
	if rotate {
		_ = h.DB.RevokeRefreshToken(ctx, id)
		plainRefresh, err := generateRefreshTokenString(32)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate refresh token", Message: err.Error()})
			return
		}
		refreshExpiresAt := time.Now().Add(refreshTokenTTL())
		if _, err := h.DB.CreateRefreshToken(ctx, userID, hashRefreshTokenString(plainRefresh),
			refreshExpiresAt, getClientIP(c), c.GetHeader("User-Agent")); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to persist refresh token", Message: err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":              token,
			"expires_at":         accessExpiresAt,
			"refresh_token":      plainRefresh,
			"refresh_expires_at": refreshExpiresAt,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": accessExpiresAt,
	})
}

// bestEffortUserID pulls the user_id claim from the Authorization
// header without requiring a valid signature or expiry. Sign-out must
// work with a token that just expired, so the claim is only used to
// pick which refresh tokens to revoke, never to grant access.
func bestEffortUserID(c *gin.Context) string {
	if id := currentUserID(c); id != "" {
		return id
	}
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(parts[1], claims); err != nil {
		return ""
	}
	id, _ := claims["user_id"].(string)
	return id
}

// Logout revokes the caller's refresh tokens. It always answers 200:
// an expired access token, a failed revoke or an audit write after
// sign-out must not surface as an error to a client that has already
// dropped its session.
func (h *Handler) Logout(c *gin.Context) {
	userID := bestEffortUserID(c)
	if userID != "" && h.DB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.DB.RevokeUserRefreshTokens(ctx, userID); err != nil {
			c.Error(err)
		}
		h.logActivity(userID, "logout", nil)
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Message: "Signed out"})
}
