package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/mcq-engine/internal/middleware"
	"github.com/stemsi/mcq-engine/internal/response"
)

// AuthHandler exposes the identity carried by the caller's token.
type AuthHandler struct{}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// GetProfile godoc
// GET /api/v1/auth/me
// Returns the user identity and expiry of the current token.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var expiresAt interface{}
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": gin.H{
			"id":         claims.UserID,
			"token_id":   claims.ID,
			"expires_at": expiresAt,
		},
	})
}
