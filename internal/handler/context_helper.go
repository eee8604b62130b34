package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/lepakmasjid/directory-api/internal/middleware"
	"github.com/lepakmasjid/directory-api/internal/models"
)

// claimsFromContext extracts validated JWT claims set by the auth middleware.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	raw, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, ok := raw.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
