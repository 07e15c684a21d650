package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/bus-tracker-api/internal/middleware"
	"github.com/noah-isme/bus-tracker-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	if v, ok := c.Get(middleware.ContextUserKey); ok {
		if claims, ok := v.(*models.JWTClaims); ok {
			return claims
		}
	}
	return nil
}
