package main

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"celluiq/config"
	"celluiq/services"
	"celluiq/storage"
)

const userIDKey = "user_id"

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(cfg.APISecretKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

// requireUser liest die Nutzer-ID aus X-User-ID. Die Authentifizierung übernimmt das Gateway.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	origins := cfg.AllowedOrigins()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	corsCfg.AddAllowHeaders("X-API-KEY", "X-User-ID")
	return cors.New(corsCfg)
}

// respondError übersetzt Service-Fehler in HTTP-Antworten.
func respondError(c *gin.Context, log *zap.Logger, err error, msg string) {
	switch {
	case errors.Is(err, services.ErrNoMarkersFound):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no markers found"})
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrUploadFailed):
		log.Error(msg, zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
	case errors.Is(err, services.ErrExtractionFailed):
		log.Error(msg, zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "extraction failed"})
	case errors.Is(err, services.ErrPersistFailed):
		log.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save markers"})
	default:
		log.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
