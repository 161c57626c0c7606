package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"celluiq/models"
	"celluiq/providers/brevo"
	"celluiq/storage"
)

type profileStore interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	Upsert(ctx context.Context, p *models.UserProfile) error
}

type contactAdder interface {
	AddContact(ctx context.Context, email, fullName string) error
}

// loadOrNewProfile gibt das gespeicherte Profil zurück oder ein leeres mit Geschlecht "both".
func loadOrNewProfile(ctx context.Context, profiles profileStore, userID string) (*models.UserProfile, error) {
	p, err := profiles.Get(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.UserProfile{ID: userID, Gender: models.GenderBoth}, nil
	}
	return p, err
}

func setupProfileRoutes(rg *gin.RouterGroup, profiles profileStore, log *zap.Logger) {
	g := rg.Group("/profile")

	g.GET("", func(c *gin.Context) {
		p, err := loadOrNewProfile(c.Request.Context(), profiles, currentUser(c))
		if err != nil {
			respondError(c, log, err, "Loading profile failed")
			return
		}
		c.JSON(http.StatusOK, p)
	})

	g.PUT("", func(c *gin.Context) {
		var req struct {
			Gender   *string `json:"gender"`
			FullName *string `json:"full_name"`
			Email    *string `json:"email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		p, err := loadOrNewProfile(c.Request.Context(), profiles, currentUser(c))
		if err != nil {
			respondError(c, log, err, "Loading profile failed")
			return
		}
		if req.Gender != nil {
			p.Gender = models.ParseGender(*req.Gender)
		}
		if req.FullName != nil {
			p.FullName = strings.TrimSpace(*req.FullName)
		}
		if req.Email != nil {
			p.Email = strings.TrimSpace(*req.Email)
		}
		if err := profiles.Upsert(c.Request.Context(), p); err != nil {
			respondError(c, log, err, "Saving profile failed")
			return
		}
		c.JSON(http.StatusOK, p)
	})
}

// setupWebhookRoutes verarbeitet den Webhook beim Anlegen eines Nutzers: Profil anlegen und
// Kontakt in Brevo eintragen.
func setupWebhookRoutes(router *gin.Engine, secret string, profiles profileStore, contacts contactAdder, log *zap.Logger) {
	router.POST("/webhooks/welcome", func(c *gin.Context) {
		if secret != "" && subtle.ConstantTimeCompare([]byte(c.GetHeader("X-Webhook-Secret")), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return
		}

		var payload brevo.WelcomePayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
			return
		}
		email := strings.TrimSpace(payload.Record.Email)
		if payload.Record.ID == "" || email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "record id and email are required"})
			return
		}
		fullName := strings.TrimSpace(payload.Record.RawUserMetaData.FullName)

		p, err := loadOrNewProfile(c.Request.Context(), profiles, payload.Record.ID)
		if err != nil {
			respondError(c, log, err, "Loading profile failed")
			return
		}
		p.Email = email
		if fullName != "" {
			p.FullName = fullName
		}
		if err := profiles.Upsert(c.Request.Context(), p); err != nil {
			respondError(c, log, err, "Saving profile failed")
			return
		}

		if err := contacts.AddContact(c.Request.Context(), email, fullName); err != nil {
			log.Error("Brevo contact creation failed", zap.String("user_id", payload.Record.ID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "contact creation failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Welcome processed."})
	})
}
