package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"celluiq/models"
	"celluiq/services"
	"celluiq/storage"
)

type insightReader interface {
	ListMarkers(ctx context.Context, userID, sortKey string) ([]models.BloodMarker, error)
	Latest(ctx context.Context, userID string) ([]models.BloodMarker, error)
	Dashboard(ctx context.Context, userID string) (*services.DashboardSummary, error)
	Recommendations(ctx context.Context, userID string) ([]services.Recommendation, error)
	Routine(ctx context.Context, userID string) ([]services.RoutineSuggestion, error)
	Supplements(ctx context.Context, userID string) (*services.SupplementSuggestions, error)
}

type manualEntry interface {
	Add(ctx context.Context, userID string, entry services.ManualEntry) (*models.BloodMarker, error)
}

func setupMarkerRoutes(rg *gin.RouterGroup, insights insightReader, manual manualEntry, log *zap.Logger) {
	g := rg.Group("/markers")

	g.GET("", func(c *gin.Context) {
		sortKey := c.DefaultQuery("sort", "-test_date")
		if !storage.ValidMarkerSort(sortKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported sort key"})
			return
		}
		markers, err := insights.ListMarkers(c.Request.Context(), currentUser(c), sortKey)
		if err != nil {
			respondError(c, log, err, "Listing markers failed")
			return
		}
		c.JSON(http.StatusOK, markers)
	})

	g.GET("/latest", func(c *gin.Context) {
		markers, err := insights.Latest(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, log, err, "Loading latest markers failed")
			return
		}
		c.JSON(http.StatusOK, markers)
	})

	g.POST("/manual", func(c *gin.Context) {
		var req services.ManualEntry
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		marker, err := manual.Add(c.Request.Context(), currentUser(c), req)
		if err != nil {
			respondError(c, log, err, "Manual marker entry failed")
			return
		}
		c.JSON(http.StatusCreated, marker)
	})
}

func setupReferenceRoutes(rg *gin.RouterGroup, catalog services.CatalogProvider, profiles services.ProfileReader, log *zap.Logger) {
	g := rg.Group("/references")

	g.GET("/search", func(c *gin.Context) {
		entries, err := catalog.References(c.Request.Context())
		if err != nil {
			respondError(c, log, err, "Loading reference catalog failed")
			return
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(services.DefaultSearchLimit)))
		if err != nil || limit <= 0 {
			limit = services.DefaultSearchLimit
		}
		gender := userGenderFor(c, profiles, currentUser(c))
		results := services.SearchReferences(c.Query("q"), gender, entries, limit)
		if results == nil {
			results = []models.ReferenceEntry{}
		}
		c.JSON(http.StatusOK, results)
	})

	g.GET("/units", func(c *gin.Context) {
		entries, err := catalog.References(c.Request.Context())
		if err != nil {
			respondError(c, log, err, "Loading reference catalog failed")
			return
		}
		c.JSON(http.StatusOK, services.UnitOptions(entries))
	})
}
