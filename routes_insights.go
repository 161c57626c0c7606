package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"celluiq/models"
	"celluiq/services"
)

type shoppingGenerator interface {
	Generate(ctx context.Context, userID string) ([]models.ShoppingItem, error)
}

type shoppingItems interface {
	ListByUser(ctx context.Context, userID string) ([]models.ShoppingItem, error)
	SetChecked(ctx context.Context, userID string, id uint, checked bool) (*models.ShoppingItem, error)
}

func setupRecommendationRoutes(rg *gin.RouterGroup, insights insightReader, log *zap.Logger) {
	g := rg.Group("/recommendations")

	g.GET("/markers", func(c *gin.Context) {
		recs, err := insights.Recommendations(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, log, err, "Marker recommendations failed")
			return
		}
		shown := services.TruncateForDisplay(recs, services.DisplayLimit)
		c.JSON(http.StatusOK, gin.H{"recommendations": shown, "total": len(recs)})
	})

	g.GET("/markers/export", func(c *gin.Context) {
		recs, err := insights.Recommendations(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, log, err, "Marker list export failed")
			return
		}
		now := time.Now()
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.MarkerListFileName(now)))
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(services.FormatMarkerList(recs, now)))
	})

	g.GET("/routine", func(c *gin.Context) {
		routine, err := insights.Routine(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, log, err, "Routine suggestions failed")
			return
		}
		c.JSON(http.StatusOK, routine)
	})

	g.GET("/supplements", func(c *gin.Context) {
		suggestions, err := insights.Supplements(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, log, err, "Supplement suggestions failed")
			return
		}
		c.JSON(http.StatusOK, suggestions)
	})
}

func setupDashboardRoutes(rg *gin.RouterGroup, insights insightReader, log *zap.Logger) {
	rg.GET("/dashboard", func(c *gin.Context) {
		summary, err := insights.Dashboard(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, log, err, "Dashboard failed")
			return
		}
		c.JSON(http.StatusOK, summary)
	})
}

func setupShoppingRoutes(rg *gin.RouterGroup, generator shoppingGenerator, items shoppingItems, log *zap.Logger) {
	g := rg.Group("/shopping-list")

	g.GET("", func(c *gin.Context) {
		list, err := items.ListByUser(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, log, err, "Loading shopping list failed")
			return
		}
		c.JSON(http.StatusOK, list)
	})

	g.POST("/generate", func(c *gin.Context) {
		list, err := generator.Generate(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, log, err, "Generating shopping list failed")
			return
		}
		c.JSON(http.StatusCreated, list)
	})

	g.PATCH("/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		var req struct {
			Checked *bool `json:"checked"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Checked == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "checked is required"})
			return
		}
		item, err := items.SetChecked(c.Request.Context(), currentUser(c), uint(id), *req.Checked)
		if err != nil {
			respondError(c, log, err, "Updating shopping item failed")
			return
		}
		c.JSON(http.StatusOK, item)
	})
}
