package main

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"celluiq/models"
	"celluiq/services"
)

type bloodWorkPipeline interface {
	Run(ctx context.Context, doc services.Document, userID string, gender models.Gender) (*services.PipelineResult, error)
	Upload(ctx context.Context, doc services.Document, userID string) (*models.BloodWork, error)
	Process(ctx context.Context, bw *models.BloodWork, gender models.Gender) (*services.PipelineResult, error)
}

type bloodWorkLister interface {
	ListByUser(ctx context.Context, userID string) ([]models.BloodWork, error)
	Get(ctx context.Context, userID, id string) (*models.BloodWork, error)
}

var allowedUploadTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

func setupBloodWorkRoutes(rg *gin.RouterGroup, pipeline bloodWorkPipeline, uploads bloodWorkLister, profiles services.ProfileReader, maxBytes int64, log *zap.Logger) {
	g := rg.Group("/blood-work")

	g.POST("/upload", func(c *gin.Context) {
		userID := currentUser(c)

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if fileHeader.Size > maxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		contentType, ok := allowedUploadTypes[strings.ToLower(filepath.Ext(fileHeader.Filename))]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only PDF, PNG and JPG files are supported"})
			return
		}

		f, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
			return
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
		if err != nil || int64(len(data)) > maxBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
			return
		}
		doc := services.Document{FileName: fileHeader.Filename, ContentType: contentType, Data: data}

		async, _ := strconv.ParseBool(c.PostForm("async"))
		if async {
			bw, err := pipeline.Upload(c.Request.Context(), doc, userID)
			if err != nil {
				respondError(c, log, err, "Upload failed")
				return
			}
			c.JSON(http.StatusAccepted, bw)
			return
		}

		gender := userGenderFor(c, profiles, userID)
		res, err := pipeline.Run(c.Request.Context(), doc, userID, gender)
		if err != nil {
			respondError(c, log, err, "Blood work pipeline failed")
			return
		}
		c.JSON(http.StatusCreated, res)
	})

	g.GET("", func(c *gin.Context) {
		list, err := uploads.ListByUser(c.Request.Context(), currentUser(c))
		if err != nil {
			respondError(c, log, err, "Listing blood work failed")
			return
		}
		c.JSON(http.StatusOK, list)
	})

	g.GET("/:id", func(c *gin.Context) {
		bw, err := uploads.Get(c.Request.Context(), currentUser(c), c.Param("id"))
		if err != nil {
			respondError(c, log, err, "Loading blood work failed")
			return
		}
		c.JSON(http.StatusOK, bw)
	})

	// Erneute Verarbeitung, z.B. nach einem Fehler der Extraktion
	g.POST("/:id/process", func(c *gin.Context) {
		userID := currentUser(c)
		bw, err := uploads.Get(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			respondError(c, log, err, "Loading blood work failed")
			return
		}
		switch bw.Status {
		case models.BloodWorkProcessed:
			c.JSON(http.StatusConflict, gin.H{"error": "blood work already processed"})
			return
		case models.BloodWorkExtracting:
			c.JSON(http.StatusConflict, gin.H{"error": "blood work is being processed"})
			return
		}
		gender := userGenderFor(c, profiles, userID)

		go func() {
			if _, err := pipeline.Process(context.Background(), bw, gender); err != nil {
				log.Warn("Async blood work processing failed", zap.String("blood_work_id", bw.ID), zap.Error(err))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Processing triggered.", "blood_work_id": bw.ID})
	})
}

func userGenderFor(c *gin.Context, profiles services.ProfileReader, userID string) models.Gender {
	if profiles == nil {
		return models.GenderBoth
	}
	p, err := profiles.Get(c.Request.Context(), userID)
	if err != nil {
		return models.GenderBoth
	}
	return models.ParseGender(string(p.Gender))
}
