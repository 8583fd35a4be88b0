package server

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/ecosort/ecosort/internal/classify"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type classifyRequest struct {
	Image string `json:"image"`
}

// dataURIPrefix matches the "data:image/...;base64," prefix browsers put in
// front of canvas and FileReader output.
var dataURIPrefix = regexp.MustCompile(`^data:image/[a-zA-Z0-9.+-]+;base64,`)

func (s *Server) handleClassify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Image) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image data provided"})
		return
	}

	payload := dataURIPrefix.ReplaceAllString(strings.TrimSpace(req.Image), "")
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image data"})
		return
	}
	if int64(len(raw)) > s.cfg.MaxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image exceeds maximum size"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	classification, err := s.classifier.Classify(ctx, raw, "image/jpeg")
	if err != nil {
		// A parse failure never lands here; the classifier absorbs it
		// into the fallback result. This is the model call itself
		// failing.
		log.Error().Err(err).Msg("classification failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to classify image",
			"details": err.Error(),
			"type":    errorKind(err),
		})
		return
	}

	result := classification.Result
	if result == nil {
		result = classify.FallbackResult()
	}
	result.Normalize()

	log.Info().
		Str("materialType", string(result.MaterialType)).
		Str("binColor", string(result.BinColor)).
		Bool("recyclable", result.Recyclable).
		Int64("tokens", classification.Usage.TotalTokens).
		Float64("costUSD", classification.Usage.CostUSD).
		Msg("image classified")

	c.JSON(http.StatusOK, gin.H{"result": result})
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "model_error"
	}
}

func (s *Server) handleClassifyTest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Classify route is working!"})
}

func (s *Server) handleMaterials(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"materials": classify.MaterialTable(),
		"binColors": classify.BinColors,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"geminiConfigured": s.cfg.GeminiAPIKey != "",
	})
}
