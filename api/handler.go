package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"recommend-service/events"
	"recommend-service/metrics"
	"recommend-service/model"
	"recommend-service/pipeline"
)

// Recommender produces the final recommendation for a user.
type Recommender interface {
	Recommend(ctx context.Context, userID string) (*pipeline.Recommendation, error)
}

// DiagnosticsRunner produces a full backend health report.
type DiagnosticsRunner interface {
	Run(ctx context.Context) model.DiagnosticsReport
}

type Handler struct {
	recommender Recommender
	diagnostics DiagnosticsRunner
	events      *events.Publisher
}

func NewHandler(r Recommender, d DiagnosticsRunner, ev *events.Publisher) *Handler {
	return &Handler{recommender: r, diagnostics: d, events: ev}
}

type recommendResponse struct {
	UserID      string                `json:"user_id"`
	Source      model.Origin          `json:"source"`
	Stale       bool                  `json:"stale"`
	GeneratedAt time.Time             `json:"generated_at"`
	Products    []model.ProductRecord `json:"products"`
	Explanation string                `json:"explanation,omitempty"`
}

func (h *Handler) recommend(c *gin.Context) {
	userID := c.Param("user_id")

	rec, err := h.recommender.Recommend(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Recommendation failed for user=%s request_id=%s: %v",
			userID, c.GetString("request_id"), err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "AllSourcesFailed",
			"detail": err.Error(),
		})
		return
	}

	metrics.RecommendationsServed.WithLabelValues(
		string(rec.Result.Origin), boolLabel(rec.Result.Stale)).Inc()

	h.events.PublishRecommendation(events.RecommendationEvent{
		UserID: userID,
		Source: rec.Result.Origin,
		Stale:  rec.Result.Stale,
		Count:  len(rec.Products),
	})

	c.JSON(http.StatusOK, recommendResponse{
		UserID:      userID,
		Source:      rec.Result.Origin,
		Stale:       rec.Result.Stale,
		GeneratedAt: rec.Result.FetchedAt,
		Products:    rec.Products,
		Explanation: rec.Explanation,
	})
}

func (h *Handler) healthDetails(c *gin.Context) {
	report := h.diagnostics.Run(c.Request.Context())

	h.events.PublishDiagnostics(report)

	// Probe failures are data, never an error response.
	c.JSON(http.StatusOK, report)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
