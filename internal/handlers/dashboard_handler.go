package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/typeform-survey/survey-client/internal/models"
	"github.com/typeform-survey/survey-client/internal/services"
	"github.com/typeform-survey/survey-client/pkg/logger"
	"go.uber.org/zap"
)

// DashboardHandler serves the results dashboard chart data
type DashboardHandler struct {
	service services.ResultsServiceInterface
}

func NewDashboardHandler(service services.ResultsServiceInterface) *DashboardHandler {
	return &DashboardHandler{service: service}
}

type professionQuery struct {
	Profession string `form:"profession" binding:"required,max=64"`
}

type questionQuery struct {
	Profession string `form:"profession" binding:"required,max=64"`
	Question   string `form:"question" binding:"required,max=64"`
}

// StaleHeader marks a response built from an older list because the latest refetch failed
const StaleHeader = "X-Results-Stale"

// ensureLoaded fetches submissions when none are cached or they are stale.
// It reports false after writing an error response.
func (h *DashboardHandler) ensureLoaded(c *gin.Context) bool {
	stale, err := h.service.EnsureFresh(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return false
	}
	if stale {
		c.Header(StaleHeader, "true")
	}
	return true
}

func bindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid query", ParseValidationErrors(err), err)
		return false
	}
	return true
}

func parseProfession(c *gin.Context, raw string) (models.Profession, bool) {
	p, err := models.ParseProfession(raw)
	if err != nil {
		respondServiceError(c, err)
		return "", false
	}
	return p, true
}

// Summary returns headline totals
func (h *DashboardHandler) Summary(c *gin.Context) {
	if !h.ensureLoaded(c) {
		return
	}
	c.JSON(http.StatusOK, h.service.Summary())
}

// Professions returns the profession overview chart
func (h *DashboardHandler) Professions(c *gin.Context) {
	if !h.ensureLoaded(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"professions": h.service.ProfessionDistribution()})
}

// Distribution returns the option counts of one choice question
func (h *DashboardHandler) Distribution(c *gin.Context) {
	var q questionQuery
	if !bindQuery(c, &q) {
		return
	}
	p, ok := parseProfession(c, q.Profession)
	if !ok || !h.ensureLoaded(c) {
		return
	}

	dist, err := h.service.DistributionFor(p, q.Question)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dist)
}

// Questions returns the distributions of every choice question of a profession
func (h *DashboardHandler) Questions(c *gin.Context) {
	var q professionQuery
	if !bindQuery(c, &q) {
		return
	}
	p, ok := parseProfession(c, q.Profession)
	if !ok || !h.ensureLoaded(c) {
		return
	}

	dists, err := h.service.QuestionDistributions(p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profession": p, "questions": dists})
}

// Responses lists free-text answers to a question
func (h *DashboardHandler) Responses(c *gin.Context) {
	var q questionQuery
	if !bindQuery(c, &q) {
		return
	}
	p, ok := parseProfession(c, q.Profession)
	if !ok || !h.ensureLoaded(c) {
		return
	}

	rows, err := h.service.TextResponses(p, q.Question)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"responses": rows})
}

// Refresh re-fetches the submissions list
func (h *DashboardHandler) Refresh(c *gin.Context) {
	start := time.Now()
	if err := h.service.FetchAll(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}

	summary := h.service.Summary()
	logger.Info("Dashboard data refreshed",
		zap.Int("total_responses", summary.TotalResponses),
		zap.Duration("duration", time.Since(start)))
	c.JSON(http.StatusOK, summary)
}
