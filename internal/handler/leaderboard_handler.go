package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/mcq-engine/internal/middleware"
	"github.com/stemsi/mcq-engine/internal/response"
	"github.com/stemsi/mcq-engine/internal/service"
)

// LeaderboardHandler serves rankings and the caller's score history.
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
	defaultSize        int
	recentLimit        int
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService, defaultSize, recentLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		defaultSize:        defaultSize,
		recentLimit:        recentLimit,
	}
}

// TopN godoc
// GET /api/v1/leaderboard?exam=&topic=&limit=
// Ranks users by their best score on one exam topic.
func (h *LeaderboardHandler) TopN(c *gin.Context) {
	exam := c.Query("exam")
	topic := c.Query("topic")
	if exam == "" || topic == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"exam":  "exam and topic are required",
			"topic": "exam and topic are required",
		})
		return
	}

	limit, ok := queryInt(c, "limit", h.defaultSize)
	if !ok {
		return
	}

	entries, err := h.leaderboardService.TopN(c.Request.Context(), exam, topic, limit)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"exam":    exam,
		"topic":   topic,
		"entries": entries,
	})
}

// MyScores godoc
// GET /api/v1/scores/me?limit=
// Lists the caller's latest completed tests.
func (h *LeaderboardHandler) MyScores(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	limit, ok := queryInt(c, "limit", h.recentLimit)
	if !ok {
		return
	}

	records, err := h.leaderboardService.RecentScores(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"scores": records})
}

// queryInt reads an optional positive integer query parameter, writing a
// validation error when it is malformed or below one.
func queryInt(c *gin.Context, key string, fallback int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			key: key + " must be a positive integer",
		})
		return 0, false
	}
	return n, true
}
