package controller

import (
	"strconv"

	"maang_tracker_backend/internal/service"
	"maang_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AnalyticsController serves the read side of the learning core: weakness
// profile, roadmap, summary and the rebuild escape hatch.
type AnalyticsController struct {
	MasteryService  *service.MasteryService
	WeaknessService *service.WeaknessService
	RoadmapService  *service.RoadmapService
}

func NewAnalyticsController(
	masteryService *service.MasteryService,
	weaknessService *service.WeaknessService,
	roadmapService *service.RoadmapService,
) *AnalyticsController {
	return &AnalyticsController{
		MasteryService:  masteryService,
		WeaknessService: weaknessService,
		RoadmapService:  roadmapService,
	}
}

// WeaknessProfile godoc
// @Summary Ranked weakness profile, weakest topics first
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.TopicWeakness}
// @Router /api/weakness-profile [get]
func (c *AnalyticsController) WeaknessProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	profile, err := c.WeaknessService.Profile(ctx.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// Roadmap godoc
// @Summary Study roadmap over a weekly horizon
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param weeks query int false "horizon in weeks, defaults to configured value"
// @Success 200 {object} util.Response{data=model.Roadmap}
// @Router /api/roadmap [get]
func (c *AnalyticsController) Roadmap(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	weeks := 0
	if raw := ctx.Query("weeks"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 104 {
			util.BadRequest(ctx, "weeks must be a positive integer up to 104")
			return
		}
		weeks = parsed
	}

	roadmap, err := c.RoadmapService.Roadmap(ctx.Request.Context(), claims.UserID, weeks)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, roadmap)
}

// Summary godoc
// @Summary Aggregate progress summary
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.UserSummary}
// @Router /api/summary [get]
func (c *AnalyticsController) Summary(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	summary, err := c.MasteryService.Summary(ctx.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// RebuildMastery godoc
// @Summary Rebuild derived mastery state from the event log
// @Description Wipes derived rows and replays every event. Clears quarantine.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "user busy"
// @Router /api/mastery/rebuild [post]
func (c *AnalyticsController) RebuildMastery(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	if err := c.MasteryService.RebuildFromLog(ctx.Request.Context(), claims.UserID); err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"rebuilt": true})
}
