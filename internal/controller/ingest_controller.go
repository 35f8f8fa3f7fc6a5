package controller

import (
	"time"

	"maang_tracker_backend/internal/model"
	"maang_tracker_backend/internal/service"
	"maang_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// IngestController is the write surface of the learning core: evidence comes
// in here and nowhere else.
type IngestController struct {
	MasteryService    *service.MasteryService
	ClassifierService *service.ClassifierService
}

func NewIngestController(masteryService *service.MasteryService, classifierService *service.ClassifierService) *IngestController {
	return &IngestController{
		MasteryService:    masteryService,
		ClassifierService: classifierService,
	}
}

// IngestAttempt godoc
// @Summary Record a problem attempt
// @Description Appends an attempt event and recomputes mastery for the caller.
// @Tags ingest
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AttemptRequest true "attempt"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response "unknown problem"
// @Failure 409 {object} util.Response "user busy or quarantined"
// @Router /api/ingest/attempts [post]
func (c *IngestController) IngestAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	var req service.AttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	pm, err := c.MasteryService.IngestAttempt(ctx.Request.Context(), claims.UserID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	proficiency, err := c.MasteryService.TopicProficiency(claims.UserID, pm.TopicID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"masteryLevel":     pm.MasteryLevel,
		"topicProficiency": proficiency,
	})
}

// IngestFollowUp godoc
// @Summary Record a follow-up answer
// @Tags ingest
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.FollowUpRequest true "follow-up"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response "unknown problem"
// @Router /api/ingest/follow-ups [post]
func (c *IngestController) IngestFollowUp(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	var req service.FollowUpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	pm, err := c.MasteryService.IngestFollowUp(ctx.Request.Context(), claims.UserID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"masteryLevel": pm.MasteryLevel,
		"verified":     pm.MasteryLevel >= model.MasteryVerified,
	})
}

// IngestStudy godoc
// @Summary Record topic study time
// @Tags ingest
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.StudyRequest true "study session"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response "unknown topic"
// @Router /api/ingest/study [post]
func (c *IngestController) IngestStudy(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	var req service.StudyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tc, err := c.MasteryService.IngestStudy(ctx.Request.Context(), claims.UserID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"topicProficiency": tc.ProficiencyLevel,
	})
}

// ListEvents godoc
// @Summary The caller's evidence log
// @Description Events in chronological order; ties on timestamp keep
// @Description insertion order.
// @Tags ingest
// @Produce json
// @Security BearerAuth
// @Param since query string false "RFC3339 lower bound"
// @Param kind query string false "attempt | follow_up | study"
// @Success 200 {object} util.Response{data=[]model.Event}
// @Failure 400 {object} util.Response
// @Router /api/events [get]
func (c *IngestController) ListEvents(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var since *time.Time
	if raw := ctx.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			util.BadRequest(ctx, "since must be RFC3339")
			return
		}
		since = &t
	}

	events, err := c.MasteryService.EventLog(claims.UserID, since, model.EventKind(ctx.Query("kind")))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, events)
}

// Classify godoc
// @Summary Classify raw evidence into a canonical topic
// @Tags ingest
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.RawEvidence true "raw evidence"
// @Success 200 {object} util.Response{data=model.ClassifiedEvidence}
// @Router /api/classify [post]
func (c *IngestController) Classify(ctx *gin.Context) {
	var raw service.RawEvidence
	if err := ctx.ShouldBindJSON(&raw); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, c.ClassifierService.Classify(raw))
}
