package controller

import (
	"maang_tracker_backend/internal/service"
	"maang_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InterviewController struct {
	InterviewService *service.InterviewService
	MentorService    *service.MentorService
	WeaknessService  *service.WeaknessService
}

func NewInterviewController(
	interviewService *service.InterviewService,
	mentorService *service.MentorService,
	weaknessService *service.WeaknessService,
) *InterviewController {
	return &InterviewController{
		InterviewService: interviewService,
		MentorService:    mentorService,
		WeaknessService:  weaknessService,
	}
}

// Start godoc
// @Summary Open a mock interview session
// @Tags interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.StartInterviewRequest false "optional topic pin"
// @Success 201 {object} util.Response{data=model.InterviewSession}
// @Failure 404 {object} util.Response "unknown topic"
// @Router /api/interviews [post]
func (c *InterviewController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	var req service.StartInterviewRequest
	_ = ctx.ShouldBindJSON(&req)

	session, err := c.InterviewService.Start(claims.UserID, req)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

// Submit godoc
// @Summary Submit an answer inside a session
// @Description Grades the submission into the evidence log and returns
// @Description structured feedback, with mentor prose when the oracle is up.
// @Tags interviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "session id"
// @Param body body service.InterviewSubmission true "submission"
// @Success 200 {object} util.Response{data=model.InterviewFeedback}
// @Failure 404 {object} util.Response "session or problem not found"
// @Failure 409 {object} util.Response "session finished"
// @Router /api/interviews/{sessionId}/submit [post]
func (c *InterviewController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	var sub service.InterviewSubmission
	if err := ctx.ShouldBindJSON(&sub); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	feedback, err := c.InterviewService.Submit(ctx.Request.Context(), claims.UserID, ctx.Param("sessionId"), sub)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, feedback)
}

// Finish godoc
// @Summary Close a session
// @Tags interviews
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "session id"
// @Success 200 {object} util.Response{data=model.InterviewSession}
// @Router /api/interviews/{sessionId}/finish [post]
func (c *InterviewController) Finish(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	session, err := c.InterviewService.Finish(claims.UserID, ctx.Param("sessionId"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

// History godoc
// @Summary Recent interview sessions
// @Tags interviews
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.InterviewSession}
// @Router /api/interviews [get]
func (c *InterviewController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	sessions, err := c.InterviewService.History(claims.UserID, 20)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

// swagger:model MentorAskRequest
type MentorAskRequest struct {
	Question string `json:"question" binding:"required"`
}

// MentorAsk godoc
// @Summary Ask the mentor a coaching question
// @Tags mentor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MentorAskRequest true "question"
// @Success 200 {object} util.Response{data=object}
// @Failure 503 {object} util.Response "oracle unavailable"
// @Router /api/mentor/ask [post]
func (c *InterviewController) MentorAsk(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	var req MentorAskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	profile, err := c.WeaknessService.Profile(ctx.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	answer, err := c.MentorService.Ask(ctx.Request.Context(), req.Question, profile)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"answer": answer})
}
