package controller

import (
	"time"

	"maang_tracker_backend/internal/service"
	"maang_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DailyTaskController struct {
	TaskService *service.DailyTaskService
}

func NewDailyTaskController(taskService *service.DailyTaskService) *DailyTaskController {
	return &DailyTaskController{TaskService: taskService}
}

// TasksForDay godoc
// @Summary Today's adaptive task list
// @Description Selects and persists 2-3 tasks on first call of the day;
// @Description subsequent calls return the same list.
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD, defaults to today in the user's timezone"
// @Success 200 {object} util.Response{data=model.DailyTaskList}
// @Failure 400 {object} util.Response
// @Router /api/daily-tasks [get]
func (c *DailyTaskController) TasksForDay(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	date := ctx.Query("date")
	if date == "" {
		date = c.TaskService.DayString(claims.UserID, time.Now())
	}

	list, err := c.TaskService.TasksForDay(ctx.Request.Context(), claims.UserID, date)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// swagger:model CompleteTaskRequest
type CompleteTaskRequest struct {
	Date string `json:"date"`
}

// CompleteTask godoc
// @Summary Mark a daily task completed
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param problemId path string true "problem id"
// @Param body body CompleteTaskRequest false "task day, defaults to today"
// @Success 200 {object} util.Response{data=model.DailyTask}
// @Failure 400 {object} util.Response "no such task that day"
// @Router /api/daily-tasks/{problemId}/complete [post]
func (c *DailyTaskController) CompleteTask(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	problemID := ctx.Param("problemId")

	var req CompleteTaskRequest
	_ = ctx.ShouldBindJSON(&req)
	date := req.Date
	if date == "" {
		date = c.TaskService.DayString(claims.UserID, time.Now())
	}

	task, err := c.TaskService.CompleteTask(ctx.Request.Context(), claims.UserID, date, problemID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	util.Success(ctx, task)
}
