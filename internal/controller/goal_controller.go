package controller

import (
	"errors"

	"github.com/gin-gonic/gin"

	"learner_analytics_backend/internal/model"
	"learner_analytics_backend/internal/service"
	"learner_analytics_backend/internal/util"
)

type GoalController struct {
	GoalService *service.GoalService
}

func NewGoalController(goalService *service.GoalService) *GoalController {
	return &GoalController{GoalService: goalService}
}

// @Summary 创建学习目标
// @Description 创建"在目标日期前达到目标能力值"的学习目标
// @Tags 目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateGoalInput true "目标定义"
// @Success 201 {object} util.Response
// @Router /api/goals [post]
func (c *GoalController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var input service.CreateGoalInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, "请求体格式错误: "+err.Error())
		return
	}

	goal, err := c.GoalService.CreateGoal(user.UserID, input)
	if err != nil {
		if errors.Is(err, util.ErrInvalidGoal) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, goal)
}

// @Summary 获取学习目标列表
// @Tags 目标
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/goals [get]
func (c *GoalController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	goals, err := c.GoalService.ListGoals(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, goals)
}

type updateGoalStatusRequest struct {
	Status model.GoalStatus `json:"status" binding:"required,oneof=active completed abandoned"`
}

// @Summary 更新目标状态
// @Description 标记目标为完成或放弃
// @Tags 目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param goalId path int true "目标ID"
// @Param request body updateGoalStatusRequest true "新状态"
// @Success 200 {object} util.Response
// @Router /api/goals/{goalId}/status [patch]
func (c *GoalController) UpdateStatus(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	goalID := util.MustParseUint(ctx.Param("goalId"))
	var req updateGoalStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "请求体格式错误: "+err.Error())
		return
	}

	if err := c.GoalService.UpdateStatus(user.UserID, goalID, req.Status); err != nil {
		if errors.Is(err, util.ErrGoalNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// @Summary 获取目标达成预测
// @Description 基于当前能力轨迹预测目标达成概率与风险状态
// @Tags 目标
// @Produce json
// @Security BearerAuth
// @Param goalId path int true "目标ID"
// @Success 200 {object} util.Response
// @Router /api/goals/{goalId}/prediction [get]
func (c *GoalController) Prediction(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	goalID := util.MustParseUint(ctx.Param("goalId"))
	prediction, err := c.GoalService.PredictGoal(ctx, user.UserID, goalID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrGoalNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidGoal):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrUpstreamUnavailable):
			util.ServiceUnavailable(ctx, "数据源暂时不可用，请稍后重试")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, prediction)
}

// @Summary 获取存在风险的目标
// @Description 对进行中的目标逐一预测，返回达成概率低于阈值的目标
// @Tags 目标
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/goals/at-risk [get]
func (c *GoalController) AtRisk(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	items, err := c.GoalService.GoalsAtRisk(ctx, user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrUpstreamUnavailable) {
			util.ServiceUnavailable(ctx, "数据源暂时不可用，请稍后重试")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, items)
}
