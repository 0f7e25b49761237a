package controller

import (
	"errors"

	"github.com/gin-gonic/gin"

	"learner_analytics_backend/internal/service"
	"learner_analytics_backend/internal/util"
)

type SessionController struct {
	SessionService *service.SessionService
}

func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{SessionService: sessionService}
}

// @Summary 开始学习会话
// @Tags 学习会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.StartSessionInput false "会话信息"
// @Success 201 {object} util.Response
// @Router /api/study/sessions/start [post]
func (c *SessionController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var input service.StartSessionInput
	if err := ctx.ShouldBindJSON(&input); err != nil && err.Error() != "EOF" {
		util.BadRequest(ctx, "请求体格式错误: "+err.Error())
		return
	}

	session, err := c.SessionService.StartSession(ctx, user.UserID, input)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, session)
}

// @Summary 结束学习会话
// @Description 结束会话并上报作答数量、正确数与专注度
// @Tags 学习会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path int true "会话ID"
// @Param request body service.EndSessionInput true "会话遥测"
// @Success 200 {object} util.Response
// @Router /api/study/sessions/{sessionId}/end [post]
func (c *SessionController) End(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	sessionID := util.MustParseUint(ctx.Param("sessionId"))
	var input service.EndSessionInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, "请求体格式错误: "+err.Error())
		return
	}

	session, err := c.SessionService.EndSession(ctx, user.UserID, sessionID, input)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrSessionClosed):
			util.BadRequest(ctx, "会话已经结束")
		case errors.Is(err, util.ErrInvalidTelemetry):
			util.BadRequest(ctx, "作答统计不合法：数量不能为负，正确数不能超过题目数")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, session)
}
