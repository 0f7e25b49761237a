package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"learner_analytics_backend/internal/service"
	"learner_analytics_backend/internal/util"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// @Summary 获取能力轨迹
// @Description 获取平滑后的能力轨迹、置信带、预测段与趋势解读
// @Tags 分析
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category query string false "知识类目，缺省为整体能力"
// @Param window query int false "回看窗口（天）" default(90)
// @Param horizon query int false "预测点数" default(4)
// @Param refresh query bool false "跳过缓存强制重算" default(false)
// @Success 200 {object} util.Response
// @Router /api/analytics/trajectory [get]
func (c *AnalyticsController) GetTrajectory(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	window, _ := strconv.Atoi(ctx.DefaultQuery("window", strconv.Itoa(util.DefaultTrajectoryWindow)))
	horizon, _ := strconv.Atoi(ctx.DefaultQuery("horizon", strconv.Itoa(util.DefaultForecastHorizon)))
	refresh := ctx.Query("refresh") == "true"

	report, err := c.AnalyticsService.GetTrajectory(ctx, user.UserID, categoryParam(ctx), window, horizon, refresh)
	if err != nil {
		respondAnalyticsError(ctx, err)
		return
	}

	util.Success(ctx, report)
}

// @Summary 获取学习速度
// @Description 获取能力提升速度（能力值/周）与加速/减速趋势
// @Tags 分析
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category query string false "知识类目，缺省为整体能力"
// @Param window query int false "回看窗口（天）" default(90)
// @Param refresh query bool false "跳过缓存强制重算" default(false)
// @Success 200 {object} util.Response
// @Router /api/analytics/velocity [get]
func (c *AnalyticsController) GetVelocity(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	window, _ := strconv.Atoi(ctx.DefaultQuery("window", strconv.Itoa(util.DefaultTrajectoryWindow)))
	refresh := ctx.Query("refresh") == "true"

	result, err := c.AnalyticsService.GetVelocity(ctx, user.UserID, categoryParam(ctx), window, refresh)
	if err != nil {
		respondAnalyticsError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 获取学习效果分析
// @Description 获取学习会话统计、连续学习天数、学习模式洞察与推荐安排
// @Tags 分析
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param lookback query int false "回看窗口（天）" default(30)
// @Param refresh query bool false "跳过缓存强制重算" default(false)
// @Success 200 {object} util.Response
// @Router /api/analytics/study [get]
func (c *AnalyticsController) GetStudy(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	lookback, _ := strconv.Atoi(ctx.DefaultQuery("lookback", strconv.Itoa(util.DefaultStudyLookbackDays)))
	refresh := ctx.Query("refresh") == "true"

	report, err := c.AnalyticsService.GetStudyEffectiveness(ctx, user.UserID, lookback, refresh)
	if err != nil {
		respondAnalyticsError(ctx, err)
		return
	}

	util.Success(ctx, report)
}

// @Summary 获取流失风险评分
// @Description 获取 0-100 的综合风险分、等级、主要风险因素与干预建议
// @Tags 分析
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param refresh query bool false "跳过缓存强制重算" default(false)
// @Success 200 {object} util.Response
// @Router /api/analytics/risk [get]
func (c *AnalyticsController) GetRisk(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	refresh := ctx.Query("refresh") == "true"

	result, err := c.AnalyticsService.GetRisk(ctx, user.UserID, refresh)
	if err != nil {
		respondAnalyticsError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 查看指定学生的流失风险评分
// @Description 教师与管理员查看学生的风险评分，用于主动干预
// @Tags 分析
// @Produce json
// @Security BearerAuth
// @Param userId path int true "学生ID"
// @Param refresh query bool false "跳过缓存强制重算" default(false)
// @Success 200 {object} util.Response
// @Router /api/analytics/users/{userId}/risk [get]
func (c *AnalyticsController) GetUserRisk(ctx *gin.Context) {
	userID := util.MustParseUint(ctx.Param("userId"))
	if userID == 0 {
		util.BadRequest(ctx, "无效的用户ID")
		return
	}

	refresh := ctx.Query("refresh") == "true"

	result, err := c.AnalyticsService.GetRisk(ctx, userID, refresh)
	if err != nil {
		respondAnalyticsError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

func categoryParam(ctx *gin.Context) *string {
	if category := ctx.Query("category"); category != "" {
		return &category
	}
	return nil
}

// 账本读取失败返回 503：结果过期可接受，但绝不返回编造的数据
func respondAnalyticsError(ctx *gin.Context, err error) {
	if errors.Is(err, util.ErrUpstreamUnavailable) {
		util.ServiceUnavailable(ctx, "数据源暂时不可用，请稍后重试")
		return
	}
	util.LogInternalError(ctx, err)
}
