package controller

import (
	"errors"

	"github.com/gin-gonic/gin"

	"learner_analytics_backend/internal/service"
	"learner_analytics_backend/internal/util"
)

type AssessmentController struct {
	AssessmentService *service.AssessmentService
}

func NewAssessmentController(assessmentService *service.AssessmentService) *AssessmentController {
	return &AssessmentController{AssessmentService: assessmentService}
}

type estimateRequest struct {
	Responses []service.GradedResponse `json:"responses"`
}

// @Summary 提交测评作答并估计能力
// @Description 持久化一次测评的判分结果，更新整体与分类目的能力估计；请求体为空时基于已有作答重新估计
// @Tags 测评
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path int true "测评ID"
// @Param request body estimateRequest true "判分后的作答记录"
// @Success 201 {object} util.Response
// @Router /api/assessments/attempts/{attemptId}/estimate [post]
func (c *AssessmentController) Estimate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID := util.MustParseUint(ctx.Param("attemptId"))
	if attemptID == 0 {
		util.BadRequest(ctx, "无效的测评ID")
		return
	}

	var req estimateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		util.BadRequest(ctx, "请求体格式错误: "+err.Error())
		return
	}

	sample, err := c.AssessmentService.EstimateForAttempt(ctx, user.UserID, attemptID, req.Responses)
	if err != nil {
		if errors.Is(err, util.ErrAttemptNoResponses) {
			util.BadRequest(ctx, "测评没有可用的作答记录")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, sample)
}
