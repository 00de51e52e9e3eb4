// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"z-sitegen-ai-api/internal/application/sitegen"
	"z-sitegen-ai-api/internal/interfaces/http/dto"
	"z-sitegen-ai-api/pkg/errors"
	"z-sitegen-ai-api/pkg/logger"
)

// SiteHandler 站点内容生成处理器
type SiteHandler struct {
	svc *sitegen.Service
}

// NewSiteHandler 创建站点内容生成处理器
func NewSiteHandler(svc *sitegen.Service) *SiteHandler {
	return &SiteHandler{svc: svc}
}

// Generate 生成站点内容
// @Summary 生成站点内容
// @Description 根据区块目录与引导问卷生成整站文案，单区块失败降级为默认内容
// @Tags Sites
// @Accept json
// @Produce json
// @Param body body dto.GenerateSiteRequest true "生成请求"
// @Success 200 {object} dto.Response[dto.GenerateSiteResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/sites/generate [post]
func (h *SiteHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	out, err := h.svc.Generate(ctx, req.ToInput())
	if err != nil {
		if errors.IsAppError(err) {
			appErr := errors.AsAppError(err)
			logger.Warn(ctx, "site generation rejected",
				"error_code", string(appErr.Code),
				"detail", appErr.Detail,
			)
			dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, &dto.ErrorDetail{
				ErrorCode: string(appErr.Code),
				Details:   appErr.Detail,
			})
			return
		}
		logger.Error(ctx, "site generation failed", err)
		dto.InternalError(c, "site generation failed")
		return
	}

	dto.Success(c, dto.FromOutput(out))
}
