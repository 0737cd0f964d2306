package controller

import (
	"ai_study_backend/internal/service"
	"ai_study_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	ContentService *service.ContentService
	VersionService *service.VersionService
}

func NewContentController(contentService *service.ContentService, versionService *service.VersionService) *ContentController {
	return &ContentController{
		ContentService: contentService,
		VersionService: versionService,
	}
}

// Update godoc
// @Summary 写入章节内容
// @Description 覆盖前自动留档旧版本，并尽力再生另外两种格式
// @Tags 内容
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "章节ID"
// @Param   body body service.ContentUpdateRequest true "内容与格式"
// @Success 200 {object} util.Response{data=model.Section}
// @Failure 400 {object} util.Response "格式非法"
// @Router /api/sections/{id}/content [put]
func (c *ContentController) Update(ctx *gin.Context) {
	var req service.ContentUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section, err := c.ContentService.UpdateContent(actorFrom(ctx), util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, section)
}

// Get godoc
// @Summary 读取指定格式的章节内容
// @Description 该格式槽位为空时从主槽位即时转换
// @Tags 内容
// @Produce  json
// @Param   id path int true "章节ID"
// @Param   format query string true "doc / render / markup"
// @Success 200 {object} util.Response{data=object}
// @Router /api/sections/{id}/content [get]
func (c *ContentController) Get(ctx *gin.Context) {
	format := ctx.DefaultQuery("format", "markup")
	text, err := c.ContentService.GetContent(util.MustParseUint(ctx.Param("id")), format)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"format": format, "content": text})
}

// SwitchFormat godoc
// @Summary 切换章节主格式
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "章节ID"
// @Param   format query string true "目标格式"
// @Success 200 {object} util.Response{data=model.Section}
// @Failure 400 {object} util.Response "目标槽位为空"
// @Router /api/sections/{id}/content/format [post]
func (c *ContentController) SwitchFormat(ctx *gin.Context) {
	section, err := c.ContentService.SwitchPrimaryFormat(actorFrom(ctx), util.MustParseUint(ctx.Param("id")), ctx.Query("format"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, section)
}

// ListVersions godoc
// @Summary 章节版本历史
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "章节ID"
// @Success 200 {object} util.Response{data=[]model.SectionVersion}
// @Router /api/sections/{id}/versions [get]
func (c *ContentController) ListVersions(ctx *gin.Context) {
	versions, err := c.VersionService.ListVersions(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, versions)
}

// GetVersion godoc
// @Summary 单个历史版本
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "章节ID"
// @Param   number path int true "版本号"
// @Success 200 {object} util.Response{data=model.SectionVersion}
// @Router /api/sections/{id}/versions/{number} [get]
func (c *ContentController) GetVersion(ctx *gin.Context) {
	version, err := c.VersionService.GetVersion(
		util.MustParseUint(ctx.Param("id")),
		util.ParseIntDefault(ctx.Param("number"), 0),
	)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, version)
}

// CompareVersions godoc
// @Summary 对比两个历史版本
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "章节ID"
// @Param   a query int true "版本A"
// @Param   b query int true "版本B"
// @Success 200 {object} util.Response{data=service.VersionDiff}
// @Router /api/sections/{id}/versions/compare [get]
func (c *ContentController) CompareVersions(ctx *gin.Context) {
	diff, err := c.VersionService.CompareVersions(
		util.MustParseUint(ctx.Param("id")),
		util.ParseIntDefault(ctx.Query("a"), 0),
		util.ParseIntDefault(ctx.Query("b"), 0),
	)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, diff)
}

// RestoreVersion godoc
// @Summary 还原到历史版本
// @Description 还原前当前状态也会留档，因此还原可再次撤销
// @Tags 内容
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "章节ID"
// @Param   number path int true "版本号"
// @Success 200 {object} util.Response{data=model.Section}
// @Router /api/sections/{id}/versions/{number}/restore [post]
func (c *ContentController) RestoreVersion(ctx *gin.Context) {
	section, err := c.ContentService.RestoreVersion(
		actorFrom(ctx),
		util.MustParseUint(ctx.Param("id")),
		util.ParseIntDefault(ctx.Param("number"), 0),
	)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, section)
}
