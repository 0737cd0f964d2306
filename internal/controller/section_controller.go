package controller

import (
	"ai_study_backend/internal/service"
	"ai_study_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SectionController struct {
	SectionService *service.SectionService
	ImportService  *service.ImportService
}

func NewSectionController(sectionService *service.SectionService, importService *service.ImportService) *SectionController {
	return &SectionController{
		SectionService: sectionService,
		ImportService:  importService,
	}
}

// Create godoc
// @Summary 创建章节
// @Tags 章节
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.SectionCreateRequest true "章节信息"
// @Success 201 {object} util.Response{data=model.Section}
// @Failure 400 {object} util.Response "超出嵌套深度等校验失败"
// @Router /api/sections [post]
func (c *SectionController) Create(ctx *gin.Context) {
	var req service.SectionCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section, err := c.SectionService.CreateSection(actorFrom(ctx), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, section)
}

// Update godoc
// @Summary 更新章节标题/设置
// @Tags 章节
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "章节ID"
// @Param   body body service.SectionUpdateRequest true "更新字段"
// @Success 200 {object} util.Response{data=model.Section}
// @Router /api/sections/{id} [put]
func (c *SectionController) Update(ctx *gin.Context) {
	var req service.SectionUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section, err := c.SectionService.UpdateSection(actorFrom(ctx), util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, section)
}

// MoveRequest 移动章节请求
type MoveRequest struct {
	NewParentID *uint `json:"newParentId"`
	NewOrder    int   `json:"newOrder"`
}

// Move godoc
// @Summary 移动章节（连同整棵子树）
// @Tags 章节
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "章节ID"
// @Param   body body MoveRequest true "新位置"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "移入自身子树或超深"
// @Router /api/sections/{id}/move [post]
func (c *SectionController) Move(ctx *gin.Context) {
	var req MoveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.SectionService.MoveSection(actorFrom(ctx), util.MustParseUint(ctx.Param("id")), req.NewParentID, req.NewOrder)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ReorderRequest 同层重排请求
type ReorderRequest struct {
	CourseID uint   `json:"courseId" binding:"required"`
	ParentID *uint  `json:"parentId"`
	IDs      []uint `json:"ids" binding:"required"`
}

// Reorder godoc
// @Summary 同层章节重排
// @Description ids 必须是该层现有章节的一个完整排列
// @Tags 章节
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body ReorderRequest true "新顺序"
// @Success 200 {object} util.Response
// @Router /api/sections/reorder [post]
func (c *SectionController) Reorder(ctx *gin.Context) {
	var req ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err := c.SectionService.ReorderSections(actorFrom(ctx), req.CourseID, req.ParentID, req.IDs)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Delete godoc
// @Summary 删除章节（连同整棵子树与版本历史）
// @Tags 章节
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "章节ID"
// @Success 200 {object} util.Response
// @Router /api/sections/{id} [delete]
func (c *SectionController) Delete(ctx *gin.Context) {
	if err := c.SectionService.DeleteSection(actorFrom(ctx), util.MustParseUint(ctx.Param("id"))); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Duplicate godoc
// @Summary 复制章节
// @Tags 章节
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "章节ID"
// @Param   includeChildren query bool false "是否连同子树"
// @Success 201 {object} util.Response{data=model.Section}
// @Router /api/sections/{id}/duplicate [post]
func (c *SectionController) Duplicate(ctx *gin.Context) {
	includeChildren := ctx.DefaultQuery("includeChildren", "true") == "true"
	section, err := c.SectionService.DuplicateSection(actorFrom(ctx), util.MustParseUint(ctx.Param("id")), includeChildren)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, section)
}

// SplitRequest 拆分章节请求，splitPoints为markdown行号（1起，严格递增）
type SplitRequest struct {
	SplitPoints []int `json:"splitPoints" binding:"required"`
}

// Split godoc
// @Summary 按行号把章节拆成多个兄弟章节
// @Tags 章节
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "章节ID"
// @Param   body body SplitRequest true "拆分点"
// @Success 200 {object} util.Response{data=[]model.Section}
// @Failure 400 {object} util.Response "拆分点非法"
// @Router /api/sections/{id}/split [post]
func (c *SectionController) Split(ctx *gin.Context) {
	var req SplitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	parts, err := c.SectionService.SplitSection(actorFrom(ctx), util.MustParseUint(ctx.Param("id")), req.SplitPoints)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, parts)
}

// MergeRequest 合并章节请求
type MergeRequest struct {
	SourceID uint `json:"sourceId" binding:"required"`
	TargetID uint `json:"targetId" binding:"required"`
}

// Merge godoc
// @Summary 把源章节内容并入目标章节
// @Description 源章节的子树挂到目标章节下，源章节删除
// @Tags 章节
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body MergeRequest true "源与目标"
// @Success 200 {object} util.Response{data=model.Section}
// @Router /api/sections/merge [post]
func (c *SectionController) Merge(ctx *gin.Context) {
	var req MergeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	target, err := c.SectionService.MergeSections(actorFrom(ctx), req.SourceID, req.TargetID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, target)
}

// ImportRequest 导入抽取结果请求
type ImportRequest struct {
	CourseID uint                       `json:"courseId" binding:"required"`
	ParentID *uint                      `json:"parentId"`
	Sections []service.ExtractedSection `json:"sections" binding:"required"`
}

// Import godoc
// @Summary 把抽取器产出的章节结构导入课程
// @Tags 章节
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body ImportRequest true "抽取结果"
// @Success 201 {object} util.Response{data=[]model.Section}
// @Router /api/sections/import [post]
func (c *SectionController) Import(ctx *gin.Context) {
	var req ImportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	created, err := c.ImportService.ImportExtracted(actorFrom(ctx), req.CourseID, req.ParentID, req.Sections)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, created)
}
