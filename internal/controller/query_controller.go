package controller

import (
	"ai_study_backend/internal/service"
	"ai_study_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QueryController struct {
	QueryService *service.QueryService
}

func NewQueryController(queryService *service.QueryService) *QueryController {
	return &QueryController{QueryService: queryService}
}

// Tree godoc
// @Summary 课程与全部章节（树序）
// @Tags 查询
// @Produce  json
// @Param   id path int true "课程ID"
// @Param   maxDepth query int false "层级上限，0为不限"
// @Param   includeContent query bool false "是否携带内容"
// @Success 200 {object} util.Response{data=service.CourseTree}
// @Router /api/courses/{id}/tree [get]
func (c *QueryController) Tree(ctx *gin.Context) {
	tree, err := c.QueryService.GetCourseWithSections(ctx.Request.Context(), actorFrom(ctx), util.MustParseUint(ctx.Param("id")), service.CourseTreeOptions{
		MaxDepth:       util.ParseIntDefault(ctx.Query("maxDepth"), 0),
		IncludeContent: ctx.Query("includeContent") == "true",
	})
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, tree)
}

// Hierarchy godoc
// @Summary 嵌套的章节层级结构
// @Tags 查询
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]service.HierarchyNode}
// @Router /api/courses/{id}/hierarchy [get]
func (c *QueryController) Hierarchy(ctx *gin.Context) {
	nodes, err := c.QueryService.GetHierarchy(ctx.Request.Context(), actorFrom(ctx), util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nodes)
}

// TableOfContents godoc
// @Summary 课程目录
// @Tags 查询
// @Produce  json
// @Param   id path int true "课程ID"
// @Param   maxDepth query int false "层级上限，0为不限"
// @Success 200 {object} util.Response{data=[]service.TOCEntry}
// @Router /api/courses/{id}/toc [get]
func (c *QueryController) TableOfContents(ctx *gin.Context) {
	entries, err := c.QueryService.GetTableOfContents(
		ctx.Request.Context(),
		actorFrom(ctx),
		util.MustParseUint(ctx.Param("id")),
		util.ParseIntDefault(ctx.Query("maxDepth"), 0),
	)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// Search godoc
// @Summary 课程内全文检索
// @Description 标题命中优先于正文命中
// @Tags 查询
// @Produce  json
// @Param   id path int true "课程ID"
// @Param   q query string true "关键字"
// @Success 200 {object} util.Response{data=[]service.SearchHit}
// @Router /api/courses/{id}/search [get]
func (c *QueryController) Search(ctx *gin.Context) {
	hits, err := c.QueryService.SearchSections(ctx.Request.Context(), actorFrom(ctx), util.MustParseUint(ctx.Param("id")), ctx.Query("q"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, hits)
}

// Statistics godoc
// @Summary 课程统计
// @Tags 查询
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.CourseStatistics}
// @Router /api/courses/{id}/statistics [get]
func (c *QueryController) Statistics(ctx *gin.Context) {
	stats, err := c.QueryService.GetStatistics(ctx.Request.Context(), actorFrom(ctx), util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
