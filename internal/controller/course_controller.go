package controller

import (
	"ai_study_backend/internal/repository"
	"ai_study_backend/internal/service"
	"ai_study_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
	ExportService *service.ExportService
}

func NewCourseController(courseService *service.CourseService, exportService *service.ExportService) *CourseController {
	return &CourseController{
		CourseService: courseService,
		ExportService: exportService,
	}
}

// Create godoc
// @Summary 创建课程
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CourseCreateRequest true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Router /api/courses [post]
func (c *CourseController) Create(ctx *gin.Context) {
	var req service.CourseCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.CreateCourse(actorFrom(ctx), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// Get godoc
// @Summary 课程详情
// @Tags 课程
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) Get(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	course, err := c.CourseService.GetCourse(actorFrom(ctx), id)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	c.CourseService.RecordView(ctx.Request.Context(), id)
	util.Success(ctx, course)
}

// Update godoc
// @Summary 更新课程
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "课程ID"
// @Param   body body service.CourseUpdateRequest true "更新字段"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /api/courses/{id} [put]
func (c *CourseController) Update(ctx *gin.Context) {
	var req service.CourseUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.UpdateCourse(actorFrom(ctx), util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// Delete godoc
// @Summary 删除课程（连同章节与版本历史）
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [delete]
func (c *CourseController) Delete(ctx *gin.Context) {
	if err := c.CourseService.DeleteCourse(actorFrom(ctx), util.MustParseUint(ctx.Param("id"))); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// List godoc
// @Summary 课程列表/检索
// @Tags 课程
// @Produce  json
// @Param   query query string false "标题或主题关键字"
// @Param   type query string false "课程类型"
// @Param   mine query bool false "仅自己的课程"
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	actor := actorFrom(ctx)
	filter := repository.CourseFilter{
		Query: ctx.Query("query"),
		Type:  ctx.Query("type"),
		Page:  util.ParseIntDefault(ctx.Query("page"), 1),
		Limit: util.ParseIntDefault(ctx.Query("limit"), 20),
	}
	if ctx.Query("mine") == "true" {
		filter.OwnerID = actor.ID
	}

	courses, total, err := c.CourseService.SearchCourses(actor, filter)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{
		List:  courses,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

// Fork godoc
// @Summary 复刻课程
// @Description 深拷贝课程及整棵章节树为自己名下的私有副本
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "源课程ID"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 403 {object} util.Response "源课程不可复刻"
// @Router /api/courses/{id}/fork [post]
func (c *CourseController) Fork(ctx *gin.Context) {
	fork, err := c.CourseService.ForkCourse(actorFrom(ctx), util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Created(ctx, fork)
}

// Export godoc
// @Summary 导出课程为markdown文档
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.ExportResult}
// @Router /api/courses/{id}/export [post]
func (c *CourseController) Export(ctx *gin.Context) {
	result, err := c.ExportService.ExportCourse(ctx.Request.Context(), actorFrom(ctx), util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// RecomputeStats godoc
// @Summary 重算全部课程统计
// @Tags 课程
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/admin/courses/recompute-stats [post]
func (c *CourseController) RecomputeStats(ctx *gin.Context) {
	count, err := c.CourseService.RecomputeAllStats()
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"recomputed": count})
}
