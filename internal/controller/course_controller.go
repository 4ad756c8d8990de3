package controller

import (
	"errors"
	"strconv"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// List godoc
// @Summary 课程列表
// @Description 分页浏览课程，支持分类/难度/关键字筛选；未认证用户只能看到已发布课程
// @Tags 课程
// @Produce  json
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(12)
// @Param   category query string false "分类"
// @Param   level query string false "难度"
// @Param   search query string false "关键字"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	page, limit := pagination(ctx, 12)
	filter := repository.CourseFilter{
		Category: ctx.Query("category"),
		Level:    ctx.Query("level"),
		Search:   ctx.Query("search"),
		Status:   "published",
	}

	// 教师查自己的课程时放开状态筛选
	claims := util.GetUserFromContext(ctx)
	if mine := ctx.Query("mine"); mine == "true" && claims != nil {
		filter.TeacherID = claims.UserID
		filter.Status = ctx.Query("status")
	}

	courses, total, err := c.CourseService.List(page, limit, filter)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: courses, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary 课程详情
// @Description 返回课程及其章节、课时结构
// @Tags 课程
// @Produce  json
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id} [get]
func (c *CourseController) Get(ctx *gin.Context) {
	courseID, ok := util.ParseID(ctx, "id")
	if !ok {
		return
	}
	claims := util.GetUserFromContext(ctx)
	course, err := c.CourseService.GetDetail(courseID, claims)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, course)
}

// GetBySlug godoc
// @Summary 按别名查课程
// @Description 供前端以 URL 别名访问课程落地页，未发布课程仅作者可见
// @Tags 课程
// @Produce  json
// @Param   slug path string true "课程别名"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/slug/{slug} [get]
func (c *CourseController) GetBySlug(ctx *gin.Context) {
	course, err := c.CourseService.GetBySlug(ctx.Param("slug"))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	claims := util.GetUserFromContext(ctx)
	if course.Status != model.CoursePublished &&
		!util.Allow(claims, util.Resource{Kind: "course", OwnerID: course.TeacherID}, util.ActionWrite) {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, course)
}

// Create godoc
// @Summary 创建课程
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CourseInput true "课程信息"
// @Success 201 {object} util.Response{data=model.Course} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/courses [post]
func (c *CourseController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var input service.CourseInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Create(claims.UserID, input)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// Update godoc
// @Summary 更新课程
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   body body service.CourseInput true "课程信息"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/courses/{id} [put]
func (c *CourseController) Update(ctx *gin.Context) {
	course, ok := c.requireOwnership(ctx)
	if !ok {
		return
	}

	var input service.CourseInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	updated, err := c.CourseService.Update(course.ID, input)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, updated)
}

// Publish godoc
// @Summary 发布课程
// @Description 发布前校验课程至少有一个章节、一个课时，且章节不能为空
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Failure 422 {object} util.Response "课程结构不满足发布条件"
// @Router /api/courses/{id}/publish [post]
func (c *CourseController) Publish(ctx *gin.Context) {
	course, ok := c.requireOwnership(ctx)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(ctx)
	if !util.Allow(claims, util.Resource{Kind: "course", OwnerID: course.TeacherID}, util.ActionPublish) {
		util.Forbidden(ctx)
		return
	}

	published, err := c.CourseService.Publish(course.ID)
	if err != nil {
		if errors.Is(err, util.ErrPublishRequirement) {
			util.Error(ctx, 422, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, published)
}

// Delete godoc
// @Summary 删除课程
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/courses/{id} [delete]
func (c *CourseController) Delete(ctx *gin.Context) {
	course, ok := c.requireOwnership(ctx)
	if !ok {
		return
	}
	if err := c.CourseService.Delete(course.ID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// AddModule godoc
// @Summary 添加章节
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   body body service.ModuleInput true "章节信息"
// @Success 201 {object} util.Response{data=model.CourseModule} "创建成功"
// @Router /api/courses/{id}/modules [post]
func (c *CourseController) AddModule(ctx *gin.Context) {
	course, ok := c.requireOwnership(ctx)
	if !ok {
		return
	}

	var input service.ModuleInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	m, err := c.CourseService.AddModule(course.ID, input)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, m)
}

// UpdateModule godoc
// @Summary 更新章节
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   moduleId path int true "章节ID"
// @Param   body body service.ModuleInput true "章节信息"
// @Success 200 {object} util.Response{data=model.CourseModule} "成功"
// @Router /api/courses/{id}/modules/{moduleId} [put]
func (c *CourseController) UpdateModule(ctx *gin.Context) {
	course, ok := c.requireOwnership(ctx)
	if !ok {
		return
	}
	moduleID, ok := util.ParseID(ctx, "moduleId")
	if !ok {
		return
	}

	var input service.ModuleInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	m, err := c.CourseService.UpdateModule(course.ID, moduleID, input)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, m)
}

// DeleteModule godoc
// @Summary 删除章节
// @Description 仅允许删除没有课时的空章节
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   moduleId path int true "章节ID"
// @Success 200 {object} util.Response "成功"
// @Failure 422 {object} util.Response "章节下仍有课时"
// @Router /api/courses/{id}/modules/{moduleId} [delete]
func (c *CourseController) DeleteModule(ctx *gin.Context) {
	course, ok := c.requireOwnership(ctx)
	if !ok {
		return
	}
	moduleID, ok := util.ParseID(ctx, "moduleId")
	if !ok {
		return
	}

	err := c.CourseService.DeleteModule(course.ID, moduleID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrModuleNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrModuleNotEmpty):
			util.Error(ctx, 422, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// requireOwnership 读取路径中的课程并校验写权限
func (c *CourseController) requireOwnership(ctx *gin.Context) (*model.Course, bool) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := util.ParseID(ctx, "id")
	if !ok {
		return nil, false
	}
	found, err := c.CourseService.Get(courseID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return nil, false
	}
	if !util.Allow(claims, util.Resource{Kind: "course", OwnerID: found.TeacherID}, util.ActionWrite) {
		util.Forbidden(ctx)
		return nil, false
	}
	return found, true
}

func pagination(ctx *gin.Context, defaultLimit int) (page, limit int) {
	page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return page, limit
}
