package controller

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
	CourseService *service.CourseService
}

func NewLessonController(lessonService *service.LessonService, courseService *service.CourseService) *LessonController {
	return &LessonController{LessonService: lessonService, CourseService: courseService}
}

// Get godoc
// @Summary 课时详情
// @Description 返回已发布课时内容并累加浏览次数；quiz 课时不返回答案
// @Tags 课时
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   lessonId path int true "课时ID"
// @Success 200 {object} util.Response{data=model.Lesson} "成功"
// @Failure 404 {object} util.Response "课时不存在"
// @Router /api/courses/{id}/lessons/{lessonId} [get]
func (c *LessonController) Get(ctx *gin.Context) {
	courseID, ok := util.ParseID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := util.ParseID(ctx, "lessonId")
	if !ok {
		return
	}
	lesson, err := c.LessonService.GetForViewer(courseID, lessonID)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	// 答案索引不下发给学员
	if lesson.IsQuiz() {
		claims := util.GetUserFromContext(ctx)
		if claims == nil || !util.Allow(claims, util.Resource{Kind: "lesson", OwnerID: lesson.TeacherID}, util.ActionWrite) {
			for i := range lesson.Questions {
				lesson.Questions[i].CorrectIndex = -1
			}
		}
	}

	util.Success(ctx, lesson)
}

// Create godoc
// @Summary 创建课时
// @Tags 课时
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   body body service.LessonInput true "课时信息"
// @Success 201 {object} util.Response{data=model.Lesson} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/courses/{id}/lessons [post]
func (c *LessonController) Create(ctx *gin.Context) {
	course, ok := c.requireCourseOwnership(ctx)
	if !ok {
		return
	}

	var input service.LessonInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.LessonService.Create(course.ID, course.TeacherID, input)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, lesson)
}

// Update godoc
// @Summary 更新课时
// @Tags 课时
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   lessonId path int true "课时ID"
// @Param   body body service.LessonInput true "课时信息"
// @Success 200 {object} util.Response{data=model.Lesson} "成功"
// @Router /api/courses/{id}/lessons/{lessonId} [put]
func (c *LessonController) Update(ctx *gin.Context) {
	course, ok := c.requireCourseOwnership(ctx)
	if !ok {
		return
	}
	lessonID, ok := util.ParseID(ctx, "lessonId")
	if !ok {
		return
	}

	var input service.LessonInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.LessonService.Update(course.ID, lessonID, input)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, lesson)
}

// Publish godoc
// @Summary 发布课时
// @Tags 课时
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   lessonId path int true "课时ID"
// @Success 200 {object} util.Response{data=model.Lesson} "成功"
// @Router /api/courses/{id}/lessons/{lessonId}/publish [post]
func (c *LessonController) Publish(ctx *gin.Context) {
	course, ok := c.requireCourseOwnership(ctx)
	if !ok {
		return
	}
	lessonID, ok := util.ParseID(ctx, "lessonId")
	if !ok {
		return
	}

	lesson, err := c.LessonService.Publish(course.ID, lessonID)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, lesson)
}

// Delete godoc
// @Summary 删除课时
// @Tags 课时
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   lessonId path int true "课时ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/courses/{id}/lessons/{lessonId} [delete]
func (c *LessonController) Delete(ctx *gin.Context) {
	course, ok := c.requireCourseOwnership(ctx)
	if !ok {
		return
	}
	lessonID, ok := util.ParseID(ctx, "lessonId")
	if !ok {
		return
	}

	if err := c.LessonService.Delete(course.ID, lessonID); err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// UploadVideo godoc
// @Summary 上传课时视频
// @Description 保存视频到存储后端并用 ffprobe 回填时长、分辨率等元数据
// @Tags 课时
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   lessonId path int true "课时ID"
// @Param   video formData file true "视频文件"
// @Success 200 {object} util.Response{data=model.Lesson} "成功"
// @Failure 400 {object} util.Response "文件格式不支持"
// @Router /api/courses/{id}/lessons/{lessonId}/video [post]
func (c *LessonController) UploadVideo(ctx *gin.Context) {
	course, ok := c.requireCourseOwnership(ctx)
	if !ok {
		return
	}
	lessonID, ok := util.ParseID(ctx, "lessonId")
	if !ok {
		return
	}

	file, err := ctx.FormFile("video")
	if err != nil {
		util.BadRequest(ctx, "video file is required")
		return
	}

	lesson, err := c.LessonService.UploadVideo(ctx.Request.Context(), course.ID, lessonID, file)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, lesson)
}

func (c *LessonController) requireCourseOwnership(ctx *gin.Context) (*model.Course, bool) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := util.ParseID(ctx, "id")
	if !ok {
		return nil, false
	}
	course, err := c.CourseService.Get(courseID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return nil, false
	}
	if !util.Allow(claims, util.Resource{Kind: "course", OwnerID: course.TeacherID}, util.ActionWrite) {
		util.Forbidden(ctx)
		return nil, false
	}
	return course, true
}
