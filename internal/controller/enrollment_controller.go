package controller

import (
	"errors"

	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
	CourseService     *service.CourseService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService, courseService *service.CourseService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService, CourseService: courseService}
}

// Enroll godoc
// @Summary 选课
// @Description 学生报名已发布课程，重复报名返回409，教师不能选自己的课
// @Tags 选课
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 201 {object} util.Response{data=model.Enrollment} "报名成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Failure 409 {object} util.Response "已报名"
// @Failure 422 {object} util.Response "课程未发布或不能选自己的课"
// @Router /api/courses/{id}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := util.ParseID(ctx, "id")
	if !ok {
		return
	}
	enrollment, err := c.EnrollmentService.Enroll(claims.UserID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAlreadyEnrolled):
			util.Error(ctx, 409, err.Error())
		case errors.Is(err, util.ErrCourseNotAvailable), errors.Is(err, util.ErrOwnCourse):
			util.Error(ctx, 422, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, enrollment)
}

// Unenroll godoc
// @Summary 退课
// @Description 删除选课记录和课时完成集合，已获得的积分、徽章、证书保留
// @Tags 选课
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "未报名该课程"
// @Router /api/courses/{id}/enroll [delete]
func (c *EnrollmentController) Unenroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := util.ParseID(ctx, "id")
	if !ok {
		return
	}
	err := c.EnrollmentService.Unenroll(claims.UserID, courseID)
	if err != nil {
		if errors.Is(err, util.ErrNotEnrolled) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// ListMine godoc
// @Summary 我的选课列表
// @Tags 选课
// @Produce  json
// @Security ApiKeyAuth
// @Param   status query string false "状态筛选 active/completed"
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/enrollments [get]
func (c *EnrollmentController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	page, limit := pagination(ctx, 20)

	enrollments, total, err := c.EnrollmentService.ListMine(claims.UserID, ctx.Query("status"), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: enrollments, Total: total, Page: page, Limit: limit})
}

// GetProgress godoc
// @Summary 课程进度
// @Description 返回选课记录、进度百分比和已完成课时ID列表
// @Tags 选课
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=service.ProgressView} "成功"
// @Failure 404 {object} util.Response "未报名该课程"
// @Router /api/courses/{id}/progress [get]
func (c *EnrollmentController) GetProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := util.ParseID(ctx, "id")
	if !ok {
		return
	}
	view, err := c.EnrollmentService.GetProgress(claims.UserID, courseID)
	if err != nil {
		if errors.Is(err, util.ErrNotEnrolled) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, view)
}

// CompleteLesson godoc
// @Summary 标记课时完成
// @Description 非测验课时的完成入口；幂等，重复标记不重复加分。进度达标自动签发证书
// @Tags 选课
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   lessonId path int true "课时ID"
// @Success 200 {object} util.Response{data=service.CompletionOutcome} "成功"
// @Failure 404 {object} util.Response "课时不存在或未报名"
// @Failure 422 {object} util.Response "测验课时须通过提交测验完成"
// @Router /api/courses/{id}/lessons/{lessonId}/complete [post]
func (c *EnrollmentController) CompleteLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := util.ParseID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := util.ParseID(ctx, "lessonId")
	if !ok {
		return
	}
	outcome, err := c.EnrollmentService.CompleteLesson(ctx.Request.Context(), claims.UserID, courseID, lessonID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrLessonNotFound), errors.Is(err, util.ErrNotEnrolled):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrQuizLesson), errors.Is(err, util.ErrEnrollmentInactive):
			util.Error(ctx, 422, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, outcome)
}

// SubmitQuizRequest 测验提交请求体，answers 按题目顺序给出选项下标
type SubmitQuizRequest struct {
	Answers []int `json:"answers" binding:"required"`
}

// SubmitQuiz godoc
// @Summary 提交测验
// @Description 按题目顺序评分；满分计入进度并加分，未满分仅记录尝试并给参与分
// @Tags 选课
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   lessonId path int true "课时ID"
// @Param   body body SubmitQuizRequest true "答案"
// @Success 200 {object} util.Response{data=service.QuizOutcome} "成功"
// @Failure 404 {object} util.Response "课时不存在或未报名"
// @Failure 422 {object} util.Response "该课时不是测验"
// @Router /api/courses/{id}/lessons/{lessonId}/quiz [post]
func (c *EnrollmentController) SubmitQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	courseID, ok := util.ParseID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := util.ParseID(ctx, "lessonId")
	if !ok {
		return
	}
	outcome, err := c.EnrollmentService.SubmitQuiz(ctx.Request.Context(), claims.UserID, courseID, lessonID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrLessonNotFound), errors.Is(err, util.ErrNotEnrolled):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNotAQuiz), errors.Is(err, util.ErrEnrollmentInactive):
			util.Error(ctx, 422, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, outcome)
}

// RetryQuiz godoc
// @Summary 重考测验
// @Description 把该测验从完成集合移除并重算进度，返回历史提交记录；测验可无限次重考
// @Tags 选课
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   lessonId path int true "课时ID"
// @Success 200 {object} util.Response{data=[]model.QuizAttempt} "成功"
// @Router /api/courses/{id}/lessons/{lessonId}/quiz/retry [post]
func (c *EnrollmentController) RetryQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := util.ParseID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := util.ParseID(ctx, "lessonId")
	if !ok {
		return
	}
	attempts, err := c.EnrollmentService.RetryQuiz(claims.UserID, courseID, lessonID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrLessonNotFound), errors.Is(err, util.ErrNotEnrolled):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNotAQuiz):
			util.Error(ctx, 422, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, attempts)
}

// Recalculate godoc
// @Summary 进度对账
// @Description 课程内容变更后从完成集合重算进度缓存
// @Tags 选课
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Enrollment} "成功"
// @Router /api/courses/{id}/progress/recalculate [post]
func (c *EnrollmentController) Recalculate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := util.ParseID(ctx, "id")
	if !ok {
		return
	}
	enrollment, err := c.EnrollmentService.Recalculate(claims.UserID, courseID)
	if err != nil {
		if errors.Is(err, util.ErrNotEnrolled) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, enrollment)
}

// CourseStudents godoc
// @Summary 课程学员名单
// @Description 课程所属教师查看学员及其进度
// @Tags 选课
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/courses/{id}/students [get]
func (c *EnrollmentController) CourseStudents(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courseID, ok := util.ParseID(ctx, "id")
	if !ok {
		return
	}

	course, err := c.CourseService.Get(courseID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	if !util.Allow(claims, util.Resource{Kind: "course", OwnerID: course.TeacherID}, util.ActionViewStudents) {
		util.Forbidden(ctx)
		return
	}

	page, limit := pagination(ctx, 20)
	enrollments, total, err := c.EnrollmentService.CourseStudents(courseID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: enrollments, Total: total, Page: page, Limit: limit})
}

// Stats godoc
// @Summary 我的学习统计
// @Tags 选课
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/enrollments/stats [get]
func (c *EnrollmentController) Stats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	stats, err := c.EnrollmentService.Stats(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
