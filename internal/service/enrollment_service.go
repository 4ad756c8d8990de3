package service

import (
	"context"
	"errors"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnrollmentService 选课与进度台账的核心服务
// 完成事件(课时完成/测验满分)在单个事务内推进进度、发积分、发徽章、签发证书
type EnrollmentService struct {
	DB             *gorm.DB
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	LessonRepo     *repository.LessonRepository
	AttemptRepo    *repository.QuizAttemptRepository
	Gamification   *GamificationService
	Certificates   *CertificateService
}

func NewEnrollmentService(
	db *gorm.DB,
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	attemptRepo *repository.QuizAttemptRepository,
	gamification *GamificationService,
	certificates *CertificateService,
) *EnrollmentService {
	return &EnrollmentService{
		DB:             db,
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		LessonRepo:     lessonRepo,
		AttemptRepo:    attemptRepo,
		Gamification:   gamification,
		Certificates:   certificates,
	}
}

// Enroll 学生选课
// 拒绝:重复选课、未发布课程、选自己教的课
func (s *EnrollmentService) Enroll(studentID, courseID uint) (*model.Enrollment, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if course.Status != model.CoursePublished {
		return nil, util.ErrCourseNotAvailable
	}
	if course.TeacherID == studentID {
		return nil, util.ErrOwnCourse
	}

	totalLessons, err := s.LessonRepo.CountPublished(courseID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	enrollment := model.Enrollment{
		StudentID:    studentID,
		CourseID:     courseID,
		Status:       model.EnrollmentActive,
		TotalLessons: int(totalLessons),
		EnrolledAt:   now,
		LastAccessed: now,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&enrollment)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return util.ErrAlreadyEnrolled
		}
		return tx.Model(&model.Course{}).
			Where("id = ?", courseID).
			Update("enrollment_count", gorm.Expr("enrollment_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	enrollment.Course = course
	return &enrollment, nil
}

// Unenroll 退课，物理删除选课记录及其课时完成集合
// 已获得的积分、徽章和证书保留
func (s *EnrollmentService) Unenroll(studentID, courseID uint) error {
	enrollment, err := s.EnrollmentRepo.FindByStudentAndCourse(studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotEnrolled
		}
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("enrollment_id = ?", enrollment.ID).
			Delete(&model.EnrollmentLesson{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&model.Enrollment{}, enrollment.ID).Error; err != nil {
			return err
		}
		return tx.Model(&model.Course{}).
			Where("id = ? AND enrollment_count > 0", courseID).
			Update("enrollment_count", gorm.Expr("enrollment_count - 1")).Error
	})
}

// CompletionOutcome 一次完成事件的汇总结果
type CompletionOutcome struct {
	Enrollment     *model.Enrollment  `json:"enrollment"`
	AlreadyDone    bool               `json:"alreadyDone"`
	Award          *AwardResult       `json:"award,omitempty"`
	BadgeEarned    bool               `json:"badgeEarned"`
	Certificate    *model.Certificate `json:"certificate,omitempty"`
	NewCertificate bool               `json:"newCertificate"`
}

// CompleteLesson 标记非测验课时为已完成
// 测验课时必须走 SubmitQuiz，满分才能计入进度
func (s *EnrollmentService) CompleteLesson(ctx context.Context, studentID, courseID, lessonID uint) (*CompletionOutcome, error) {
	lesson, err := s.LessonRepo.FindPublished(courseID, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	if lesson.IsQuiz() {
		return nil, util.ErrQuizLesson
	}
	return s.recordLessonCompletion(ctx, studentID, courseID, lessonID, CompletionLesson)
}

// QuizOutcome 测验提交的评分与进度结果
type QuizOutcome struct {
	GradeResult
	Passed     bool               `json:"passed"`
	Completion *CompletionOutcome `json:"completion,omitempty"`
}

// SubmitQuiz 提交测验答案并评分
// 满分走完成流水线,未满分只记录尝试并给少量参与积分
func (s *EnrollmentService) SubmitQuiz(ctx context.Context, studentID, courseID, lessonID uint, answers []int) (*QuizOutcome, error) {
	lesson, err := s.LessonRepo.FindPublished(courseID, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	grade, err := GradeQuiz(lesson, answers)
	if err != nil {
		return nil, err
	}

	if _, err := s.activeEnrollment(studentID, courseID); err != nil {
		return nil, err
	}

	attempt := model.QuizAttempt{
		UserID:       studentID,
		CourseID:     courseID,
		LessonID:     lessonID,
		Score:        grade.Score,
		CorrectCount: grade.CorrectCount,
		Total:        grade.Total,
		Answers:      answers,
		Passed:       grade.Perfect(),
	}
	if err := s.AttemptRepo.Create(&attempt); err != nil {
		return nil, err
	}

	outcome := QuizOutcome{GradeResult: grade, Passed: grade.Perfect()}

	if grade.Perfect() {
		completion, err := s.recordLessonCompletion(ctx, studentID, courseID, lessonID, CompletionQuizPerfect)
		if err != nil {
			return nil, err
		}
		outcome.Completion = completion
		return &outcome, nil
	}

	// 未满分:参与积分照发,进度不动
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		award, err := s.Gamification.Award(tx, studentID, CompletionQuizPartial)
		if err != nil {
			return err
		}
		outcome.Completion = &CompletionOutcome{Award: award}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Gamification.InvalidateLeaderboard(ctx)
	return &outcome, nil
}

// RetryQuiz 重考:把该测验从完成集合移除并重算进度,返回历史成绩
// 已获得的积分、徽章和证书不回收
func (s *EnrollmentService) RetryQuiz(studentID, courseID, lessonID uint) ([]model.QuizAttempt, error) {
	lesson, err := s.LessonRepo.FindPublished(courseID, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	if !lesson.IsQuiz() {
		return nil, util.ErrNotAQuiz
	}
	enrollment, err := s.activeEnrollment(studentID, courseID)
	if err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("enrollment_id = ? AND lesson_id = ?", enrollment.ID, lessonID).
			Delete(&model.EnrollmentLesson{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&model.Lesson{}).
			Where("id = ? AND completion_count > 0", lessonID).
			Update("completion_count", gorm.Expr("completion_count - 1")).Error; err != nil {
			return err
		}
		return s.recalculate(tx, enrollment)
	})
	if err != nil {
		return nil, err
	}

	return s.AttemptRepo.ListByUserAndLesson(studentID, lessonID)
}

// recordLessonCompletion 完成流水线:
// 1) 幂等插入完成记录 2) 重算进度缓存 3) 发积分 4) 100%发徽章 5) 达标签发证书
func (s *EnrollmentService) recordLessonCompletion(ctx context.Context, studentID, courseID, lessonID uint, kind CompletionKind) (*CompletionOutcome, error) {
	enrollment, err := s.activeEnrollment(studentID, courseID)
	if err != nil {
		return nil, err
	}

	outcome := CompletionOutcome{Enrollment: enrollment}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		record := model.EnrollmentLesson{
			EnrollmentID: enrollment.ID,
			LessonID:     lessonID,
			CompletedAt:  time.Now(),
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			outcome.AlreadyDone = true
			return nil
		}

		if err := tx.Model(&model.Lesson{}).
			Where("id = ?", lessonID).
			Update("completion_count", gorm.Expr("completion_count + 1")).Error; err != nil {
			return err
		}

		if err := s.recalculate(tx, enrollment); err != nil {
			return err
		}

		award, err := s.Gamification.Award(tx, studentID, kind)
		if err != nil {
			return err
		}
		outcome.Award = award

		if enrollment.CompletionPercentage >= 100 {
			var course model.Course
			if err := tx.First(&course, courseID).Error; err != nil {
				return err
			}
			if err := s.Gamification.AwardCourseBadge(tx, studentID, &course); err != nil {
				return err
			}
			outcome.BadgeEarned = true
		}

		cert, created, err := s.Certificates.IssueIfEligible(tx, enrollment)
		if err != nil {
			return err
		}
		outcome.Certificate = cert
		outcome.NewCertificate = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !outcome.AlreadyDone {
		monitoring.LessonCompletions.WithLabelValues(kind.String()).Inc()
	}
	if outcome.Award != nil {
		s.Gamification.InvalidateLeaderboard(ctx)
	}
	if outcome.NewCertificate {
		monitoring.CertificatesIssued.Inc()
		logger.Log.Info("certificate issued",
			zap.Uint("studentId", studentID),
			zap.Uint("courseId", courseID),
			zap.String("certificateId", outcome.Certificate.CertificateID))
	}
	return &outcome, nil
}

// recalculate 在事务内从完成集合重算进度缓存并回写
// 分子只算仍处于已发布状态的课时，避免教师下架内容后百分比超过 100
func (s *EnrollmentService) recalculate(tx *gorm.DB, enrollment *model.Enrollment) error {
	var completed int64
	if err := tx.Model(&model.EnrollmentLesson{}).
		Joins("JOIN lessons ON lessons.id = enrollment_lessons.lesson_id").
		Where("enrollment_lessons.enrollment_id = ? AND lessons.status = ? AND lessons.deleted_at IS NULL",
			enrollment.ID, model.LessonPublished).
		Count(&completed).Error; err != nil {
		return err
	}

	total, err := s.countPublishedTx(tx, enrollment.CourseID)
	if err != nil {
		return err
	}

	enrollment.TotalLessons = int(total)
	enrollment.CompletedLessonsCount = int(completed)
	enrollment.CompletionPercentage = ProgressPercent(int(completed), int(total))
	enrollment.LastAccessed = time.Now()

	updates := map[string]interface{}{
		"total_lessons":           enrollment.TotalLessons,
		"completed_lessons_count": enrollment.CompletedLessonsCount,
		"completion_percentage":   enrollment.CompletionPercentage,
		"last_accessed":           enrollment.LastAccessed,
	}
	if enrollment.CompletionPercentage >= s.Certificates.Cfg.Load().CompletionStatusThreshold &&
		enrollment.Status != model.EnrollmentCompleted {
		now := time.Now()
		enrollment.Status = model.EnrollmentCompleted
		enrollment.CompletedAt = &now
		updates["status"] = model.EnrollmentCompleted
		updates["completed_at"] = now
	}

	return tx.Model(&model.Enrollment{}).Where("id = ?", enrollment.ID).Updates(updates).Error
}

func (s *EnrollmentService) countPublishedTx(tx *gorm.DB, courseID uint) (int64, error) {
	var total int64
	err := tx.Model(&model.Lesson{}).
		Where("course_id = ? AND status = ?", courseID, model.LessonPublished).
		Count(&total).Error
	return total, err
}

// Recalculate 课程内容变更后对单条选课记录的进度做对账
func (s *EnrollmentService) Recalculate(studentID, courseID uint) (*model.Enrollment, error) {
	enrollment, err := s.activeEnrollment(studentID, courseID)
	if err != nil {
		return nil, err
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.recalculate(tx, enrollment)
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// GetProgress 选课详情,附带已完成课时 ID 列表
type ProgressView struct {
	Enrollment         *model.Enrollment `json:"enrollment"`
	CompletedLessonIDs []uint            `json:"completedLessonIds"`
}

func (s *EnrollmentService) GetProgress(studentID, courseID uint) (*ProgressView, error) {
	enrollment, err := s.EnrollmentRepo.FindWithCourse(studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}
	ids, err := s.EnrollmentRepo.CompletedLessonIDs(enrollment.ID)
	if err != nil {
		return nil, err
	}
	return &ProgressView{Enrollment: enrollment, CompletedLessonIDs: ids}, nil
}

func (s *EnrollmentService) ListMine(studentID uint, status string, page, limit int) ([]model.Enrollment, int64, error) {
	return s.EnrollmentRepo.ListByStudent(studentID, status, page, limit)
}

// CourseStudents 教师查看课程学员名单
func (s *EnrollmentService) CourseStudents(courseID uint, page, limit int) ([]model.Enrollment, int64, error) {
	return s.EnrollmentRepo.ListByCourse(courseID, page, limit)
}

// Stats 学生维度的选课计数
func (s *EnrollmentService) Stats(studentID uint) (map[string]int64, error) {
	return s.EnrollmentRepo.CountByStatus(studentID)
}

func (s *EnrollmentService) activeEnrollment(studentID, courseID uint) (*model.Enrollment, error) {
	enrollment, err := s.EnrollmentRepo.FindByStudentAndCourse(studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}
	if enrollment.Status == model.EnrollmentCancelled {
		return nil, util.ErrEnrollmentInactive
	}
	return enrollment, nil
}
