package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

type CourseService struct {
	DB         *gorm.DB
	CourseRepo *repository.CourseRepository
	ModuleRepo *repository.ModuleRepository
	LessonRepo *repository.LessonRepository
}

func NewCourseService(db *gorm.DB, courseRepo *repository.CourseRepository, moduleRepo *repository.ModuleRepository, lessonRepo *repository.LessonRepository) *CourseService {
	return &CourseService{DB: db, CourseRepo: courseRepo, ModuleRepo: moduleRepo, LessonRepo: lessonRepo}
}

type CourseInput struct {
	Title            string            `json:"title" binding:"required,min=3,max=255"`
	Description      string            `json:"description"`
	ShortDescription string            `json:"shortDescription" binding:"omitempty,max=200"`
	Category         string            `json:"category" binding:"required,max=100"`
	Thumbnail        string            `json:"thumbnail"`
	Level            model.CourseLevel `json:"level" binding:"omitempty,oneof=beginner intermediate advanced all"`
	IsFree           *bool             `json:"isFree"`
	PriceAmount      float64           `json:"priceAmount" binding:"omitempty,gte=0"`
}

// Create 新建课程，初始为草稿
func (s *CourseService) Create(teacherID uint, input CourseInput) (*model.Course, error) {
	course := model.Course{
		Title:            input.Title,
		Slug:             s.uniqueSlug(input.Title),
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		Category:         input.Category,
		Thumbnail:        input.Thumbnail,
		TeacherID:        teacherID,
		Level:            input.Level,
		Status:           model.CourseDraft,
		IsFree:           true,
		PriceAmount:      input.PriceAmount,
	}
	if course.Level == "" {
		course.Level = model.LevelAll
	}
	if input.IsFree != nil {
		course.IsFree = *input.IsFree
	}
	if err := s.CourseRepo.Create(&course); err != nil {
		return nil, err
	}
	logger.Log.Info("course created", zap.Uint("courseId", course.ID), zap.Uint("teacherId", teacherID))
	return &course, nil
}

func (s *CourseService) Update(courseID uint, input CourseInput) (*model.Course, error) {
	course, err := s.Get(courseID)
	if err != nil {
		return nil, err
	}

	course.Title = input.Title
	course.Description = input.Description
	course.ShortDescription = input.ShortDescription
	course.Category = input.Category
	if input.Thumbnail != "" {
		course.Thumbnail = input.Thumbnail
	}
	if input.Level != "" {
		course.Level = input.Level
	}
	if input.IsFree != nil {
		course.IsFree = *input.IsFree
	}
	course.PriceAmount = input.PriceAmount

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Get(courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// GetDetail 课程详情;非课程所有者只能看到已发布的课时
func (s *CourseService) GetDetail(courseID uint, claims *util.Claims) (*model.Course, error) {
	course, err := s.Get(courseID)
	if err != nil {
		return nil, err
	}

	isOwner := claims != nil && (claims.Role == model.Admin || claims.UserID == course.TeacherID)
	if course.Status != model.CoursePublished && !isOwner {
		return nil, util.ErrCourseNotFound
	}

	detail, err := s.CourseRepo.FindWithContent(courseID, !isOwner)
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *CourseService) GetBySlug(slug string) (*model.Course, error) {
	course, err := s.CourseRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) List(page, limit int, filter repository.CourseFilter) ([]model.Course, int64, error) {
	return s.CourseRepo.List(page, limit, filter)
}

// Publish 发布前校验课程结构:至少一个章节、至少一个课时、章节不能为空
func (s *CourseService) Publish(courseID uint) (*model.Course, error) {
	course, err := s.Get(courseID)
	if err != nil {
		return nil, err
	}

	modules, err := s.ModuleRepo.FindByCourse(courseID)
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		return nil, util.ErrPublishRequirement
	}

	var lessonTotal int64
	for _, m := range modules {
		count, err := s.LessonRepo.CountByModule(m.ID)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, util.ErrPublishRequirement
		}
		lessonTotal += count
	}

	now := time.Now()
	course.Status = model.CoursePublished
	course.PublishedAt = &now
	course.ModuleCount = len(modules)
	course.LessonCount = int(lessonTotal)

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	logger.Log.Info("course published",
		zap.Uint("courseId", course.ID),
		zap.Int("modules", course.ModuleCount),
		zap.Int("lessons", course.LessonCount))
	return course, nil
}

func (s *CourseService) Archive(courseID uint) (*model.Course, error) {
	course, err := s.Get(courseID)
	if err != nil {
		return nil, err
	}
	course.Status = model.CourseArchived
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Delete(courseID uint) error {
	if _, err := s.Get(courseID); err != nil {
		return err
	}
	return s.CourseRepo.SoftDelete(courseID)
}

type ModuleInput struct {
	Title       string `json:"title" binding:"required,min=2,max=255"`
	Description string `json:"description"`
	Order       int    `json:"order" binding:"omitempty,gte=0"`
}

func (s *CourseService) AddModule(courseID uint, input ModuleInput) (*model.CourseModule, error) {
	if _, err := s.Get(courseID); err != nil {
		return nil, err
	}

	order := input.Order
	if order == 0 {
		count, err := s.ModuleRepo.CountByCourse(courseID)
		if err != nil {
			return nil, err
		}
		order = int(count) + 1
	}

	m := model.CourseModule{
		CourseID:    courseID,
		Title:       input.Title,
		Description: input.Description,
		Order:       order,
	}
	if err := s.ModuleRepo.Create(&m); err != nil {
		return nil, err
	}

	if err := s.DB.Model(&model.Course{}).
		Where("id = ?", courseID).
		Update("module_count", gorm.Expr("module_count + 1")).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *CourseService) UpdateModule(courseID, moduleID uint, input ModuleInput) (*model.CourseModule, error) {
	m, err := s.moduleInCourse(courseID, moduleID)
	if err != nil {
		return nil, err
	}
	m.Title = input.Title
	m.Description = input.Description
	if input.Order > 0 {
		m.Order = input.Order
	}
	if err := s.ModuleRepo.Update(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *CourseService) DeleteModule(courseID, moduleID uint) error {
	m, err := s.moduleInCourse(courseID, moduleID)
	if err != nil {
		return err
	}

	count, err := s.LessonRepo.CountByModule(moduleID)
	if err != nil {
		return err
	}
	if count > 0 {
		return util.ErrModuleNotEmpty
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.CourseModule{}, moduleID).Error; err != nil {
			return err
		}
		return tx.Model(&model.Course{}).
			Where("id = ? AND module_count > 0", m.CourseID).
			Update("module_count", gorm.Expr("module_count - 1")).Error
	})
}

// moduleInCourse 按课程范围取章节,挂在别的课程下的 ID 视为不存在
func (s *CourseService) moduleInCourse(courseID, moduleID uint) (*model.CourseModule, error) {
	m, err := s.ModuleRepo.FindByID(moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}
	if m.CourseID != courseID {
		return nil, util.ErrModuleNotFound
	}
	return m, nil
}

func (s *CourseService) OwnedBy(courseID, teacherID uint) (*model.Course, error) {
	course, err := s.Get(courseID)
	if err != nil {
		return nil, err
	}
	if course.TeacherID != teacherID {
		return nil, util.ErrPermissionDenied
	}
	return course, nil
}

// uniqueSlug 由标题生成 slug，冲突时追加短随机后缀
func (s *CourseService) uniqueSlug(title string) string {
	base := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if base == "" {
		base = "course"
	}
	if _, err := s.CourseRepo.FindBySlug(base); errors.Is(err, gorm.ErrRecordNotFound) {
		return base
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
}
