package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LessonService struct {
	DB         *gorm.DB
	LessonRepo *repository.LessonRepository
	ModuleRepo *repository.ModuleRepository
	CourseRepo *repository.CourseRepository
	Storage    *StorageService
}

func NewLessonService(db *gorm.DB, lessonRepo *repository.LessonRepository, moduleRepo *repository.ModuleRepository, courseRepo *repository.CourseRepository, storage *StorageService) *LessonService {
	return &LessonService{DB: db, LessonRepo: lessonRepo, ModuleRepo: moduleRepo, CourseRepo: courseRepo, Storage: storage}
}

type LessonInput struct {
	Title     string               `json:"title" binding:"required,min=2,max=255"`
	Type      model.LessonType     `json:"type" binding:"omitempty,oneof=video article quiz material text"`
	Content   string               `json:"content"`
	ModuleID  *uint                `json:"moduleId"`
	Order     int                  `json:"order" binding:"omitempty,gte=0"`
	IsFree    bool                 `json:"isFree"`
	Questions []model.QuizQuestion `json:"questions"`
}

// Create 在课程下新建课时，quiz 类型必须携带合法题库
func (s *LessonService) Create(courseID, teacherID uint, input LessonInput) (*model.Lesson, error) {
	if input.ModuleID != nil {
		m, err := s.ModuleRepo.FindByID(*input.ModuleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrModuleNotFound
			}
			return nil, err
		}
		if m.CourseID != courseID {
			return nil, util.ErrModuleNotFound
		}
	}

	lessonType := input.Type
	if lessonType == "" {
		lessonType = model.LessonVideo
	}
	if lessonType == model.LessonQuiz {
		if err := validateQuestions(input.Questions); err != nil {
			return nil, err
		}
	}

	lesson := model.Lesson{
		CourseID:  courseID,
		ModuleID:  input.ModuleID,
		TeacherID: teacherID,
		Title:     input.Title,
		Type:      lessonType,
		Content:   input.Content,
		Order:     input.Order,
		IsFree:    input.IsFree,
		Status:    model.LessonDraft,
	}
	if lessonType == model.LessonQuiz {
		lesson.Questions = input.Questions
	}
	if err := s.LessonRepo.Create(&lesson); err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (s *LessonService) Update(courseID, lessonID uint, input LessonInput) (*model.Lesson, error) {
	lesson, err := s.getInCourse(courseID, lessonID)
	if err != nil {
		return nil, err
	}

	lesson.Title = input.Title
	lesson.Content = input.Content
	if input.Type != "" {
		lesson.Type = input.Type
	}
	if input.Order > 0 {
		lesson.Order = input.Order
	}
	lesson.IsFree = input.IsFree
	if lesson.Type == model.LessonQuiz {
		if err := validateQuestions(input.Questions); err != nil {
			return nil, err
		}
		lesson.Questions = input.Questions
	}

	if err := s.LessonRepo.Update(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *LessonService) Get(lessonID uint) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	return lesson, nil
}

// getInCourse 按课程范围取课时,挂在别的课程下的 ID 视为不存在
// 避免教师用自己的课程 ID 配他人的课时 ID 越权写
func (s *LessonService) getInCourse(courseID, lessonID uint) (*model.Lesson, error) {
	lesson, err := s.Get(lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.CourseID != courseID {
		return nil, util.ErrLessonNotFound
	}
	return lesson, nil
}

// GetForViewer 学员读课时，记一次浏览
func (s *LessonService) GetForViewer(courseID, lessonID uint) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindPublished(courseID, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	if err := s.LessonRepo.IncrementViewCount(lesson.ID); err != nil {
		logger.Log.Warn("view count increment failed", zap.Error(err))
	}
	return lesson, nil
}

func (s *LessonService) ListByCourse(courseID uint, publishedOnly bool) ([]model.Lesson, error) {
	return s.LessonRepo.FindByCourse(courseID, publishedOnly)
}

// Publish 发布课时并维护课程课时计数
func (s *LessonService) Publish(courseID, lessonID uint) (*model.Lesson, error) {
	lesson, err := s.getInCourse(courseID, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.Status == model.LessonPublished {
		return lesson, nil
	}

	now := time.Now()
	lesson.Status = model.LessonPublished
	lesson.PublishedAt = &now

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(lesson).Error; err != nil {
			return err
		}
		return tx.Model(&model.Course{}).
			Where("id = ?", lesson.CourseID).
			Update("lesson_count", gorm.Expr("lesson_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *LessonService) Delete(courseID, lessonID uint) error {
	lesson, err := s.getInCourse(courseID, lessonID)
	if err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Lesson{}, lessonID).Error; err != nil {
			return err
		}
		if lesson.Status == model.LessonPublished {
			return tx.Model(&model.Course{}).
				Where("id = ? AND lesson_count > 0", lesson.CourseID).
				Update("lesson_count", gorm.Expr("lesson_count - 1")).Error
		}
		return nil
	})
}

// UploadVideo 保存视频文件到存储后端并用 ffprobe 回填元数据
func (s *LessonService) UploadVideo(ctx context.Context, courseID, lessonID uint, file *multipart.FileHeader) (*model.Lesson, error) {
	lesson, err := s.getInCourse(courseID, lessonID)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range util.AllowedVideoExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("unsupported video format: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// 先落临时文件，ffprobe 需要本地路径
	tmp, err := os.CreateTemp("", "lesson-video-*"+ext)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := tmp.ReadFrom(src)
	if err != nil {
		return nil, err
	}

	// 按文件内容校验 MIME 类型，不信任客户端声明
	probe, err := os.Open(tmp.Name())
	if err != nil {
		return nil, err
	}
	contentType, err := util.ValidateMimeType(probe, []string{util.MimeVideo, util.MimeOctetStream})
	probe.Close()
	if err != nil {
		return nil, err
	}

	objectName := videoObjectName(lesson.CourseID, ext)

	url, err := s.Storage.UploadFile(ctx, objectName, tmp.Name(), contentType)
	if err != nil {
		return nil, err
	}

	lesson.VideoURL = url
	lesson.FileSize = size
	lesson.MimeType = contentType
	if info, err := util.ProbeVideo(tmp.Name()); err == nil {
		lesson.Duration = info.Duration / 60
		lesson.FileSize = info.Size
	} else {
		logger.Log.Warn("video probe failed", zap.Uint("lessonId", lesson.ID), zap.Error(err))
	}

	if err := s.LessonRepo.Update(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func validateQuestions(questions []model.QuizQuestion) error {
	if len(questions) == 0 {
		return fmt.Errorf("quiz lesson requires at least one question")
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %d has no text", i+1)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d needs at least two options", i+1)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("question %d has an out of range answer index", i+1)
		}
	}
	return nil
}
