package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) Create(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *LessonRepository) FindByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	return &lesson, err
}

// FindPublished 仅返回已发布且未删除的课时，进度相关路径一律走这里
func (r *LessonRepository) FindPublished(courseID, lessonID uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.Where("id = ? AND course_id = ? AND status = ?", lessonID, courseID, model.LessonPublished).
		First(&lesson).Error
	return &lesson, err
}

// CountPublished 进度百分比的分母
func (r *LessonRepository) CountPublished(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lesson{}).
		Where("course_id = ? AND status = ?", courseID, model.LessonPublished).
		Count(&count).Error
	return count, err
}

func (r *LessonRepository) FindByCourse(courseID uint, publishedOnly bool) ([]model.Lesson, error) {
	query := r.DB.Where("course_id = ?", courseID)
	if publishedOnly {
		query = query.Where("status = ?", model.LessonPublished)
	}
	var lessons []model.Lesson
	err := query.Order("`order` ASC").Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) CountByModule(moduleID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lesson{}).Where("module_id = ?", moduleID).Count(&count).Error
	return count, err
}

func (r *LessonRepository) Update(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

func (r *LessonRepository) SoftDelete(id uint) error {
	return r.DB.Delete(&model.Lesson{}, id).Error
}

func (r *LessonRepository) IncrementViewCount(id uint) error {
	return r.DB.Model(&model.Lesson{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1")).
		Error
}
