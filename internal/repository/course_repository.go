package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) FindBySlug(slug string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("slug = ?", slug).First(&course).Error
	return &course, err
}

// FindWithContent 课程详情，带已排序的章节和课时
func (r *CourseRepository) FindWithContent(id uint, publishedOnly bool) (*model.Course, error) {
	var course model.Course
	query := r.DB.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("course_modules.order ASC")
		})
	if publishedOnly {
		query = query.Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ?", model.LessonPublished).Order("lessons.order ASC")
		})
	} else {
		query = query.Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.order ASC")
		})
	}
	err := query.First(&course, id).Error
	return &course, err
}

// CourseFilter 课程列表筛选条件
type CourseFilter struct {
	Category  string
	Level     string
	TeacherID uint
	Status    string
	Search    string
}

func (r *CourseRepository) List(page, limit int, filter CourseFilter) ([]model.Course, int64, error) {
	query := r.DB.Model(&model.Course{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.TeacherID > 0 {
		query = query.Where("teacher_id = ?", filter.TeacherID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []model.Course
	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) SoftDelete(id uint) error {
	return r.DB.Delete(&model.Course{}, id).Error
}
