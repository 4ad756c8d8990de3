package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) FindByStudentAndCourse(studentID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	return &enrollment, err
}

func (r *EnrollmentRepository) FindWithCourse(studentID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Preload("Course").
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	return &enrollment, err
}

func (r *EnrollmentRepository) ListByStudent(studentID uint, status string, page, limit int) ([]model.Enrollment, int64, error) {
	query := r.DB.Model(&model.Enrollment{}).Where("student_id = ?", studentID)
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var enrollments []model.Enrollment
	offset := (page - 1) * limit
	err := query.Preload("Course").
		Order("enrolled_at DESC").
		Offset(offset).Limit(limit).
		Find(&enrollments).Error
	return enrollments, total, err
}

// ListByCourse 教师侧的学员名册
func (r *EnrollmentRepository) ListByCourse(courseID uint, page, limit int) ([]model.Enrollment, int64, error) {
	query := r.DB.Model(&model.Enrollment{}).Where("course_id = ?", courseID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var enrollments []model.Enrollment
	offset := (page - 1) * limit
	err := query.Preload("Student").
		Order("enrolled_at DESC").
		Offset(offset).Limit(limit).
		Find(&enrollments).Error
	return enrollments, total, err
}

// CountByStatus 按状态聚合，选课统计接口使用
func (r *EnrollmentRepository) CountByStatus(studentID uint) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.DB.Model(&model.Enrollment{}).
		Select("status, COUNT(*) as count").
		Where("student_id = ?", studentID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(rows))
	for _, r := range rows {
		result[r.Status] = r.Count
	}
	return result, nil
}

// CompletedLessonIDs 已完成课时集合
func (r *EnrollmentRepository) CompletedLessonIDs(enrollmentID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.EnrollmentLesson{}).
		Where("enrollment_id = ?", enrollmentID).
		Order("completed_at ASC").
		Pluck("lesson_id", &ids).Error
	return ids, err
}
