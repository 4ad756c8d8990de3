package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) FindByStudentAndCourse(studentID, courseID uint) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&cert).Error
	return &cert, err
}

func (r *CertificateRepository) FindByVerificationCode(code string) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.DB.Preload("Course").Where("verification_code = ?", code).First(&cert).Error
	return &cert, err
}

func (r *CertificateRepository) ListByStudent(studentID uint) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := r.DB.Preload("Course").
		Where("student_id = ?", studentID).
		Order("issued_at DESC").
		Find(&certs).Error
	return certs, err
}
