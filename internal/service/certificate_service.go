package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CertificateService 证书签发与校验
type CertificateService struct {
	CertRepo *repository.CertificateRepository
	Cfg      *config.ProgressStore
}

func NewCertificateService(certRepo *repository.CertificateRepository, cfg *config.ProgressStore) *CertificateService {
	return &CertificateService{CertRepo: certRepo, Cfg: cfg}
}

// Eligible 进度是否达到签发门槛
func (s *CertificateService) Eligible(percentage int) bool {
	return percentage >= s.Cfg.Load().CertificateThreshold
}

// IssueIfEligible 在调用方事务内签发证书
// 依赖 (student, course) 唯一索引，重复调用返回已有证书且 created=false
func (s *CertificateService) IssueIfEligible(tx *gorm.DB, enrollment *model.Enrollment) (*model.Certificate, bool, error) {
	if !s.Eligible(enrollment.CompletionPercentage) {
		return nil, false, nil
	}

	certID := fmt.Sprintf("CERT-%s", strings.ToUpper(uuid.NewString()[:8]))
	cert := model.Certificate{
		StudentID:        enrollment.StudentID,
		CourseID:         enrollment.CourseID,
		CertificateID:    certID,
		VerificationCode: uuid.NewString(),
		Percentage:       enrollment.CompletionPercentage,
		Status:           model.CertificateIssued,
		FilePath:         certificateObjectName(certID),
		IssuedAt:         time.Now(),
	}

	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cert)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		var existing model.Certificate
		if err := tx.Where("student_id = ? AND course_id = ?", enrollment.StudentID, enrollment.CourseID).
			First(&existing).Error; err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}
	return &cert, true, nil
}

func (s *CertificateService) ListMine(studentID uint) ([]model.Certificate, error) {
	return s.CertRepo.ListByStudent(studentID)
}

func (s *CertificateService) GetForStudent(studentID, courseID uint) (*model.Certificate, error) {
	cert, err := s.CertRepo.FindByStudentAndCourse(studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCertNotFound
		}
		return nil, err
	}
	return cert, nil
}

// Verify 按校验码查证书，吊销的证书也返回，由调用方展示状态
func (s *CertificateService) Verify(code string) (*model.Certificate, error) {
	cert, err := s.CertRepo.FindByVerificationCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCertNotFound
		}
		return nil, err
	}
	return cert, nil
}
