package model

import (
	"time"
)

type CertificateStatus string

const (
	CertificateIssued  CertificateStatus = "issued"
	CertificateRevoked CertificateStatus = "revoked"
)

// Certificate 结业证书，每个 (student, course) 组合最多签发一张
// 签发后只读，仅允许吊销
// swagger:model Certificate
type Certificate struct {
	BaseModel
	StudentID uint `gorm:"uniqueIndex:idx_cert_student_course;not null" json:"studentId"`
	CourseID  uint `gorm:"uniqueIndex:idx_cert_student_course;not null" json:"courseId"`
	TeacherID uint `gorm:"index" json:"teacherId"`

	CertificateID    string `gorm:"size:40;uniqueIndex;not null" json:"certificateId"` // CERT-xxxxxxxx
	Title            string `gorm:"size:255" json:"title"`
	FilePath         string `gorm:"size:500;not null" json:"filePath"`
	FileURL          string `gorm:"size:500" json:"fileUrl"`
	VerificationCode string `gorm:"size:36;uniqueIndex" json:"verificationCode"`

	// 签发时刻的课程进度
	Percentage int `json:"percentage"`

	Status           CertificateStatus `gorm:"size:20;default:'issued';index" json:"status"`
	IssuedAt         time.Time         `json:"issuedAt"`
	RevokedAt        *time.Time        `json:"revokedAt,omitempty"`
	RevocationReason string            `gorm:"size:255" json:"revocationReason,omitempty"`

	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Certificate) TableName() string {
	return "certificates"
}
