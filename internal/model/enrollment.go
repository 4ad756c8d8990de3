package model

import (
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

// Enrollment 选课台账，每个 (student, course) 组合最多一条记录
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	StudentID uint             `gorm:"uniqueIndex:idx_student_course;not null" json:"studentId"`
	CourseID  uint             `gorm:"uniqueIndex:idx_student_course;not null" json:"courseId"`
	Status    EnrollmentStatus `gorm:"size:20;default:'active';index" json:"status"`

	// 进度缓存字段，完成事件内重算，禁止漂移
	TotalLessons          int `gorm:"default:0" json:"totalLessons"`
	CompletedLessonsCount int `gorm:"default:0" json:"completedLessonsCount"`
	CompletionPercentage  int `gorm:"default:0" json:"completionPercentage"`

	EnrolledAt   time.Time  `json:"enrolledAt"`
	LastAccessed time.Time  `json:"lastAccessed"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`

	Course  *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Student *User   `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// EnrollmentLesson 已完成课时集合的成员记录
// 唯一索引保证同一课时不会被重复计入
type EnrollmentLesson struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EnrollmentID uint      `gorm:"uniqueIndex:idx_enrollment_lesson;not null" json:"enrollmentId"`
	LessonID     uint      `gorm:"uniqueIndex:idx_enrollment_lesson;not null" json:"lessonId"`
	CompletedAt  time.Time `json:"completedAt"`
}

func (EnrollmentLesson) TableName() string {
	return "enrollment_lessons"
}
