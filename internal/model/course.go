package model

import (
	"time"
)

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
	LevelAll          CourseLevel = "all"
)

// swagger:model Course
type Course struct {
	BaseModel
	Title            string       `gorm:"size:255;not null" json:"title"`
	Slug             string       `gorm:"size:255;uniqueIndex" json:"slug"`
	Description      string       `gorm:"type:text" json:"description"`
	ShortDescription string       `gorm:"size:200" json:"shortDescription"`
	Category         string       `gorm:"size:100;not null;index" json:"category"`
	Thumbnail        string       `gorm:"size:255" json:"thumbnail"`
	TeacherID        uint         `gorm:"index;not null" json:"teacherId"`
	Level            CourseLevel  `gorm:"size:20;default:'all'" json:"level"`
	Status           CourseStatus `gorm:"size:20;default:'draft';index" json:"status"`
	IsFree           bool         `gorm:"default:true" json:"isFree"`
	PriceAmount      float64      `gorm:"default:0" json:"priceAmount"`

	// 冗余统计字段，发布/选课时维护
	ModuleCount     int `gorm:"default:0" json:"moduleCount"`
	LessonCount     int `gorm:"default:0" json:"lessonCount"`
	EnrollmentCount int `gorm:"default:0" json:"enrollmentCount"`

	PublishedAt *time.Time `json:"publishedAt,omitempty"`

	Modules []CourseModule `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
	Lessons []Lesson       `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}
