package model

import (
	"time"
)

type LessonType string

const (
	LessonVideo    LessonType = "video"
	LessonArticle  LessonType = "article"
	LessonQuiz     LessonType = "quiz"
	LessonMaterial LessonType = "material"
	LessonText     LessonType = "text"
)

type LessonStatus string

const (
	LessonDraft     LessonStatus = "draft"
	LessonPublished LessonStatus = "published"
	LessonArchived  LessonStatus = "archived"
)

// QuizQuestion 测验题目，按顺序存储在课时的题库中
type QuizQuestion struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID  uint   `gorm:"index;not null" json:"courseId"`
	ModuleID  *uint  `gorm:"index" json:"moduleId,omitempty"`
	TeacherID uint   `gorm:"index;not null" json:"teacherId"`
	Title     string `gorm:"size:255;not null" json:"title"`

	Type    LessonType `gorm:"size:20;default:'video'" json:"type"`
	Content string     `gorm:"type:text" json:"content"`

	// 视频课时字段
	VideoURL string  `gorm:"size:500" json:"videoUrl"`
	Duration float64 `gorm:"default:0" json:"duration"` // 分钟
	FileSize int64   `gorm:"default:0" json:"fileSize"`
	MimeType string  `gorm:"size:100" json:"mimeType"`

	// 仅 quiz 类型课时携带题库
	Questions []QuizQuestion `gorm:"type:text;serializer:json" json:"questions,omitempty"`

	Order        int          `gorm:"default:0" json:"order"`
	LessonNumber string       `gorm:"size:20" json:"lessonNumber"`
	Status       LessonStatus `gorm:"size:20;default:'draft';index" json:"status"`
	IsFree       bool         `gorm:"default:false" json:"isFree"`

	ViewCount       int `gorm:"default:0" json:"viewCount"`
	CompletionCount int `gorm:"default:0" json:"completionCount"`

	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// IsQuiz 是否为携带题库的测验课时
func (l *Lesson) IsQuiz() bool {
	return l.Type == LessonQuiz && len(l.Questions) > 0
}
