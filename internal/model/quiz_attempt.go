package model

// QuizAttempt 存储用户对测验课时的每次提交
type QuizAttempt struct {
	BaseModel
	UserID       uint  `gorm:"index" json:"userId"`
	CourseID     uint  `gorm:"index" json:"courseId"`
	LessonID     uint  `gorm:"index" json:"lessonId"`
	Score        int   `gorm:"not null" json:"score"`
	CorrectCount int   `gorm:"not null" json:"correctCount"`
	Total        int   `gorm:"not null" json:"total"`
	Answers      []int `gorm:"type:text;serializer:json" json:"answers"`
	Passed       bool  `gorm:"default:false" json:"passed"` // 满分才算通过
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
