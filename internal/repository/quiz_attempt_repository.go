package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type QuizAttemptRepository struct {
	DB *gorm.DB
}

func NewQuizAttemptRepository(db *gorm.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{DB: db}
}

func (r *QuizAttemptRepository) Create(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *QuizAttemptRepository) ListByUserAndLesson(userID, lessonID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Order("created_at DESC").
		Find(&attempts).Error
	return attempts, err
}

// BestScore 某课时的历史最高分，没有记录时返回 0
func (r *QuizAttemptRepository) BestScore(userID, lessonID uint) (int, error) {
	var best *int
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Select("MAX(score)").
		Scan(&best).Error
	if err != nil || best == nil {
		return 0, err
	}
	return *best, nil
}
