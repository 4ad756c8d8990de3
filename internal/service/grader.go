package service

import (
	"math"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/util"
)

// GradeResult 测验判分结果
type GradeResult struct {
	Score        int `json:"score"`
	CorrectCount int `json:"correctCount"`
	Total        int `json:"total"`
}

// Perfect 满分才允许课时进入已完成集合
func (g GradeResult) Perfect() bool {
	return g.Score == 100
}

// GradeQuiz 按位置比对答案与题库
// 缺失或越界的答案按答错处理，不报错
func GradeQuiz(lesson *model.Lesson, answers []int) (GradeResult, error) {
	if !lesson.IsQuiz() {
		return GradeResult{}, util.ErrNotAQuiz
	}

	correct := 0
	for i, q := range lesson.Questions {
		if i < len(answers) && answers[i] == q.CorrectIndex {
			correct++
		}
	}

	total := len(lesson.Questions)
	return GradeResult{
		Score:        int(math.Round(float64(correct) / float64(total) * 100)),
		CorrectCount: correct,
		Total:        total,
	}, nil
}

// ProgressPercent 完成百分比，totalLessons 为 0 时保持 0
func ProgressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// RankForPoints 段位是累计积分的纯函数
func RankForPoints(cfg *config.ProgressConfig, points int) model.UserRank {
	switch {
	case points >= cfg.RankPro:
		return model.RankPro
	case points >= cfg.RankIntermediate:
		return model.RankIntermediate
	default:
		return model.RankBeginner
	}
}
