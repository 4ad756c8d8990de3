package service

import (
	"errors"
	"testing"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/util"
)

func quizLesson(correct ...int) *model.Lesson {
	questions := make([]model.QuizQuestion, len(correct))
	for i, c := range correct {
		questions[i] = model.QuizQuestion{
			Text:         "q",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: c,
		}
	}
	return &model.Lesson{Type: model.LessonQuiz, Questions: questions}
}

func TestGradeQuiz(t *testing.T) {
	tests := []struct {
		name        string
		lesson      *model.Lesson
		answers     []int
		wantScore   int
		wantCorrect int
		wantPerfect bool
	}{
		{
			name:        "all correct",
			lesson:      quizLesson(0, 1, 2),
			answers:     []int{0, 1, 2},
			wantScore:   100,
			wantCorrect: 3,
			wantPerfect: true,
		},
		{
			name:        "partially correct",
			lesson:      quizLesson(0, 1, 2),
			answers:     []int{0, 1, 3},
			wantScore:   67,
			wantCorrect: 2,
		},
		{
			name:        "all wrong",
			lesson:      quizLesson(0, 1),
			answers:     []int{1, 0},
			wantScore:   0,
			wantCorrect: 0,
		},
		{
			name:        "missing answers count as wrong",
			lesson:      quizLesson(0, 1, 2, 3),
			answers:     []int{0},
			wantScore:   25,
			wantCorrect: 1,
		},
		{
			name:        "extra answers are ignored",
			lesson:      quizLesson(0),
			answers:     []int{0, 1, 2},
			wantScore:   100,
			wantCorrect: 1,
			wantPerfect: true,
		},
		{
			name:        "out of range answer is wrong",
			lesson:      quizLesson(0, 1),
			answers:     []int{9, 1},
			wantScore:   50,
			wantCorrect: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GradeQuiz(tt.lesson, tt.answers)
			if err != nil {
				t.Fatalf("GradeQuiz() error = %v", err)
			}
			if got.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", got.Score, tt.wantScore)
			}
			if got.CorrectCount != tt.wantCorrect {
				t.Errorf("CorrectCount = %d, want %d", got.CorrectCount, tt.wantCorrect)
			}
			if got.Total != len(tt.lesson.Questions) {
				t.Errorf("Total = %d, want %d", got.Total, len(tt.lesson.Questions))
			}
			if got.Perfect() != tt.wantPerfect {
				t.Errorf("Perfect() = %v, want %v", got.Perfect(), tt.wantPerfect)
			}
		})
	}
}

func TestGradeQuizNotAQuiz(t *testing.T) {
	lessons := []*model.Lesson{
		{Type: model.LessonVideo},
		{Type: model.LessonQuiz}, // quiz 类型但题库为空
	}
	for _, l := range lessons {
		if _, err := GradeQuiz(l, []int{0}); !errors.Is(err, util.ErrNotAQuiz) {
			t.Errorf("GradeQuiz(%s) error = %v, want ErrNotAQuiz", l.Type, err)
		}
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{5, 0, 0}, // 课程没有已发布课时时进度保持 0
		{0, 10, 0},
		{1, 3, 33},
		{2, 3, 67},
		{10, 10, 100},
		{19, 20, 95},
	}
	for _, tt := range tests {
		if got := ProgressPercent(tt.completed, tt.total); got != tt.want {
			t.Errorf("ProgressPercent(%d, %d) = %d, want %d", tt.completed, tt.total, got, tt.want)
		}
	}
}

func TestRankForPoints(t *testing.T) {
	cfg := &config.ProgressConfig{}
	cfg.ApplyDefaults()

	tests := []struct {
		points int
		want   model.UserRank
	}{
		{0, model.RankBeginner},
		{199, model.RankBeginner},
		{200, model.RankIntermediate},
		{499, model.RankIntermediate},
		{500, model.RankPro},
		{10000, model.RankPro},
	}
	for _, tt := range tests {
		if got := RankForPoints(cfg, tt.points); got != tt.want {
			t.Errorf("RankForPoints(%d) = %s, want %s", tt.points, got, tt.want)
		}
	}

	// 段位单调不降
	prev := RankForPoints(cfg, 0)
	order := map[model.UserRank]int{model.RankBeginner: 0, model.RankIntermediate: 1, model.RankPro: 2}
	for p := 0; p <= 600; p += 10 {
		cur := RankForPoints(cfg, p)
		if order[cur] < order[prev] {
			t.Fatalf("rank dropped from %s to %s at %d points", prev, cur, p)
		}
		prev = cur
	}
}
