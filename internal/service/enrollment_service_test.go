package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db           *gorm.DB
	enrollment   *EnrollmentService
	gamification *GamificationService
	certificate  *CertificateService
	userRepo     *repository.UserRepository
	cfg          *config.ProgressConfig
	progress     *config.ProgressStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger.Log = zap.NewNop()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.ProgressConfig{}
	cfg.ApplyDefaults()
	progress := config.NewProgressStore(*cfg)

	userRepo := repository.NewUserRepository(db)
	gamification := NewGamificationService(userRepo, repository.NewBadgeRepository(db), progress, nil)
	certificate := NewCertificateService(repository.NewCertificateRepository(db), progress)
	enrollment := NewEnrollmentService(
		db,
		repository.NewEnrollmentRepository(db),
		repository.NewCourseRepository(db),
		repository.NewLessonRepository(db),
		repository.NewQuizAttemptRepository(db),
		gamification,
		certificate,
	)

	return &testEnv{
		db:           db,
		enrollment:   enrollment,
		gamification: gamification,
		certificate:  certificate,
		userRepo:     userRepo,
		cfg:          cfg,
		progress:     progress,
	}
}

func (e *testEnv) createUser(t *testing.T, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Name:     "user",
		Email:    fmt.Sprintf("user-%d-%s@example.com", time.Now().UnixNano(), role),
		Password: "hashed",
		Role:     role,
		Rank:     model.RankBeginner,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// createCourse 发布一门课程并挂 lessonCount 个非测验已发布课时
func (e *testEnv) createCourse(t *testing.T, teacherID uint, lessonCount int) (*model.Course, []model.Lesson) {
	t.Helper()
	now := time.Now()
	course := &model.Course{
		Title:       "Test Course",
		Slug:        fmt.Sprintf("test-course-%d", time.Now().UnixNano()),
		Category:    "test",
		TeacherID:   teacherID,
		Status:      model.CoursePublished,
		PublishedAt: &now,
	}
	if err := e.db.Create(course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}

	lessons := make([]model.Lesson, lessonCount)
	for i := 0; i < lessonCount; i++ {
		lessons[i] = model.Lesson{
			CourseID:    course.ID,
			TeacherID:   teacherID,
			Title:       fmt.Sprintf("Lesson %d", i+1),
			Type:        model.LessonArticle,
			Order:       i + 1,
			Status:      model.LessonPublished,
			PublishedAt: &now,
		}
		if err := e.db.Create(&lessons[i]).Error; err != nil {
			t.Fatalf("create lesson: %v", err)
		}
	}
	return course, lessons
}

func (e *testEnv) addQuizLesson(t *testing.T, course *model.Course, correct ...int) *model.Lesson {
	t.Helper()
	now := time.Now()
	lesson := quizLesson(correct...)
	lesson.CourseID = course.ID
	lesson.TeacherID = course.TeacherID
	lesson.Title = "Quiz"
	lesson.Status = model.LessonPublished
	lesson.PublishedAt = &now
	if err := e.db.Create(lesson).Error; err != nil {
		t.Fatalf("create quiz lesson: %v", err)
	}
	return lesson
}

func (e *testEnv) points(t *testing.T, userID uint) int {
	t.Helper()
	user, err := e.userRepo.FindByID(userID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	return user.Points
}

func TestEnroll(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, model.Teacher)
	student := env.createUser(t, model.Student)
	course, _ := env.createCourse(t, teacher.ID, 3)

	enrollment, err := env.enrollment.Enroll(student.ID, course.ID)
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if enrollment.Status != model.EnrollmentActive {
		t.Errorf("Status = %s, want active", enrollment.Status)
	}
	if enrollment.TotalLessons != 3 {
		t.Errorf("TotalLessons = %d, want 3", enrollment.TotalLessons)
	}
	if enrollment.CompletionPercentage != 0 {
		t.Errorf("CompletionPercentage = %d, want 0", enrollment.CompletionPercentage)
	}

	var updated model.Course
	env.db.First(&updated, course.ID)
	if updated.EnrollmentCount != 1 {
		t.Errorf("EnrollmentCount = %d, want 1", updated.EnrollmentCount)
	}

	// 重复选课
	if _, err := env.enrollment.Enroll(student.ID, course.ID); !errors.Is(err, util.ErrAlreadyEnrolled) {
		t.Errorf("duplicate enroll error = %v, want ErrAlreadyEnrolled", err)
	}

	// 教师选自己的课
	if _, err := env.enrollment.Enroll(teacher.ID, course.ID); !errors.Is(err, util.ErrOwnCourse) {
		t.Errorf("own course enroll error = %v, want ErrOwnCourse", err)
	}

	// 未发布课程
	draft, _ := env.createCourse(t, teacher.ID, 1)
	env.db.Model(draft).Update("status", model.CourseDraft)
	if _, err := env.enrollment.Enroll(student.ID, draft.ID); !errors.Is(err, util.ErrCourseNotAvailable) {
		t.Errorf("draft enroll error = %v, want ErrCourseNotAvailable", err)
	}

	// 不存在的课程
	if _, err := env.enrollment.Enroll(student.ID, 99999); !errors.Is(err, util.ErrCourseNotFound) {
		t.Errorf("missing course enroll error = %v, want ErrCourseNotFound", err)
	}
}

func TestCompleteLessonIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.createUser(t, model.Teacher)
	student := env.createUser(t, model.Student)
	course, lessons := env.createCourse(t, teacher.ID, 3)

	if _, err := env.enrollment.Enroll(student.ID, course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	outcome, err := env.enrollment.CompleteLesson(ctx, student.ID, course.ID, lessons[0].ID)
	if err != nil {
		t.Fatalf("CompleteLesson() error = %v", err)
	}
	if outcome.AlreadyDone {
		t.Error("first completion flagged as already done")
	}
	if outcome.Enrollment.CompletionPercentage != 33 {
		t.Errorf("CompletionPercentage = %d, want 33", outcome.Enrollment.CompletionPercentage)
	}
	if got := env.points(t, student.ID); got != env.cfg.PointsLesson {
		t.Errorf("points = %d, want %d", got, env.cfg.PointsLesson)
	}

	// 重复完成同一课时不加分不推进
	again, err := env.enrollment.CompleteLesson(ctx, student.ID, course.ID, lessons[0].ID)
	if err != nil {
		t.Fatalf("repeat CompleteLesson() error = %v", err)
	}
	if !again.AlreadyDone {
		t.Error("repeat completion not flagged as already done")
	}
	if again.Award != nil {
		t.Error("repeat completion awarded points")
	}
	if got := env.points(t, student.ID); got != env.cfg.PointsLesson {
		t.Errorf("points after repeat = %d, want %d", got, env.cfg.PointsLesson)
	}

	// 未报名用户
	other := env.createUser(t, model.Student)
	if _, err := env.enrollment.CompleteLesson(ctx, other.ID, course.ID, lessons[0].ID); !errors.Is(err, util.ErrNotEnrolled) {
		t.Errorf("not enrolled error = %v, want ErrNotEnrolled", err)
	}
}

func TestCompleteLessonRejectsQuiz(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, model.Teacher)
	student := env.createUser(t, model.Student)
	course, _ := env.createCourse(t, teacher.ID, 1)
	quiz := env.addQuizLesson(t, course, 0)

	if _, err := env.enrollment.Enroll(student.ID, course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	_, err := env.enrollment.CompleteLesson(context.Background(), student.ID, course.ID, quiz.ID)
	if !errors.Is(err, util.ErrQuizLesson) {
		t.Errorf("CompleteLesson(quiz) error = %v, want ErrQuizLesson", err)
	}
}

func TestCertificateAndBadgeThresholds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.createUser(t, model.Teacher)
	student := env.createUser(t, model.Student)
	course, lessons := env.createCourse(t, teacher.ID, 4)

	if _, err := env.enrollment.Enroll(student.ID, course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	// 50%:未达证书门槛
	env.enrollment.CompleteLesson(ctx, student.ID, course.ID, lessons[0].ID)
	outcome, err := env.enrollment.CompleteLesson(ctx, student.ID, course.ID, lessons[1].ID)
	if err != nil {
		t.Fatalf("CompleteLesson() error = %v", err)
	}
	if outcome.Certificate != nil {
		t.Error("certificate issued below threshold")
	}

	// 75%:达到证书门槛(70)，但完成状态门槛(95)未到
	outcome, err = env.enrollment.CompleteLesson(ctx, student.ID, course.ID, lessons[2].ID)
	if err != nil {
		t.Fatalf("CompleteLesson() error = %v", err)
	}
	if outcome.Certificate == nil || !outcome.NewCertificate {
		t.Fatal("certificate not issued at 75%")
	}
	if outcome.Enrollment.Status == model.EnrollmentCompleted {
		t.Error("enrollment marked completed below completion threshold")
	}
	firstCertID := outcome.Certificate.CertificateID

	// 100%:状态翻转、徽章入账、证书不重复签发
	outcome, err = env.enrollment.CompleteLesson(ctx, student.ID, course.ID, lessons[3].ID)
	if err != nil {
		t.Fatalf("CompleteLesson() error = %v", err)
	}
	if outcome.Enrollment.Status != model.EnrollmentCompleted {
		t.Errorf("Status = %s, want completed", outcome.Enrollment.Status)
	}
	if outcome.Enrollment.CompletedAt == nil {
		t.Error("CompletedAt not stamped")
	}
	if !outcome.BadgeEarned {
		t.Error("badge not earned at 100%")
	}
	if outcome.NewCertificate {
		t.Error("certificate re-issued at 100%")
	}
	if outcome.Certificate == nil || outcome.Certificate.CertificateID != firstCertID {
		t.Error("existing certificate not returned on re-check")
	}

	var certCount int64
	env.db.Model(&model.Certificate{}).
		Where("student_id = ? AND course_id = ?", student.ID, course.ID).
		Count(&certCount)
	if certCount != 1 {
		t.Errorf("certificate rows = %d, want 1", certCount)
	}

	badges, err := env.gamification.MyBadges(student.ID)
	if err != nil {
		t.Fatalf("MyBadges() error = %v", err)
	}
	if len(badges) != 1 {
		t.Fatalf("badges = %d, want 1", len(badges))
	}
	if badges[0].Name != "Course Master – Test Course" {
		t.Errorf("badge name = %q", badges[0].Name)
	}
}

func TestSubmitQuiz(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.createUser(t, model.Teacher)
	student := env.createUser(t, model.Student)
	course, _ := env.createCourse(t, teacher.ID, 1)
	quiz := env.addQuizLesson(t, course, 0, 1)

	if _, err := env.enrollment.Enroll(student.ID, course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	// 未满分:记录尝试、给参与分、进度不动
	outcome, err := env.enrollment.SubmitQuiz(ctx, student.ID, course.ID, quiz.ID, []int{0, 0})
	if err != nil {
		t.Fatalf("SubmitQuiz() error = %v", err)
	}
	if outcome.Passed {
		t.Error("partial score marked as passed")
	}
	if outcome.Score != 50 {
		t.Errorf("Score = %d, want 50", outcome.Score)
	}
	if got := env.points(t, student.ID); got != env.cfg.PointsQuizPartial {
		t.Errorf("points = %d, want %d", got, env.cfg.PointsQuizPartial)
	}

	view, err := env.enrollment.GetProgress(student.ID, course.ID)
	if err != nil {
		t.Fatalf("GetProgress() error = %v", err)
	}
	if len(view.CompletedLessonIDs) != 0 {
		t.Errorf("completed lessons after failed quiz = %d, want 0", len(view.CompletedLessonIDs))
	}

	// 满分:课时计入进度，满分积分入账
	outcome, err = env.enrollment.SubmitQuiz(ctx, student.ID, course.ID, quiz.ID, []int{0, 1})
	if err != nil {
		t.Fatalf("SubmitQuiz() error = %v", err)
	}
	if !outcome.Passed {
		t.Error("perfect score not marked as passed")
	}
	if outcome.Completion == nil || outcome.Completion.AlreadyDone {
		t.Fatal("perfect score did not complete the lesson")
	}
	wantPoints := env.cfg.PointsQuizPartial + env.cfg.PointsQuizPerfect
	if got := env.points(t, student.ID); got != wantPoints {
		t.Errorf("points = %d, want %d", got, wantPoints)
	}

	// 再次满分:尝试照记，进度和满分积分不重复
	outcome, err = env.enrollment.SubmitQuiz(ctx, student.ID, course.ID, quiz.ID, []int{0, 1})
	if err != nil {
		t.Fatalf("repeat SubmitQuiz() error = %v", err)
	}
	if !outcome.Completion.AlreadyDone {
		t.Error("repeat perfect submission not flagged as already done")
	}
	if got := env.points(t, student.ID); got != wantPoints {
		t.Errorf("points after repeat perfect = %d, want %d", got, wantPoints)
	}

	// 重考:从完成集合移除并重算，历史成绩保留
	attempts, err := env.enrollment.RetryQuiz(student.ID, course.ID, quiz.ID)
	if err != nil {
		t.Fatalf("RetryQuiz() error = %v", err)
	}
	if len(attempts) != 3 {
		t.Errorf("attempts = %d, want 3", len(attempts))
	}
	view, err = env.enrollment.GetProgress(student.ID, course.ID)
	if err != nil {
		t.Fatalf("GetProgress() after retry error = %v", err)
	}
	for _, id := range view.CompletedLessonIDs {
		if id == quiz.ID {
			t.Error("quiz still in completed set after retry")
		}
	}
	if view.Enrollment.CompletionPercentage != 0 {
		t.Errorf("percentage after retry = %d, want 0", view.Enrollment.CompletionPercentage)
	}

	// 重考后再次满分:重新计入进度并再发积分
	outcome, err = env.enrollment.SubmitQuiz(ctx, student.ID, course.ID, quiz.ID, []int{0, 1})
	if err != nil {
		t.Fatalf("SubmitQuiz() after retry error = %v", err)
	}
	if outcome.Completion.AlreadyDone {
		t.Error("post-retry perfect submission flagged as already done")
	}
	if got := env.points(t, student.ID); got != wantPoints+env.cfg.PointsQuizPerfect {
		t.Errorf("points after post-retry perfect = %d, want %d", got, wantPoints+env.cfg.PointsQuizPerfect)
	}
}

func TestSubmitQuizOnNonQuizLesson(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, model.Teacher)
	student := env.createUser(t, model.Student)
	course, lessons := env.createCourse(t, teacher.ID, 1)

	if _, err := env.enrollment.Enroll(student.ID, course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	_, err := env.enrollment.SubmitQuiz(context.Background(), student.ID, course.ID, lessons[0].ID, []int{0})
	if !errors.Is(err, util.ErrNotAQuiz) {
		t.Errorf("SubmitQuiz(article) error = %v, want ErrNotAQuiz", err)
	}
}

func TestUnenroll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.createUser(t, model.Teacher)
	student := env.createUser(t, model.Student)
	course, lessons := env.createCourse(t, teacher.ID, 2)

	enrollment, err := env.enrollment.Enroll(student.ID, course.ID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := env.enrollment.CompleteLesson(ctx, student.ID, course.ID, lessons[0].ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	pointsBefore := env.points(t, student.ID)

	if err := env.enrollment.Unenroll(student.ID, course.ID); err != nil {
		t.Fatalf("Unenroll() error = %v", err)
	}

	// 台账和完成集合物理删除
	var enrollCount, lessonCount int64
	env.db.Unscoped().Model(&model.Enrollment{}).Where("id = ?", enrollment.ID).Count(&enrollCount)
	env.db.Model(&model.EnrollmentLesson{}).Where("enrollment_id = ?", enrollment.ID).Count(&lessonCount)
	if enrollCount != 0 {
		t.Error("enrollment row survived unenroll")
	}
	if lessonCount != 0 {
		t.Error("enrollment lesson rows survived unenroll")
	}

	// 积分保留
	if got := env.points(t, student.ID); got != pointsBefore {
		t.Errorf("points after unenroll = %d, want %d", got, pointsBefore)
	}

	var updated model.Course
	env.db.First(&updated, course.ID)
	if updated.EnrollmentCount != 0 {
		t.Errorf("EnrollmentCount = %d, want 0", updated.EnrollmentCount)
	}

	// 可重新报名，进度从零开始
	fresh, err := env.enrollment.Enroll(student.ID, course.ID)
	if err != nil {
		t.Fatalf("re-enroll: %v", err)
	}
	if fresh.CompletionPercentage != 0 || fresh.CompletedLessonsCount != 0 {
		t.Error("re-enrollment carried over old progress")
	}

	// 未报名时退课
	if err := env.enrollment.Unenroll(teacher.ID, course.ID); !errors.Is(err, util.ErrNotEnrolled) {
		t.Errorf("unenroll without enrollment error = %v, want ErrNotEnrolled", err)
	}
}

func TestRecalculateAfterContentChange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.createUser(t, model.Teacher)
	student := env.createUser(t, model.Student)
	course, lessons := env.createCourse(t, teacher.ID, 2)

	if _, err := env.enrollment.Enroll(student.ID, course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := env.enrollment.CompleteLesson(ctx, student.ID, course.ID, lessons[0].ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// 教师新发布两节课，旧进度缓存过期
	now := time.Now()
	for i := 0; i < 2; i++ {
		lesson := model.Lesson{
			CourseID:    course.ID,
			TeacherID:   teacher.ID,
			Title:       fmt.Sprintf("New Lesson %d", i+1),
			Type:        model.LessonArticle,
			Status:      model.LessonPublished,
			PublishedAt: &now,
		}
		if err := env.db.Create(&lesson).Error; err != nil {
			t.Fatalf("create lesson: %v", err)
		}
	}

	enrollment, err := env.enrollment.Recalculate(student.ID, course.ID)
	if err != nil {
		t.Fatalf("Recalculate() error = %v", err)
	}
	if enrollment.TotalLessons != 4 {
		t.Errorf("TotalLessons = %d, want 4", enrollment.TotalLessons)
	}
	if enrollment.CompletionPercentage != 25 {
		t.Errorf("CompletionPercentage = %d, want 25", enrollment.CompletionPercentage)
	}
}

// 教师下架已完成的课时后,分子不能把失效课时算进去,百分比必须保持在 0 到 100 之间
func TestRecalculateAfterUnpublish(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.createUser(t, model.Teacher)
	student := env.createUser(t, model.Student)
	course, lessons := env.createCourse(t, teacher.ID, 3)

	if _, err := env.enrollment.Enroll(student.ID, course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	for _, lesson := range lessons[:2] {
		if _, err := env.enrollment.CompleteLesson(ctx, student.ID, course.ID, lesson.ID); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}

	// 下架其中一节已完成的课时:2 发布课时中完成 1
	env.db.Model(&model.Lesson{}).Where("id = ?", lessons[0].ID).Update("status", model.LessonDraft)
	enrollment, err := env.enrollment.Recalculate(student.ID, course.ID)
	if err != nil {
		t.Fatalf("Recalculate() error = %v", err)
	}
	if enrollment.TotalLessons != 2 || enrollment.CompletedLessonsCount != 1 {
		t.Errorf("total/completed = %d/%d, want 2/1", enrollment.TotalLessons, enrollment.CompletedLessonsCount)
	}
	if enrollment.CompletionPercentage != 50 {
		t.Errorf("CompletionPercentage = %d, want 50", enrollment.CompletionPercentage)
	}

	// 两节已完成课时全部下架,只剩一节未完成课时
	env.db.Model(&model.Lesson{}).Where("id = ?", lessons[1].ID).Update("status", model.LessonDraft)
	enrollment, err = env.enrollment.Recalculate(student.ID, course.ID)
	if err != nil {
		t.Fatalf("Recalculate() error = %v", err)
	}
	if enrollment.CompletionPercentage < 0 || enrollment.CompletionPercentage > 100 {
		t.Fatalf("CompletionPercentage = %d, out of range", enrollment.CompletionPercentage)
	}
	if enrollment.TotalLessons != 1 || enrollment.CompletedLessonsCount != 0 {
		t.Errorf("total/completed = %d/%d, want 1/0", enrollment.TotalLessons, enrollment.CompletedLessonsCount)
	}
	if enrollment.CompletionPercentage != 0 {
		t.Errorf("CompletionPercentage = %d, want 0", enrollment.CompletionPercentage)
	}
}

// 热更新策略后,后续完成事件按新积分额度入账
func TestAwardFollowsReloadedPolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.createUser(t, model.Teacher)
	student := env.createUser(t, model.Student)
	course, lessons := env.createCourse(t, teacher.ID, 2)

	if _, err := env.enrollment.Enroll(student.ID, course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if _, err := env.enrollment.CompleteLesson(ctx, student.ID, course.ID, lessons[0].ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got := env.points(t, student.ID); got != env.cfg.PointsLesson {
		t.Fatalf("points = %d, want %d", got, env.cfg.PointsLesson)
	}

	env.progress.Store(config.ProgressConfig{PointsLesson: 42})

	if _, err := env.enrollment.CompleteLesson(ctx, student.ID, course.ID, lessons[1].ID); err != nil {
		t.Fatalf("complete after reload: %v", err)
	}
	if got := env.points(t, student.ID); got != env.cfg.PointsLesson+42 {
		t.Errorf("points = %d, want %d", got, env.cfg.PointsLesson+42)
	}
}

func TestLeaderboardWithoutCache(t *testing.T) {
	env := newTestEnv(t)
	for i, points := range []int{50, 300, 700} {
		user := env.createUser(t, model.Student)
		env.db.Model(user).Updates(map[string]interface{}{
			"points": points,
			"rank":   RankForPoints(env.cfg, points),
			"name":   fmt.Sprintf("student-%d", i),
		})
	}

	entries, err := env.gamification.Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	if entries[0].Points != 700 || entries[0].Tier != model.RankPro {
		t.Errorf("top entry = %+v", entries[0])
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Points > entries[i-1].Points {
			t.Error("leaderboard not sorted by points")
		}
		if entries[i].Rank != i+1 {
			t.Errorf("rank = %d, want %d", entries[i].Rank, i+1)
		}
	}
}

func TestCertificateVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.createUser(t, model.Teacher)
	student := env.createUser(t, model.Student)
	course, lessons := env.createCourse(t, teacher.ID, 1)

	if _, err := env.enrollment.Enroll(student.ID, course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	outcome, err := env.enrollment.CompleteLesson(ctx, student.ID, course.ID, lessons[0].ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if outcome.Certificate == nil {
		t.Fatal("certificate not issued at 100%")
	}

	cert, err := env.certificate.Verify(outcome.Certificate.VerificationCode)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if cert.CertificateID != outcome.Certificate.CertificateID {
		t.Error("verify returned a different certificate")
	}
	if cert.Status != model.CertificateIssued {
		t.Errorf("Status = %s, want issued", cert.Status)
	}

	if _, err := env.certificate.Verify("bogus-code"); !errors.Is(err, util.ErrCertNotFound) {
		t.Errorf("bogus verify error = %v, want ErrCertNotFound", err)
	}
}
