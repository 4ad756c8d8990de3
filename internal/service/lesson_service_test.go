package service

import (
	"errors"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
)

func newAuthoringServices(env *testEnv) (*LessonService, *CourseService) {
	lessonRepo := repository.NewLessonRepository(env.db)
	moduleRepo := repository.NewModuleRepository(env.db)
	courseRepo := repository.NewCourseRepository(env.db)
	lessons := NewLessonService(env.db, lessonRepo, moduleRepo, courseRepo, nil)
	courses := NewCourseService(env.db, courseRepo, moduleRepo, lessonRepo)
	return lessons, courses
}

// 两位教师各有一门课,用 A 的课程 ID 配 B 的课时 ID 必须按不存在处理
func TestLessonWriteScopedToCourse(t *testing.T) {
	env := newTestEnv(t)
	lessons, _ := newAuthoringServices(env)

	teacherA := env.createUser(t, model.Teacher)
	teacherB := env.createUser(t, model.Teacher)
	courseA, _ := env.createCourse(t, teacherA.ID, 1)
	_, lessonsB := env.createCourse(t, teacherB.ID, 1)
	foreign := lessonsB[0]

	input := LessonInput{Title: "hijacked title", Type: model.LessonArticle}

	if _, err := lessons.Update(courseA.ID, foreign.ID, input); !errors.Is(err, util.ErrLessonNotFound) {
		t.Errorf("Update() across courses error = %v, want ErrLessonNotFound", err)
	}
	if _, err := lessons.Publish(courseA.ID, foreign.ID); !errors.Is(err, util.ErrLessonNotFound) {
		t.Errorf("Publish() across courses error = %v, want ErrLessonNotFound", err)
	}
	if err := lessons.Delete(courseA.ID, foreign.ID); !errors.Is(err, util.ErrLessonNotFound) {
		t.Errorf("Delete() across courses error = %v, want ErrLessonNotFound", err)
	}

	var untouched model.Lesson
	if err := env.db.First(&untouched, foreign.ID).Error; err != nil {
		t.Fatalf("reload foreign lesson: %v", err)
	}
	if untouched.Title != foreign.Title {
		t.Errorf("foreign lesson title = %q, want %q", untouched.Title, foreign.Title)
	}

	// 自己课程下的课时照常可写
	mine, err := lessons.Create(courseA.ID, teacherA.ID, LessonInput{Title: "own lesson", Type: model.LessonArticle})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := lessons.Update(courseA.ID, mine.ID, LessonInput{Title: "own lesson v2", Type: model.LessonArticle}); err != nil {
		t.Errorf("Update() in own course error = %v", err)
	}
}

func TestModuleWriteScopedToCourse(t *testing.T) {
	env := newTestEnv(t)
	_, courses := newAuthoringServices(env)

	teacherA := env.createUser(t, model.Teacher)
	teacherB := env.createUser(t, model.Teacher)
	courseA, _ := env.createCourse(t, teacherA.ID, 0)
	courseB, _ := env.createCourse(t, teacherB.ID, 0)

	moduleB, err := courses.AddModule(courseB.ID, ModuleInput{Title: "B module"})
	if err != nil {
		t.Fatalf("AddModule() error = %v", err)
	}

	input := ModuleInput{Title: "hijacked module"}
	if _, err := courses.UpdateModule(courseA.ID, moduleB.ID, input); !errors.Is(err, util.ErrModuleNotFound) {
		t.Errorf("UpdateModule() across courses error = %v, want ErrModuleNotFound", err)
	}
	if err := courses.DeleteModule(courseA.ID, moduleB.ID); !errors.Is(err, util.ErrModuleNotFound) {
		t.Errorf("DeleteModule() across courses error = %v, want ErrModuleNotFound", err)
	}

	var untouched model.CourseModule
	if err := env.db.First(&untouched, moduleB.ID).Error; err != nil {
		t.Fatalf("reload module: %v", err)
	}
	if untouched.Title != "B module" {
		t.Errorf("module title = %q, want %q", untouched.Title, "B module")
	}

	// 归属正确时可正常更新和删除
	if _, err := courses.UpdateModule(courseB.ID, moduleB.ID, ModuleInput{Title: "B module v2"}); err != nil {
		t.Errorf("UpdateModule() in own course error = %v", err)
	}
	if err := courses.DeleteModule(courseB.ID, moduleB.ID); err != nil {
		t.Errorf("DeleteModule() in own course error = %v", err)
	}
}
