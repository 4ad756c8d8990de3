package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPublishRequirement = errors.New("course must have at least one module and one lesson, with no empty modules")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseNotAvailable = errors.New("course not published or not available")
	ErrOwnCourse          = errors.New("teacher cannot enroll in own course")
	ErrModuleNotFound     = errors.New("module not found")
	ErrModuleNotEmpty     = errors.New("module still has lessons")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
	ErrNotEnrolled        = errors.New("not enrolled in this course")
	ErrEnrollmentInactive = errors.New("enrollment is not active")
	ErrNotAQuiz           = errors.New("lesson has no question bank")
	ErrQuizLesson         = errors.New("quiz lessons are completed by submitting the quiz")
	ErrCertificateExists  = errors.New("certificate already issued")
	ErrCertNotFound       = errors.New("certificate not found")
)
