package util

import (
	"testing"

	"lms_backend/internal/model"
)

func TestAllow(t *testing.T) {
	admin := &Claims{UserID: 1, Role: model.Admin}
	owner := &Claims{UserID: 2, Role: model.Teacher}
	otherTeacher := &Claims{UserID: 3, Role: model.Teacher}
	student := &Claims{UserID: 4, Role: model.Student}

	course := Resource{Kind: "course", OwnerID: 2}

	tests := []struct {
		name   string
		claims *Claims
		action Action
		want   bool
	}{
		{"nil claims denied", nil, ActionRead, false},
		{"admin can write", admin, ActionWrite, true},
		{"admin can enroll anything", admin, ActionEnroll, true},
		{"anyone can read", student, ActionRead, true},
		{"owner can write", owner, ActionWrite, true},
		{"owner can publish", owner, ActionPublish, true},
		{"owner can view students", owner, ActionViewStudents, true},
		{"other teacher cannot write", otherTeacher, ActionWrite, false},
		{"student cannot publish", student, ActionPublish, false},
		{"student can enroll", student, ActionEnroll, true},
		{"owner cannot enroll own course", owner, ActionEnroll, false},
		{"other teacher can enroll", otherTeacher, ActionEnroll, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allow(tt.claims, course, tt.action); got != tt.want {
				t.Errorf("Allow() = %v, want %v", got, tt.want)
			}
		})
	}
}
