package util

import (
	"lms_backend/internal/model"
)

type Action string

const (
	ActionRead         Action = "read"
	ActionWrite        Action = "write"
	ActionPublish      Action = "publish"
	ActionEnroll       Action = "enroll"
	ActionViewStudents Action = "view_students"
)

// Resource 授权判定的目标对象
type Resource struct {
	Kind    string // course, module, lesson, enrollment, certificate
	OwnerID uint   // 资源归属者（课程的教师、台账的学生）
}

// Allow 集中式能力判定，代替散落在各 handler 里的角色判断
// 每个请求计算一次，结果不缓存
func Allow(claims *Claims, res Resource, action Action) bool {
	if claims == nil {
		return false
	}
	if claims.Role == model.Admin {
		return true
	}

	switch action {
	case ActionRead:
		return true
	case ActionWrite, ActionPublish, ActionViewStudents:
		// 仅资源归属教师
		return claims.Role == model.Teacher && claims.UserID == res.OwnerID
	case ActionEnroll:
		// 教师不能选自己的课，其余已认证用户均可
		return claims.UserID != res.OwnerID
	}
	return false
}
