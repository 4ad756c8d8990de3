package model

import (
	"time"
)

// UserBadge 用户获得的徽章，(user, course, name) 唯一，保证同名徽章不重复入账
type UserBadge struct {
	BaseModel
	UserID   uint      `gorm:"uniqueIndex:idx_user_course_badge;not null" json:"userId"`
	CourseID uint      `gorm:"uniqueIndex:idx_user_course_badge" json:"courseId"`
	Name     string    `gorm:"size:255;uniqueIndex:idx_user_course_badge;not null" json:"name"`
	Icon     string    `gorm:"size:255" json:"icon"`
	Points   int       `gorm:"default:0" json:"points"`
	EarnedAt time.Time `json:"earnedAt"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
