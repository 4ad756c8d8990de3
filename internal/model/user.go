package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

type UserRank string

const (
	RankBeginner     UserRank = "Beginner"
	RankIntermediate UserRank = "Intermediate"
	RankPro          UserRank = "Pro"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:100;unique;not null" json:"email"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Role     UserRole `gorm:"size:20;default:'student'" json:"role"`

	// 游戏化账本：积分只增不减，段位由累计积分导出
	Points int      `gorm:"default:0" json:"points"`
	Rank   UserRank `gorm:"size:20;default:'Beginner'" json:"rank"`

	Avatar    string    `gorm:"size:255" json:"avatar"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `json:"lastLogin"`
	LastSeen  time.Time `json:"lastSeen"`

	Badges []UserBadge `gorm:"foreignKey:UserID" json:"badges,omitempty"`
}

func (User) TableName() string {
	return "users"
}
