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

// swagger:model User
// 用户档案由平台主服务维护，本服务只保留分析所需的最小镜像。
type User struct {
	BaseModel
	Name     string    `gorm:"size:100;not null" json:"Name"`
	Email    string    `gorm:"size:100;unique;not null" json:"Email"`
	Role     UserRole  `gorm:"type:enum('student','teacher','admin');default:'student'" json:"Role"`
	Language string    `gorm:"size:10;default:'en'" json:"Language"`
	Disabled bool      `gorm:"default:false" json:"Disabled"`
	LastSeen time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"LastSeen"`
}

func (User) TableName() string {
	return "users"
}
