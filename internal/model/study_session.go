package model

import "time"

// StudySession 学习会话遥测记录
type StudySession struct {
	BaseModel
	UserID     uint       `gorm:"index;type:bigint unsigned" json:"userId"`
	StartTime  time.Time  `gorm:"index" json:"startTime"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	Duration   int        `gorm:"default:0" json:"duration"` // 分钟
	Questions  int        `gorm:"default:0" json:"questions"`
	Correct    int        `gorm:"default:0" json:"correct"`
	FocusScore float64    `gorm:"default:0" json:"focusScore"` // 0-1，自报或由前端行为推断
	Activity   string     `gorm:"type:text" json:"activity"`
}

func (StudySession) TableName() string {
	return "study_sessions"
}
