package model

import "time"

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalAbandoned GoalStatus = "abandoned"
)

// LearningGoal 学习目标定义：在 TargetDate 前把能力值提升到 TargetValue
type LearningGoal struct {
	BaseModel
	UserID      uint       `gorm:"index;type:bigint unsigned" json:"userId"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	CategoryID  *string    `gorm:"size:64" json:"categoryId,omitempty"`
	TargetValue float64    `gorm:"not null" json:"targetValue"`
	TargetDate  time.Time  `gorm:"type:datetime;not null" json:"targetDate"`
	Status      GoalStatus `gorm:"type:enum('active','completed','abandoned');default:'active'" json:"status"`
}

func (LearningGoal) TableName() string {
	return "learning_goals"
}

// GoalPrediction 目标达成预测（派生数据，按需重算）
type GoalPrediction struct {
	GoalID               uint      `json:"goalId"`
	TargetValue          float64   `json:"targetValue"`
	TargetDate           time.Time `json:"targetDate"`
	PredictedValue       float64   `json:"predictedValueAtTargetDate"`
	ProbabilityOfSuccess float64   `json:"probabilityOfSuccess"` // 0-1
	IsAtRisk             bool      `json:"isAtRisk"`
	InsufficientData     bool      `json:"insufficientData"`
}
