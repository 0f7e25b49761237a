package repository

import (
	"learner_analytics_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

// SessionRepository 处理学习会话遥测的数据访问

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(session *model.StudySession) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) Update(session *model.StudySession) error {
	return r.DB.Save(session).Error
}

func (r *SessionRepository) FindByIDAndUserID(id, userID uint) (*model.StudySession, error) {
	var session model.StudySession
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindCompletedSince 返回窗口内已结束的会话，按开始时间升序。
// 未结束的会话没有时长和作答统计，不参与效果分析。
func (r *SessionRepository) FindCompletedSince(userID uint, since time.Time) ([]model.StudySession, error) {
	var sessions []model.StudySession
	err := r.DB.Where("user_id = ? AND start_time >= ? AND end_time IS NOT NULL", userID, since).
		Order("start_time").
		Find(&sessions).Error
	return sessions, err
}
