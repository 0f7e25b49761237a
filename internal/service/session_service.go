package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"learner_analytics_backend/internal/model"
	"learner_analytics_backend/internal/repository"
	"learner_analytics_backend/internal/util"
)

// SessionService 学习会话遥测的写路径

type SessionService struct {
	SessionRepo *repository.SessionRepository
	Events      *EventPublisher
}

func NewSessionService(sessionRepo *repository.SessionRepository, events *EventPublisher) *SessionService {
	return &SessionService{SessionRepo: sessionRepo, Events: events}
}

// StartSessionInput 开始会话的请求体
type StartSessionInput struct {
	Activity string `json:"activity"`
}

func (s *SessionService) StartSession(ctx context.Context, userID uint, input StartSessionInput) (*model.StudySession, error) {
	session := &model.StudySession{
		UserID:    userID,
		StartTime: time.Now(),
		Activity:  input.Activity,
	}
	if err := s.SessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

// EndSessionInput 结束会话时上报的作答与专注度统计
type EndSessionInput struct {
	Questions  int     `json:"questions"`
	Correct    int     `json:"correct"`
	FocusScore float64 `json:"focusScore"`
}

// EndSession 结束会话并补全遥测。重复结束返回 ErrSessionClosed，
// 作答统计不自洽（负数或正确数超过题目数）返回 ErrInvalidTelemetry。
func (s *SessionService) EndSession(ctx context.Context, userID, sessionID uint, input EndSessionInput) (*model.StudySession, error) {
	if input.Questions < 0 || input.Correct < 0 || input.Correct > input.Questions {
		return nil, util.ErrInvalidTelemetry
	}

	session, err := s.SessionRepo.FindByIDAndUserID(sessionID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if session.EndTime != nil {
		return nil, util.ErrSessionClosed
	}

	now := time.Now()
	session.EndTime = &now
	session.Duration = int(now.Sub(session.StartTime).Minutes())
	session.Questions = input.Questions
	session.Correct = input.Correct
	session.FocusScore = clampFocus(input.FocusScore)

	if err := s.SessionRepo.Update(session); err != nil {
		return nil, err
	}

	s.Events.Publish(ctx, EventSessionRecorded, userID, nil)
	return session, nil
}

func clampFocus(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
