package service

import (
	"context"
	"sort"
	"time"

	"learner_analytics_backend/internal/engine"
	"learner_analytics_backend/internal/model"
	"learner_analytics_backend/internal/repository"
	"learner_analytics_backend/internal/util"
	"learner_analytics_backend/pkg/monitoring"
)

// AssessmentService 接收判分后的作答记录并产出能力样本。
// 判题本身属于测评系统，这里只消费其结果。

type AssessmentService struct {
	ResponseRepo *repository.ResponseRepository
	SampleRepo   *repository.SampleRepository
	Events       *EventPublisher
	Params       engine.Params
}

func NewAssessmentService(
	responseRepo *repository.ResponseRepository,
	sampleRepo *repository.SampleRepository,
	events *EventPublisher,
	params engine.Params,
) *AssessmentService {
	return &AssessmentService{
		ResponseRepo: responseRepo,
		SampleRepo:   sampleRepo,
		Events:       events,
		Params:       params,
	}
}

// GradedResponse 一道题的判分结果（来自测评系统的回调）
type GradedResponse struct {
	QuestionID     uint      `json:"questionId" binding:"required"`
	CategoryID     *string   `json:"categoryId"`
	Difficulty     float64   `json:"difficulty"`
	Discrimination float64   `json:"discrimination"`
	Correct        bool      `json:"correct"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

// EstimateForAttempt 持久化一次测评的作答记录，做整体与分类目的能力
// 估计，并把新样本追加进账本。返回整体能力样本。
// 请求体为空时改用账本中已有的作答记录重新估计（重算入口）。
// 估计从用户最近一条样本热启动，没有历史时先验均值取 0。
func (s *AssessmentService) EstimateForAttempt(ctx context.Context, userID, attemptID uint, graded []GradedResponse) (*model.AbilitySample, error) {
	now := time.Now()

	var rows []model.ItemResponse
	if len(graded) > 0 {
		rows = make([]model.ItemResponse, 0, len(graded))
		for _, g := range graded {
			answeredAt := g.AnsweredAt
			if answeredAt.IsZero() {
				answeredAt = now
			}
			rows = append(rows, model.ItemResponse{
				UserID:         userID,
				AttemptID:      attemptID,
				QuestionID:     g.QuestionID,
				CategoryID:     g.CategoryID,
				Difficulty:     g.Difficulty,
				Discrimination: g.Discrimination,
				Correct:        g.Correct,
				AnsweredAt:     answeredAt,
			})
		}
		if err := s.ResponseRepo.CreateBatch(rows); err != nil {
			return nil, err
		}
	} else {
		stored, err := s.ResponseRepo.FindByAttempt(userID, attemptID)
		if err != nil {
			return nil, err
		}
		if len(stored) == 0 {
			return nil, util.ErrAttemptNoResponses
		}
		rows = stored
	}

	overall, err := s.estimateAndAppend(ctx, userID, attemptID, nil, toObservations(rows, nil), now)
	if err != nil {
		return nil, err
	}

	for _, category := range distinctCategories(rows) {
		c := category
		if _, err := s.estimateAndAppend(ctx, userID, attemptID, &c, toObservations(rows, &c), now); err != nil {
			return nil, err
		}
	}

	return overall, nil
}

func (s *AssessmentService) estimateAndAppend(ctx context.Context, userID, attemptID uint, categoryID *string, items []engine.ItemObservation, estimatedAt time.Time) (*model.AbilitySample, error) {
	var prior *float64
	if latest, err := s.SampleRepo.Latest(userID, categoryID); err == nil {
		prior = &latest.Ability
	}

	result := engine.EstimateAbility(items, prior, s.Params)
	monitoring.EstimationsTotal.Inc()
	if result.LowConfidence {
		monitoring.EstimationDivergences.Inc()
	}

	sample := &model.AbilitySample{
		UserID:        userID,
		AttemptID:     attemptID,
		CategoryID:    categoryID,
		Ability:       result.Ability,
		StandardError: result.StandardError,
		ItemCount:     len(items),
		LowConfidence: result.LowConfidence,
		EstimatedAt:   estimatedAt,
	}
	if err := s.SampleRepo.Append(sample); err != nil {
		return nil, err
	}

	s.Events.Publish(ctx, EventSampleAppended, userID, categoryID)
	return sample, nil
}

func toObservations(rows []model.ItemResponse, categoryID *string) []engine.ItemObservation {
	items := make([]engine.ItemObservation, 0, len(rows))
	for _, r := range rows {
		if categoryID != nil && (r.CategoryID == nil || *r.CategoryID != *categoryID) {
			continue
		}
		items = append(items, engine.ItemObservation{
			Difficulty:     r.Difficulty,
			Discrimination: r.Discrimination,
			Correct:        r.Correct,
		})
	}
	return items
}

func distinctCategories(rows []model.ItemResponse) []string {
	seen := map[string]bool{}
	for _, r := range rows {
		if r.CategoryID != nil {
			seen[*r.CategoryID] = true
		}
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}
