package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"learner_analytics_backend/internal/config"
	"learner_analytics_backend/internal/model"
	"learner_analytics_backend/internal/repository"
	"learner_analytics_backend/internal/util"
	"learner_analytics_backend/pkg/logger"
)

// ExportService 每晚把每个用户的分析快照导出到对象存储，
// 供报表系统和数据团队离线消费。

type ExportService struct {
	Analytics  *AnalyticsService
	GoalSvc    *GoalService
	SampleRepo *repository.SampleRepository
	Client     *minio.Client
	Bucket     string
	Prefix     string
}

func NewExportService(cfg *config.Config, analytics *AnalyticsService, goalSvc *GoalService, sampleRepo *repository.SampleRepository) (*ExportService, error) {
	if cfg.Storage.Type != util.StorageMinio {
		return nil, fmt.Errorf("analytics export requires minio storage, got %q", cfg.Storage.Type)
	}

	client, err := minio.New(cfg.Storage.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.MinioAccessID, cfg.Storage.MinioSecret, ""),
		Secure: cfg.Storage.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}

	prefix := cfg.Export.Prefix
	if prefix == "" {
		prefix = "analytics-snapshots"
	}

	return &ExportService{
		Analytics:  analytics,
		GoalSvc:    goalSvc,
		SampleRepo: sampleRepo,
		Client:     client,
		Bucket:     cfg.Storage.MinioBucket,
		Prefix:     prefix,
	}, nil
}

// UserSnapshot 单个用户的完整分析快照
type UserSnapshot struct {
	UserID      uint                  `json:"userId"`
	GeneratedAt time.Time             `json:"generatedAt"`
	Trajectory  *TrajectoryReport     `json:"trajectory"`
	Velocity    *model.VelocityResult `json:"velocity"`
	Study       *StudyReport          `json:"study"`
	Risk        *model.RiskScore      `json:"risk"`
	GoalsAtRisk []GoalRiskItem        `json:"goalsAtRisk"`
}

// ExportAll 遍历账本中的全部用户并逐个导出。单个用户失败只记日志，
// 不中断整批导出。
func (s *ExportService) ExportAll(ctx context.Context) error {
	userIDs, err := s.SampleRepo.DistinctUserIDs()
	if err != nil {
		return err
	}

	exported := 0
	for _, userID := range userIDs {
		if err := s.exportUser(ctx, userID); err != nil {
			logger.Log.Error("snapshot export failed",
				zap.Uint("userId", userID),
				zap.Error(err))
			continue
		}
		exported++
	}

	logger.Log.Info("nightly snapshot export finished",
		zap.Int("users", len(userIDs)),
		zap.Int("exported", exported))
	return nil
}

func (s *ExportService) exportUser(ctx context.Context, userID uint) error {
	// 快照必须反映账本最新状态，全部绕过缓存重算
	trajectory, err := s.Analytics.GetTrajectory(ctx, userID, nil, util.DefaultTrajectoryWindow, util.DefaultForecastHorizon, true)
	if err != nil {
		return err
	}
	velocity, err := s.Analytics.GetVelocity(ctx, userID, nil, util.DefaultTrajectoryWindow, true)
	if err != nil {
		return err
	}
	study, err := s.Analytics.GetStudyEffectiveness(ctx, userID, util.DefaultStudyLookbackDays, true)
	if err != nil {
		return err
	}
	risk, err := s.Analytics.GetRisk(ctx, userID, true)
	if err != nil {
		return err
	}
	goalsAtRisk, err := s.GoalSvc.GoalsAtRisk(ctx, userID)
	if err != nil {
		return err
	}

	snapshot := UserSnapshot{
		UserID:      userID,
		GeneratedAt: time.Now(),
		Trajectory:  trajectory,
		Velocity:    velocity,
		Study:       study,
		Risk:        risk,
		GoalsAtRisk: goalsAtRisk,
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	object := fmt.Sprintf("%s/%s/user_%d.json",
		s.Prefix, time.Now().Format(util.DateFormat), userID)
	_, err = s.Client.PutObject(ctx, s.Bucket, object,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	return err
}
