package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var studyNow = time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC)

func session(daysAgo, hour, minutes, questions, correct int, focus float64) SessionRecord {
	return SessionRecord{
		Start:      studyNow.AddDate(0, 0, -daysAgo).Truncate(24 * time.Hour).Add(time.Duration(hour) * time.Hour),
		Minutes:    minutes,
		Questions:  questions,
		Correct:    correct,
		FocusScore: focus,
	}
}

// 场景：窗口内零会话——全零统计、正确率为 0（不是 NaN）、无任何建议
func TestAnalyzeStudy_NoSessions(t *testing.T) {
	stats, insights, schedule := AnalyzeStudy(nil, 0, studyNow, DefaultParams())

	assert.Equal(t, 0, stats.TotalSessions)
	assert.Equal(t, 0, stats.TotalQuestions)
	assert.Equal(t, 0.0, stats.OverallAccuracy)
	assert.Equal(t, 0, stats.StudyStreakDays)
	assert.Empty(t, insights)
	assert.Nil(t, schedule)
}

// 有会话但一题未答：正确率仍是 0，不允许除零
func TestAnalyzeStudy_SessionsWithoutQuestions(t *testing.T) {
	sessions := []SessionRecord{
		session(1, 10, 30, 0, 0, 0.8),
		session(2, 10, 25, 0, 0, 0.7),
	}

	stats, _, _ := AnalyzeStudy(sessions, 0, studyNow, DefaultParams())

	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 0.0, stats.OverallAccuracy)
	assert.False(t, stats.OverallAccuracy != stats.OverallAccuracy, "accuracy 不可以是 NaN")
}

// 历史脏数据里正确数可能超过题目数：正确率仍要落在 [0,1]
func TestAnalyzeStudy_AccuracyStaysInUnitInterval(t *testing.T) {
	sessions := []SessionRecord{
		session(1, 19, 30, 10, 15, 0.9),
	}

	stats, _, _ := AnalyzeStudy(sessions, 0, studyNow, DefaultParams())

	assert.LessOrEqual(t, stats.OverallAccuracy, 1.0)
	assert.GreaterOrEqual(t, stats.OverallAccuracy, 0.0)
}

// 分桶统计同样不能被脏数据推出 [0,1]
func TestAnalyzeStudy_BucketAccuracyClamped(t *testing.T) {
	sessions := []SessionRecord{
		session(1, 19, 30, 10, 12, 0.9),
		session(2, 19, 30, 10, 11, 0.9),
		session(3, 19, 30, 10, 13, 0.9),
	}

	_, insights, _ := AnalyzeStudy(sessions, 0, studyNow, DefaultParams())

	for _, ins := range insights {
		assert.LessOrEqual(t, ins.Accuracy, 1.0)
		assert.GreaterOrEqual(t, ins.Accuracy, 0.0)
	}
}

func TestAnalyzeStudy_Aggregates(t *testing.T) {
	sessions := []SessionRecord{
		session(0, 19, 30, 10, 8, 0.9),
		session(1, 19, 40, 10, 6, 0.7),
		session(2, 19, 20, 20, 16, 0.8),
	}

	stats, _, _ := AnalyzeStudy(sessions, 0.2, studyNow, DefaultParams())

	assert.Equal(t, 3, stats.TotalSessions)
	assert.Equal(t, 90, stats.TotalMinutes)
	assert.Equal(t, 40, stats.TotalQuestions)
	assert.InDelta(t, 0.75, stats.OverallAccuracy, 1e-9)
	assert.InDelta(t, 30.0, stats.AverageSessionLength, 1e-9)
	assert.InDelta(t, 0.8, stats.AverageFocusScore, 1e-9)
	assert.Equal(t, 0.2, stats.AbilityGain)
	assert.Equal(t, 3, stats.StudyStreakDays)
}

// 昨天没学，前天学过：连续天数归零（今天还没学不算中断）
func TestAnalyzeStudy_BrokenStreak(t *testing.T) {
	sessions := []SessionRecord{
		session(2, 10, 30, 5, 4, 0.8),
		session(3, 10, 30, 5, 4, 0.8),
	}

	stats, _, _ := AnalyzeStudy(sessions, 0, studyNow, DefaultParams())

	assert.Equal(t, 0, stats.StudyStreakDays)
}

// 样本量达标的晚间桶正确率最高 → 推荐晚间学习
func TestAnalyzeStudy_OptimalTimeOfDay(t *testing.T) {
	sessions := []SessionRecord{
		// 晚间：3 次，高正确率
		session(1, 19, 30, 10, 9, 0.9),
		session(2, 20, 30, 10, 9, 0.9),
		session(3, 19, 30, 10, 8, 0.9),
		// 上午：3 次，低正确率
		session(1, 10, 30, 10, 4, 0.5),
		session(2, 10, 30, 10, 5, 0.5),
		session(3, 10, 30, 10, 4, 0.5),
	}

	_, insights, schedule := AnalyzeStudy(sessions, 0, studyNow, DefaultParams())

	require.NotNil(t, schedule)
	assert.Equal(t, []string{"晚间"}, schedule.RecommendedTimes)

	var found bool
	for _, ins := range insights {
		if ins.Pattern == "time_of_day" {
			found = true
			assert.GreaterOrEqual(t, ins.SampleSize, 3)
		}
	}
	assert.True(t, found)
}

// 桶样本数不足 3 时不得当选"最优"，避免从噪声里挑模式
func TestAnalyzeStudy_BucketBelowMinimumIgnored(t *testing.T) {
	sessions := []SessionRecord{
		session(1, 19, 30, 10, 10, 1.0),
		session(2, 10, 30, 10, 5, 0.5),
	}

	_, insights, _ := AnalyzeStudy(sessions, 0, studyNow, DefaultParams())

	for _, ins := range insights {
		assert.NotEqual(t, "time_of_day", ins.Pattern)
	}
}

func TestAnalyzeStudy_Deterministic(t *testing.T) {
	sessions := []SessionRecord{
		session(1, 19, 30, 10, 9, 0.9),
		session(2, 9, 45, 12, 6, 0.6),
		session(3, 14, 20, 8, 7, 0.8),
		session(4, 19, 30, 10, 9, 0.9),
		session(5, 19, 35, 10, 8, 0.7),
	}

	s1, i1, o1 := AnalyzeStudy(sessions, 0.1, studyNow, DefaultParams())
	s2, i2, o2 := AnalyzeStudy(sessions, 0.1, studyNow, DefaultParams())

	assert.Equal(t, s1, s2)
	assert.Equal(t, i1, i2)
	assert.Equal(t, o1, o2)
}
