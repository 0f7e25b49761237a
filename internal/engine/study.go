package engine

import (
	"fmt"
	"sort"
	"time"

	"learner_analytics_backend/internal/model"
)

// SessionRecord 一次学习会话的遥测（仓储层转换后传入）
type SessionRecord struct {
	Start      time.Time
	Minutes    int
	Questions  int
	Correct    int
	FocusScore float64
}

// 会话分桶的维度
var (
	timeOfDayBuckets = []string{"清晨", "上午", "下午", "晚间", "深夜"}
	weekdayNames     = []string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}
	lengthBuckets    = []string{"15分钟以内", "15-30分钟", "30-60分钟", "60分钟以上"}
)

// AnalyzeStudy 汇总回看窗口内的会话遥测，并从分桶统计中挑出
// 正确率/专注度最高的学习模式。样本不足 MinBucketSessions 的桶
// 不参与"最优"评选，零会话时返回全零统计、不产出任何建议。
func AnalyzeStudy(sessions []SessionRecord, abilityGain float64, now time.Time, p Params) (model.StudyStats, []model.StudyPatternInsight, *model.OptimalStudySchedule) {
	stats := model.StudyStats{AbilityGain: abilityGain}
	if len(sessions) == 0 {
		return stats, []model.StudyPatternInsight{}, nil
	}

	totalFocus := 0.0
	for _, s := range sessions {
		stats.TotalSessions++
		stats.TotalMinutes += s.Minutes
		stats.TotalQuestions += s.Questions
		totalFocus += s.FocusScore
	}
	correct := 0
	for _, s := range sessions {
		correct += s.Correct
	}
	if stats.TotalQuestions > 0 {
		// 上游已校验 correct <= questions，这里再钳制一次，
		// 保证历史脏数据也不会让正确率越出 [0,1]
		stats.OverallAccuracy = clamp(float64(correct)/float64(stats.TotalQuestions), 0, 1)
	}
	stats.AverageSessionLength = float64(stats.TotalMinutes) / float64(stats.TotalSessions)
	stats.AverageFocusScore = totalFocus / float64(stats.TotalSessions)
	stats.StudyStreakDays = streakDays(sessions, now)

	insights := make([]model.StudyPatternInsight, 0, 3)
	schedule := &model.OptimalStudySchedule{}

	if b := bestBucket(sessions, p, bucketTimeOfDay); b != nil {
		insights = append(insights, model.StudyPatternInsight{
			Pattern:     "time_of_day",
			Title:       fmt.Sprintf("%s效率最高", b.name),
			Description: fmt.Sprintf("%s学习的正确率达到 %.0f%%，明显高于其他时段。", b.name, b.accuracy*100),
			Accuracy:    b.accuracy,
			SampleSize:  b.count,
		})
		schedule.RecommendedTimes = []string{b.name}
	}

	if b := bestBucket(sessions, p, bucketWeekday); b != nil {
		insights = append(insights, model.StudyPatternInsight{
			Pattern:     "day_of_week",
			Title:       fmt.Sprintf("%s状态最好", b.name),
			Description: fmt.Sprintf("%s的学习正确率为 %.0f%%，是一周中表现最好的一天。", b.name, b.accuracy*100),
			Accuracy:    b.accuracy,
			SampleSize:  b.count,
		})
		schedule.RecommendedWeekday = b.name
	}

	if b := bestBucket(sessions, p, bucketLength); b != nil {
		insights = append(insights, model.StudyPatternInsight{
			Pattern:     "session_length",
			Title:       fmt.Sprintf("单次%s效果最佳", b.name),
			Description: fmt.Sprintf("时长在%s的会话正确率最高（%.0f%%）。", b.name, b.accuracy*100),
			Accuracy:    b.accuracy,
			SampleSize:  b.count,
		})
		schedule.RecommendedLength = recommendedMinutes(b.name)
	}

	if schedule.RecommendedLength == 0 && len(schedule.RecommendedTimes) == 0 && schedule.RecommendedWeekday == "" {
		schedule = nil
	}
	return stats, insights, schedule
}

type bucketStat struct {
	name     string
	count    int
	accuracy float64
	focus    float64
}

// bestBucket 对会话按 keyFn 分桶，返回综合得分（正确率为主、专注度为辅）
// 最高且样本量达标的桶。
func bestBucket(sessions []SessionRecord, p Params, keyFn func(SessionRecord) string) *bucketStat {
	type agg struct {
		count, questions, correct int
		focus                     float64
	}
	buckets := map[string]*agg{}
	for _, s := range sessions {
		key := keyFn(s)
		a, ok := buckets[key]
		if !ok {
			a = &agg{}
			buckets[key] = a
		}
		a.count++
		a.questions += s.Questions
		a.correct += s.Correct
		a.focus += s.FocusScore
	}

	var best *bucketStat
	var bestScore float64
	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names) // 遍历顺序确定，保证结果可重现

	for _, name := range names {
		a := buckets[name]
		if a.count < p.MinBucketSessions || a.questions == 0 {
			continue
		}
		acc := clamp(float64(a.correct)/float64(a.questions), 0, 1)
		focus := a.focus / float64(a.count)
		score := 0.7*acc + 0.3*focus
		if best == nil || score > bestScore {
			best = &bucketStat{name: name, count: a.count, accuracy: acc, focus: focus}
			bestScore = score
		}
	}
	return best
}

func bucketTimeOfDay(s SessionRecord) string {
	switch h := s.Start.Hour(); {
	case h >= 5 && h < 9:
		return timeOfDayBuckets[0]
	case h >= 9 && h < 12:
		return timeOfDayBuckets[1]
	case h >= 12 && h < 18:
		return timeOfDayBuckets[2]
	case h >= 18 && h < 23:
		return timeOfDayBuckets[3]
	default:
		return timeOfDayBuckets[4]
	}
}

func bucketWeekday(s SessionRecord) string {
	return weekdayNames[int(s.Start.Weekday())]
}

func bucketLength(s SessionRecord) string {
	switch m := s.Minutes; {
	case m < 15:
		return lengthBuckets[0]
	case m < 30:
		return lengthBuckets[1]
	case m < 60:
		return lengthBuckets[2]
	default:
		return lengthBuckets[3]
	}
}

func recommendedMinutes(lengthBucket string) int {
	switch lengthBucket {
	case lengthBuckets[0]:
		return 15
	case lengthBuckets[1]:
		return 25
	case lengthBuckets[2]:
		return 45
	default:
		return 60
	}
}

// streakDays 截至 now 的连续学习天数；最近一次会话早于昨天即视为中断。
func streakDays(sessions []SessionRecord, now time.Time) int {
	days := map[string]bool{}
	for _, s := range sessions {
		days[s.Start.Format("2006-01-02")] = true
	}

	streak := 0
	cursor := now
	if !days[cursor.Format("2006-01-02")] {
		cursor = cursor.AddDate(0, 0, -1) // 今天还没学不算中断
	}
	for days[cursor.Format("2006-01-02")] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}
