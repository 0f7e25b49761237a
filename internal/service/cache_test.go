package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"learner_analytics_backend/internal/model"
)

// 缓存键由全部计算输入派生：任一输入变化都必须产生不同的键
func TestCacheKey_DerivedFromAllInputs(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	category := "algebra"

	base := cacheKey("trajectory", 42, nil, ts, 90, 4)

	assert.NotEqual(t, base, cacheKey("velocity", 42, nil, ts, 90, 4))
	assert.NotEqual(t, base, cacheKey("trajectory", 43, nil, ts, 90, 4))
	assert.NotEqual(t, base, cacheKey("trajectory", 42, &category, ts, 90, 4))
	assert.NotEqual(t, base, cacheKey("trajectory", 42, nil, ts.Add(time.Millisecond), 90, 4))
	assert.NotEqual(t, base, cacheKey("trajectory", 42, nil, ts, 30, 4))
	assert.NotEqual(t, base, cacheKey("trajectory", 42, nil, ts, 90, 8))
}

// 相同输入必须产生相同的键，否则缓存永远不会命中
func TestCacheKey_Stable(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t,
		cacheKey("risk", 7, nil, ts),
		cacheKey("risk", 7, nil, ts))
}

// 风险分同时依赖能力账本和会话账本：刚结束的会话必须让旧的
// 风险键失效，而不是等 TTL 过期
func TestCacheKey_RiskChangesWhenSessionEnds(t *testing.T) {
	sampleTS := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	firstEnd := time.Date(2026, 3, 1, 20, 30, 0, 0, time.UTC)
	secondEnd := firstEnd.Add(24 * time.Hour)

	before := []model.StudySession{{EndTime: &firstEnd}}
	after := []model.StudySession{{EndTime: &firstEnd}, {EndTime: &secondEnd}}

	assert.NotEqual(t,
		cacheKey("risk", 7, nil, sampleTS, latestSessionEnd(before).UnixMilli()),
		cacheKey("risk", 7, nil, sampleTS, latestSessionEnd(after).UnixMilli()))
}

// 会话账本的版本号取最近一次结束时间，与会话的排列顺序无关
func TestLatestSessionEnd(t *testing.T) {
	early := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	assert.True(t, latestSessionEnd(nil).IsZero())
	assert.Equal(t, late, latestSessionEnd([]model.StudySession{
		{EndTime: &late},
		{EndTime: &early},
	}))
}
