package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"learner_analytics_backend/internal/util"
)

// 作答统计不自洽的遥测在触达任何仓储之前就被拒绝
func TestEndSession_RejectsInconsistentTelemetry(t *testing.T) {
	s := NewSessionService(nil, nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		input EndSessionInput
	}{
		{"正确数超过题目数", EndSessionInput{Questions: 10, Correct: 15}},
		{"负的题目数", EndSessionInput{Questions: -1, Correct: 0}},
		{"负的正确数", EndSessionInput{Questions: 10, Correct: -3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.EndSession(ctx, 1, 1, tc.input)
			assert.ErrorIs(t, err, util.ErrInvalidTelemetry)
		})
	}
}
