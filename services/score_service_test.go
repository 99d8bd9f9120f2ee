// file: services/score_service_test.go
package services

import (
	"testing"
	"time"

	"skoljka/models"
)

func TestComputeChainScore(t *testing.T) {
	ctasks := []models.CompetitionTask{
		{ID: 1, MaxScore: 10},
		{ID: 2, MaxScore: 20},
	}

	tests := []struct {
		name        string
		bonus       int
		submissions []submissionInfo
		want        int
	}{
		{
			name: "best submission per ctask",
			submissions: []submissionInfo{
				{CtaskID: 1, Score: 3},
				{CtaskID: 1, Score: 7},
				{CtaskID: 1, Score: 5},
			},
			want: 7,
		},
		{
			name:  "bonus only when every ctask is at max score",
			bonus: 5,
			submissions: []submissionInfo{
				{CtaskID: 1, Score: 10},
				{CtaskID: 2, Score: 19},
			},
			want: 29,
		},
		{
			name:  "full chain earns the bonus",
			bonus: 5,
			submissions: []submissionInfo{
				{CtaskID: 1, Score: 10},
				{CtaskID: 2, Score: 20},
			},
			want: 35,
		},
		{
			name:        "no submissions no score",
			bonus:       5,
			submissions: nil,
			want:        0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeChainScore(tt.bonus, ctasks, tt.submissions)
			if got != tt.want {
				t.Errorf("computeChainScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

// 空链永远拿不到 bonus
func TestComputeChainScoreEmptyChain(t *testing.T) {
	if got := computeChainScore(5, nil, nil); got != 0 {
		t.Errorf("computeChainScore() = %d, want 0", got)
	}
}

func TestComputeChainScoreVariants(t *testing.T) {
	freeze := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	competition := &models.Competition{
		EndDate:              freeze.Add(2 * time.Hour),
		ScoreboardFreezeDate: &freeze,
	}
	chain := &models.Chain{BonusScore: 5}
	ctasks := []models.CompetitionTask{
		{ID: 1, MaxScore: 10},
		{ID: 2, MaxScore: 20},
	}
	submissions := []models.Submission{
		{CtaskID: 1, Score: 10, Date: freeze.Add(-time.Hour)},
		{CtaskID: 2, Score: 15, Date: freeze.Add(time.Hour)},
	}

	actual, before, max := ComputeChainScoreVariants(competition, chain, ctasks, submissions)

	// 真实得分：10 + 15，第二题没满分所以没有 bonus
	if actual != 25 {
		t.Errorf("actual = %d, want 25", actual)
	}
	// 冻结前只提交了第一题
	if before != 10 {
		t.Errorf("beforeFreeze = %d, want 10", before)
	}
	// 冻结后的提交按满分估计：10 + 20 + bonus
	if max != 35 {
		t.Errorf("maxAfterFreeze = %d, want 35", max)
	}
}

// 未配置冻结时刻时三个分数一致
func TestComputeChainScoreVariantsNoFreeze(t *testing.T) {
	end := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	competition := &models.Competition{EndDate: end}
	chain := &models.Chain{BonusScore: 1}
	ctasks := []models.CompetitionTask{{ID: 1, MaxScore: 10}}
	submissions := []models.Submission{
		{CtaskID: 1, Score: 7, Date: end.Add(-time.Hour)},
	}

	actual, before, max := ComputeChainScoreVariants(competition, chain, ctasks, submissions)
	if actual != 7 || before != 7 || max != 7 {
		t.Errorf("variants = %d/%d/%d, want 7/7/7", actual, before, max)
	}
}
