// file: services/chain_service_test.go
package services

import (
	"testing"
	"time"

	"skoljka/models"
)

func TestChainStatusAt(t *testing.T) {
	tests := []struct {
		name          string
		chain         models.Chain
		minutesPassed float64
		want          ChainStatus
	}{
		{
			name:          "locked before unlock_minutes",
			chain:         models.Chain{UnlockMinutes: 60},
			minutesPassed: 30,
			want:          ChainLocked,
		},
		{
			name:          "open exactly at unlock_minutes",
			chain:         models.Chain{UnlockMinutes: 60},
			minutesPassed: 60,
			want:          ChainOpen,
		},
		{
			name:          "never closes when close_minutes is zero",
			chain:         models.Chain{UnlockMinutes: 0, CloseMinutes: 0},
			minutesPassed: 1e6,
			want:          ChainOpen,
		},
		{
			name:          "closed automatically after close_minutes",
			chain:         models.Chain{UnlockMinutes: 0, CloseMinutes: 120},
			minutesPassed: 120,
			want:          ChainClosedAutomatic,
		},
		{
			name:          "still open just before close_minutes",
			chain:         models.Chain{UnlockMinutes: 0, CloseMinutes: 120},
			minutesPassed: 119.5,
			want:          ChainOpen,
		},
		{
			name:          "unlock gate wins over close gate",
			chain:         models.Chain{UnlockMinutes: 60, CloseMinutes: 30},
			minutesPassed: 45,
			want:          ChainLocked,
		},
		{
			name:          "manual chain ignores close_minutes",
			chain:         models.Chain{Descriptor: models.DescriptorManual, CloseMinutes: 10},
			minutesPassed: 500,
			want:          ChainOpen,
		},
		{
			name:          "manual chain closed by moderator",
			chain:         models.Chain{Descriptor: models.DescriptorManual, ManuallyClosed: true},
			minutesPassed: 500,
			want:          ChainClosedManual,
		},
		{
			name:          "manual chain still respects unlock gate",
			chain:         models.Chain{Descriptor: models.DescriptorManual, UnlockMinutes: 60},
			minutesPassed: 30,
			want:          ChainLocked,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChainStatusAt(&tt.chain, tt.minutesPassed)
			if got != tt.want {
				t.Errorf("ChainStatusAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

// 超大的 unlock_minutes 把链永久藏起来：赛事结束后它仍然是 locked
func TestChainStaysHiddenForever(t *testing.T) {
	chain := models.Chain{UnlockMinutes: 1000000}
	afterEnd := 10 * 24 * 60.0
	if got := ChainStatusAt(&chain, afterEnd); got != ChainLocked {
		t.Errorf("ChainStatusAt() after competition end = %v, want %v", got, ChainLocked)
	}
}

// close_minutes < unlock_minutes 的链一解锁就处于关闭状态
func TestChainOpensAlreadyClosed(t *testing.T) {
	chain := models.Chain{UnlockMinutes: 60, CloseMinutes: 30}

	if got := ChainStatusAt(&chain, 45); got != ChainLocked {
		t.Errorf("before unlock: got %v, want %v", got, ChainLocked)
	}
	if got := ChainStatusAt(&chain, 60); got != ChainClosedAutomatic {
		t.Errorf("at unlock: got %v, want %v", got, ChainClosedAutomatic)
	}
}

// 负的时间偏移原样参与比较：负 unlock_minutes 的链赛前就已解锁，
// 负 close_minutes 视同 0，永不自动关闭
func TestChainStatusNegativeMinutes(t *testing.T) {
	early := models.Chain{UnlockMinutes: -30}
	if got := ChainStatusAt(&early, -10); got != ChainOpen {
		t.Errorf("before start with negative unlock: got %v, want %v", got, ChainOpen)
	}
	if got := ChainStatusAt(&early, -40); got != ChainLocked {
		t.Errorf("before negative unlock: got %v, want %v", got, ChainLocked)
	}

	neverClose := models.Chain{CloseMinutes: -5}
	if got := ChainStatusAt(&neverClose, 1e6); got != ChainOpen {
		t.Errorf("negative close_minutes: got %v, want %v", got, ChainOpen)
	}
}

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name        string
		status      ChainStatus
		hasFinished bool
		count, max  int
		wantErr     error
	}{
		{"accepted", ChainOpen, false, 2, 3, nil},
		{"competition finished", ChainOpen, true, 0, 3, ErrCompetitionFinished},
		{"chain closed automatically", ChainClosedAutomatic, false, 0, 3, ErrChainClosed},
		{"chain closed manually", ChainClosedManual, false, 0, 3, ErrChainClosed},
		{"quota reached", ChainOpen, false, 3, 3, ErrNoSubmissionsLeft},
		{"quota exceeded", ChainOpen, false, 4, 3, ErrNoSubmissionsLeft},
		{"single-submission task still open", ChainOpen, false, 0, 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSubmission(tt.status, tt.hasFinished, tt.count, tt.max)
			if err != tt.wantErr {
				t.Errorf("ValidateSubmission() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// 提交路径在事务内重新计数后用同一个判定：两个并发请求各自带着
// count=max-1 的快照进来，串行化后第二个请求重判时 count 已到 max
func TestValidateSubmissionRecheckRejectsSecondWriter(t *testing.T) {
	max := 3
	staleCount := max - 1

	if err := ValidateSubmission(ChainOpen, false, staleCount, max); err != nil {
		t.Fatalf("pre-transaction check: %v", err)
	}
	recounted := staleCount + 1
	if err := ValidateSubmission(ChainOpen, false, recounted, max); err != ErrNoSubmissionsLeft {
		t.Errorf("in-transaction recheck = %v, want %v", err, ErrNoSubmissionsLeft)
	}
}

func TestChainAccessAllowed(t *testing.T) {
	restricted := &models.Chain{RestrictedAccess: true}
	open := &models.Chain{}
	team := &models.Team{ID: 1}

	tests := []struct {
		name        string
		chain       *models.Chain
		team        *models.Team
		onAllowList bool
		want        bool
	}{
		{"unrestricted chain open to everyone", open, nil, false, true},
		{"unrestricted chain ignores allow-list", open, team, false, true},
		{"restricted chain denies teamless viewer", restricted, nil, false, false},
		{"restricted chain denies team off the list", restricted, team, false, false},
		{"restricted chain admits listed team", restricted, team, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChainAccessAllowed(tt.chain, tt.team, tt.onAllowList)
			if got != tt.want {
				t.Errorf("ChainAccessAllowed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRemainingSeconds(t *testing.T) {
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	chain := models.Chain{CloseMinutes: 90}
	now := start.Add(30 * time.Minute)
	got, ok := RemainingSeconds(&chain, now, start)
	if !ok || got != 3600 {
		t.Errorf("RemainingSeconds() = %d, %v; want 3600, true", got, ok)
	}

	// 已经关闭的链返回负数
	now = start.Add(100 * time.Minute)
	got, ok = RemainingSeconds(&chain, now, start)
	if !ok || got != -600 {
		t.Errorf("RemainingSeconds() = %d, %v; want -600, true", got, ok)
	}

	// 永不关闭的链没有倒计时
	if _, ok := RemainingSeconds(&models.Chain{CloseMinutes: 0}, now, start); ok {
		t.Error("RemainingSeconds() ok = true for chain that never closes")
	}

	// MANUAL 链没有倒计时
	manual := models.Chain{Descriptor: models.DescriptorManual, CloseMinutes: 90}
	if _, ok := RemainingSeconds(&manual, now, start); ok {
		t.Error("RemainingSeconds() ok = true for manual chain")
	}
}

func makeCtasks(n, maxScore int) []models.CompetitionTask {
	chainID := uint32(1)
	ctasks := make([]models.CompetitionTask, n)
	for i := range ctasks {
		ctasks[i] = models.CompetitionTask{
			ID:            uint32(i + 1),
			ChainID:       &chainID,
			ChainPosition: i + 1,
			MaxScore:      maxScore,
		}
	}
	return ctasks
}

func lockedFlags(states []*CtaskState) []bool {
	flags := make([]bool, len(states))
	for i, s := range states {
		flags[i] = s.IsLocked
	}
	return flags
}

func TestPreprocessChainGradual(t *testing.T) {
	competition := &models.Competition{DefaultMaxSubmissions: 3}
	chain := &models.Chain{ID: 1, UnlockMode: models.UnlockGradual}
	ctasks := makeCtasks(4, 10)

	tests := []struct {
		name        string
		submissions []models.Submission
		want        []bool
	}{
		{
			name:        "no submissions locks everything after first",
			submissions: nil,
			want:        []bool{false, true, true, true},
		},
		{
			name: "solving first unlocks second",
			submissions: []models.Submission{
				{CtaskID: 1, Score: 10},
			},
			want: []bool{false, false, true, true},
		},
		{
			name: "partial score counts as unlocking",
			submissions: []models.Submission{
				{CtaskID: 1, Score: 3},
			},
			want: []bool{false, false, true, true},
		},
		{
			name: "exhausted submissions unlock the next task",
			submissions: []models.Submission{
				{CtaskID: 1, Score: 0},
				{CtaskID: 1, Score: 0},
				{CtaskID: 1, Score: 0},
			},
			want: []bool{false, false, true, true},
		},
		{
			name: "solved task past the lock is never relocked",
			submissions: []models.Submission{
				{CtaskID: 3, Score: 10},
			},
			want: []bool{false, true, false, true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states := PreprocessChain(competition, chain, ctasks, tt.submissions, false)
			got := lockedFlags(states)
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("IsLocked = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestPreprocessChainAllMode(t *testing.T) {
	competition := &models.Competition{DefaultMaxSubmissions: 3}
	chain := &models.Chain{ID: 1, UnlockMode: models.UnlockAll}
	ctasks := makeCtasks(4, 10)

	states := PreprocessChain(competition, chain, ctasks, nil, false)
	for i, state := range states {
		if state.IsLocked {
			t.Errorf("ctask %d locked in all mode", i+1)
		}
	}
}

func TestPreprocessChainUnlocksAfterCompetitionEnd(t *testing.T) {
	competition := &models.Competition{DefaultMaxSubmissions: 3}
	chain := &models.Chain{ID: 1, UnlockMode: models.UnlockGradual}
	ctasks := makeCtasks(4, 10)

	states := PreprocessChain(competition, chain, ctasks, nil, true)
	for i, state := range states {
		if state.IsLocked {
			t.Errorf("ctask %d locked after competition end", i+1)
		}
	}
}

func TestNextTask(t *testing.T) {
	competition := &models.Competition{DefaultMaxSubmissions: 3}
	chain := &models.Chain{ID: 1, UnlockMode: models.UnlockGradual}
	ctasks := makeCtasks(3, 10)

	states := PreprocessChain(competition, chain, ctasks, []models.Submission{
		{CtaskID: 1, Score: 10},
	}, false)
	next := NextTask(competition, chain, states)
	if next == nil || next.Ctask.ID != 2 {
		t.Fatalf("NextTask() = %+v, want ctask 2", next)
	}

	// 全部做完之后没有下一个任务
	states = PreprocessChain(competition, chain, ctasks, []models.Submission{
		{CtaskID: 1, Score: 10},
		{CtaskID: 2, Score: 10},
		{CtaskID: 3, Score: 10},
	}, false)
	if next := NextTask(competition, chain, states); next != nil {
		t.Errorf("NextTask() = ctask %d, want nil", next.Ctask.ID)
	}
}

func TestEffectiveMaxSubmissionsFallback(t *testing.T) {
	competition := &models.Competition{DefaultMaxSubmissions: 3}
	chain := &models.Chain{MaxSubmissions: 5}
	ctask := models.CompetitionTask{MaxSubmissions: 7}

	if got := ctask.EffectiveMaxSubmissions(chain, competition); got != 7 {
		t.Errorf("ctask override: got %d, want 7", got)
	}
	ctask.MaxSubmissions = 0
	if got := ctask.EffectiveMaxSubmissions(chain, competition); got != 5 {
		t.Errorf("chain override: got %d, want 5", got)
	}
	chain.MaxSubmissions = 0
	if got := ctask.EffectiveMaxSubmissions(chain, competition); got != 3 {
		t.Errorf("competition default: got %d, want 3", got)
	}
}
