// file: services/chain_service.go
package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"skoljka/models"
)

var (
	ErrCompetitionFinished = errors.New("比赛已结束")
	ErrChainClosed         = errors.New("Submissions are now closed.")
	ErrNoSubmissionsLeft   = errors.New("提交次数已用完")
)

// ChainStatus 链在某一时刻对某支队伍的状态
type ChainStatus string

const (
	ChainLocked          ChainStatus = "locked"
	ChainOpen            ChainStatus = "open"
	ChainClosedAutomatic ChainStatus = "closed_automatic"
	ChainClosedManual    ChainStatus = "closed_manual"
)

// Closed 关闭后链保持可见，但不再接受提交
func (s ChainStatus) Closed() bool {
	return s == ChainClosedAutomatic || s == ChainClosedManual
}

// ChainStatusAt 由相对赛事开始的分钟数推导链状态。
// 解锁门槛先于关闭门槛判断：未到 unlock_minutes 的链对参赛者整体不可见，
// 赛事结束也不会改变这一点（可以用很大的 unlock_minutes 把链永久隐藏）。
// MANUAL 链完全忽略 close_minutes，只看管理员的手动开关。
func ChainStatusAt(chain *models.Chain, minutesPassed float64) ChainStatus {
	if minutesPassed < float64(chain.UnlockMinutes) {
		return ChainLocked
	}
	if chain.IsManuallyClosable() {
		if chain.ManuallyClosed {
			return ChainClosedManual
		}
		return ChainOpen
	}
	if chain.CloseMinutes > 0 && minutesPassed >= float64(chain.CloseMinutes) {
		return ChainClosedAutomatic
	}
	return ChainOpen
}

// RemainingSeconds 返回距离链关闭的精确秒数。ok 为 false 表示不该展示
// 倒计时（永不自动关闭的链和 MANUAL 链）。负值表示已经关闭。
// 模板层用它做本地化的分钟/小时/天复数渲染，这里只给确定性的数。
func RemainingSeconds(chain *models.Chain, now, start time.Time) (int64, bool) {
	if chain.IsManuallyClosable() || chain.CloseMinutes <= 0 {
		return 0, false
	}
	closeTime := start.Add(time.Duration(chain.CloseMinutes) * time.Minute)
	return int64(closeTime.Sub(now) / time.Second), true
}

// ValidateSubmission 判定一次提交能否被接受。提交路径调用两次：进事务前
// 快速失败一次，事务内对提交数重新计数后再判一次，并发提交不会超出
// max_submissions。
func ValidateSubmission(status ChainStatus, hasFinished bool, count, max int) error {
	if hasFinished {
		return ErrCompetitionFinished
	}
	if status.Closed() {
		return ErrChainClosed
	}
	if count >= max {
		return ErrNoSubmissionsLeft
	}
	return nil
}

// ChainAccessAllowed 受限链的访问决策。onAllowList 只在链受限且有队伍时
// 才有意义
func ChainAccessAllowed(chain *models.Chain, team *models.Team, onAllowList bool) bool {
	if !chain.RestrictedAccess {
		return true
	}
	if team == nil {
		return false
	}
	return onAllowList
}

// TeamHasAccess 检查队伍能否看到受限链。白名单每次查询时都重新对
// 现存队伍求值（join 队伍表），所以被删除的队伍自然失效，不会留下
// 悬空的授权记录影响其他队伍。
func TeamHasAccess(db *gorm.DB, chain *models.Chain, team *models.Team) bool {
	onAllowList := false
	if chain.RestrictedAccess && team != nil {
		var count int64
		db.Model(&models.ChainTeam{}).
			Joins("JOIN comp_team ON comp_team.id = comp_chain_team.team_id").
			Where("comp_chain_team.chain_id = ? AND comp_chain_team.team_id = ?", chain.ID, team.ID).
			Count(&count)
		onAllowList = count > 0
	}
	return ChainAccessAllowed(chain, team, onAllowList)
}

// CtaskState ctask 在某支队伍视角下的派生状态
type CtaskState struct {
	Ctask             *models.CompetitionTask
	SubmissionCount   int
	IsPartiallySolved bool
	IsSolved          bool
	IsLocked          bool
}

// PreprocessChain 由队伍的提交记录推导链内每个 ctask 的状态。
// ctasks 必须已按 chain_position 排序。
//
// gradual 模式下，第一个既没做对、提交次数也没用完的 ctask 会锁住它
// 后面的所有任务；all 模式不锁。赛事结束后全部解锁（只读浏览）。
func PreprocessChain(
	competition *models.Competition,
	chain *models.Chain,
	ctasks []models.CompetitionTask,
	submissions []models.Submission,
	hasFinished bool,
) []*CtaskState {
	states := make([]*CtaskState, len(ctasks))
	byID := make(map[uint32]*CtaskState, len(ctasks))
	for i := range ctasks {
		states[i] = &CtaskState{Ctask: &ctasks[i]}
		byID[ctasks[i].ID] = states[i]
	}

	for i := range submissions {
		state, ok := byID[submissions[i].CtaskID]
		if !ok {
			continue
		}
		state.SubmissionCount++
		if submissions[i].Score > 0 {
			state.IsPartiallySolved = true
		}
		if submissions[i].Score == state.Ctask.MaxScore {
			state.IsSolved = true
		}
	}

	if hasFinished {
		return states
	}

	locked := false
	for _, state := range states {
		state.IsLocked = locked && !state.IsPartiallySolved
		if chain.UnlockMode == models.UnlockGradual &&
			!state.IsPartiallySolved &&
			state.SubmissionCount < state.Ctask.EffectiveMaxSubmissions(chain, competition) {
			locked = true
		}
	}
	return states
}

// NextTask 返回链中下一个还能做的任务，没有则返回 nil
func NextTask(competition *models.Competition, chain *models.Chain, states []*CtaskState) *CtaskState {
	for _, state := range states {
		if !state.IsLocked && !state.IsSolved &&
			state.SubmissionCount < state.Ctask.EffectiveMaxSubmissions(chain, competition) {
			return state
		}
	}
	return nil
}

// LoadChainStates 读取队伍在链上的全部提交并推导状态。team 可以为 nil
// （未注册的浏览者，赛事结束后允许只读访问）。
func LoadChainStates(
	db *gorm.DB,
	competition *models.Competition,
	chain *models.Chain,
	team *models.Team,
	hasFinished bool,
) ([]*CtaskState, []models.Submission, error) {
	var ctasks []models.CompetitionTask
	if err := db.Where("chain_id = ?", chain.ID).
		Order("chain_position asc, id asc").
		Find(&ctasks).Error; err != nil {
		return nil, nil, err
	}

	var submissions []models.Submission
	if team != nil && len(ctasks) > 0 {
		ids := make([]uint32, 0, len(ctasks))
		for i := range ctasks {
			ids = append(ids, ctasks[i].ID)
		}
		if err := db.Where("ctask_id IN ? AND team_id = ?", ids, team.ID).
			Order("date asc, id asc").
			Find(&submissions).Error; err != nil {
			return nil, nil, err
		}
	}

	return PreprocessChain(competition, chain, ctasks, submissions, hasFinished), submissions, nil
}
