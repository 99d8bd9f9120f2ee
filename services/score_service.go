// file: services/score_service.go
package services

import (
	"time"

	"gorm.io/gorm"

	"skoljka/models"
)

// computeChainScore 一条链的总分：每个 ctask 取最好的一次提交，
// 全部满分时再加整链的 bonus
func computeChainScore(bonus int, ctasks []models.CompetitionTask, submissions []submissionInfo) int {
	best := map[uint32]int{}
	for _, sub := range submissions {
		if sub.Score > best[sub.CtaskID] {
			best[sub.CtaskID] = sub.Score
		}
	}

	total := 0
	for _, score := range best {
		total += score
	}

	allSolved := len(ctasks) > 0
	for i := range ctasks {
		if best[ctasks[i].ID] != ctasks[i].MaxScore {
			allSolved = false
			break
		}
	}
	if allSolved {
		total += bonus
	}
	return total
}

type submissionInfo struct {
	CtaskID uint32
	Score   int
}

// ComputeChainScoreVariants 计算一条链的三种分数：
// 真实得分、冻结前得分、冻结后的理论最高分
func ComputeChainScoreVariants(
	competition *models.Competition,
	chain *models.Chain,
	ctasks []models.CompetitionTask,
	submissions []models.Submission,
) (actual, beforeFreeze, maxAfterFreeze int) {
	freeze := competition.FreezeDate()
	maxScores := make(map[uint32]int, len(ctasks))
	for i := range ctasks {
		maxScores[ctasks[i].ID] = ctasks[i].MaxScore
	}

	all := make([]submissionInfo, 0, len(submissions))
	before := make([]submissionInfo, 0, len(submissions))
	optimistic := make([]submissionInfo, 0, len(submissions))
	for i := range submissions {
		sub := &submissions[i]
		all = append(all, submissionInfo{sub.CtaskID, sub.Score})
		if !sub.Date.After(freeze) {
			before = append(before, submissionInfo{sub.CtaskID, sub.Score})
			optimistic = append(optimistic, submissionInfo{sub.CtaskID, sub.Score})
		} else {
			// 冻结后的提交按满分估计
			optimistic = append(optimistic, submissionInfo{sub.CtaskID, maxScores[sub.CtaskID]})
		}
	}

	actual = computeChainScore(chain.BonusScore, ctasks, all)
	beforeFreeze = computeChainScore(chain.BonusScore, ctasks, before)
	maxAfterFreeze = computeChainScore(chain.BonusScore, ctasks, optimistic)
	return
}

// UpdateScoreOnCtaskAction 在某条链的提交集合发生变化后，增量更新队伍的
// 三个得分缓存。oldSubmissions / newSubmissions 都是该队伍在这条链上的
// 完整提交列表。
func UpdateScoreOnCtaskAction(
	db *gorm.DB,
	competition *models.Competition,
	team *models.Team,
	chain *models.Chain,
	ctasks []models.CompetitionTask,
	oldSubmissions, newSubmissions []models.Submission,
) error {
	oldActual, oldBefore, oldMax := ComputeChainScoreVariants(competition, chain, ctasks, oldSubmissions)
	newActual, newBefore, newMax := ComputeChainScoreVariants(competition, chain, ctasks, newSubmissions)

	if oldActual == newActual && oldBefore == newBefore && oldMax == newMax {
		return nil
	}

	// 增量用 SQL 表达式应用，避免并发提交时基于过期快照互相覆盖
	if err := db.Model(team).Updates(map[string]interface{}{
		"cache_score":                  gorm.Expr("cache_score + ?", newActual-oldActual),
		"cache_score_before_freeze":    gorm.Expr("cache_score_before_freeze + ?", newBefore-oldBefore),
		"cache_max_score_after_freeze": gorm.Expr("cache_max_score_after_freeze + ?", newMax-oldMax),
	}).Error; err != nil {
		return err
	}
	team.CacheScore += newActual - oldActual
	team.CacheScoreBeforeFreeze += newBefore - oldBefore
	team.CacheMaxScoreAfterFreeze += newMax - oldMax

	InvalidateScoreboardCache(competition.ID)
	return nil
}

// RefreshTeamsCacheScore 全量重算某赛事所有队伍的得分缓存，
// 管理员在排行榜页面手动触发
func RefreshTeamsCacheScore(db *gorm.DB, competition *models.Competition) (time.Duration, error) {
	start := time.Now()

	var teams []models.Team
	if err := db.Where("competition_id = ?", competition.ID).Find(&teams).Error; err != nil {
		return 0, err
	}
	if len(teams) == 0 {
		return time.Since(start), nil
	}

	var ctasks []models.CompetitionTask
	if err := db.Where("competition_id = ? AND chain_id IS NOT NULL", competition.ID).
		Find(&ctasks).Error; err != nil {
		return 0, err
	}

	chainCtasks := map[uint32][]models.CompetitionTask{}
	ctaskChain := map[uint32]uint32{}
	for i := range ctasks {
		chainID := *ctasks[i].ChainID
		chainCtasks[chainID] = append(chainCtasks[chainID], ctasks[i])
		ctaskChain[ctasks[i].ID] = chainID
	}

	var chains []models.Chain
	if err := db.Where("competition_id = ?", competition.ID).Find(&chains).Error; err != nil {
		return 0, err
	}
	chainsByID := make(map[uint32]*models.Chain, len(chains))
	for i := range chains {
		chainsByID[chains[i].ID] = &chains[i]
	}

	teamIDs := make([]uint32, 0, len(teams))
	for i := range teams {
		teamIDs = append(teamIDs, teams[i].ID)
	}
	var submissions []models.Submission
	if err := db.Where("team_id IN ?", teamIDs).Find(&submissions).Error; err != nil {
		return 0, err
	}

	teamChainSubs := map[uint32]map[uint32][]models.Submission{}
	for i := range submissions {
		chainID, ok := ctaskChain[submissions[i].CtaskID]
		if !ok {
			continue // 脱离链的 ctask 不计分
		}
		if teamChainSubs[submissions[i].TeamID] == nil {
			teamChainSubs[submissions[i].TeamID] = map[uint32][]models.Submission{}
		}
		teamChainSubs[submissions[i].TeamID][chainID] =
			append(teamChainSubs[submissions[i].TeamID][chainID], submissions[i])
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range teams {
			team := &teams[i]
			actual, before, max := 0, 0, 0
			for chainID, chainSubs := range teamChainSubs[team.ID] {
				chain := chainsByID[chainID]
				if chain == nil {
					continue
				}
				a, b, m := ComputeChainScoreVariants(competition, chain, chainCtasks[chainID], chainSubs)
				actual += a
				before += b
				max += m
			}
			if err := tx.Model(team).Updates(map[string]interface{}{
				"cache_score":                  actual,
				"cache_score_before_freeze":    before,
				"cache_max_score_after_freeze": max,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	InvalidateScoreboardCache(competition.ID)
	return time.Since(start), nil
}
