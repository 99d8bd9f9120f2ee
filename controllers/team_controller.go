// file: controllers/team_controller.go
package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"skoljka/database"
	"skoljka/middlewares"
	"skoljka/models"
	"skoljka/services"
	"skoljka/utils"
)

// AdminListTeams —— 管理端队伍列表，含管理员私有队伍
func AdminListTeams(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))
	query := c.Query("query")

	var teams []models.Team
	var total int64
	db := database.DB.Model(&models.Team{}).
		Where("competition_id = ?", ctx.Competition.ID)
	if query != "" {
		db = db.Where("name LIKE ?", "%"+query+"%")
	}
	db.Count(&total)
	db.Offset((page - 1) * pageSize).Limit(pageSize).Order("name").Find(&teams)

	cfg := ctx.Competition.ParseTeamCategories()
	lang := c.DefaultQuery("lang", "en")
	categories := cfg.CategoriesFor(lang)

	items := make([]gin.H, 0, len(teams))
	for _, t := range teams {
		items = append(items, gin.H{
			"id":                           t.ID,
			"name":                         t.Name,
			"team_type":                    t.TeamType,
			"category":                     t.Category,
			"category_name":                categories[t.Category],
			"cache_score":                  t.CacheScore,
			"cache_score_before_freeze":    t.CacheScoreBeforeFreeze,
			"cache_max_score_after_freeze": t.CacheMaxScoreAfterFreeze,
		})
	}
	utils.Success(c, "success", gin.H{
		"total": total,
		"teams": items,
	})
}

func loadTeam(c *gin.Context) (*models.Team, bool) {
	ctx := middlewares.GetCompetitionContext(c)
	teamID, _ := strconv.Atoi(c.Param("team_id"))

	var team models.Team
	if err := database.DB.
		Where("id = ? AND competition_id = ?", teamID, ctx.Competition.ID).
		First(&team).Error; err != nil {
		utils.Error(c, 4004, "队伍不存在")
		return nil, false
	}
	return &team, true
}

// AdminTeamDetail —— 队伍详情：成员 + 逐任务得分
func AdminTeamDetail(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)
	team, ok := loadTeam(c)
	if !ok {
		return
	}

	cfg := ctx.Competition.ParseTeamCategories()
	resp := teamResp(team, cfg, c.DefaultQuery("lang", "en"), true)

	var submissions []models.Submission
	database.DB.
		Joins("JOIN comp_ctask ON comp_ctask.id = comp_submission.ctask_id").
		Where("comp_submission.team_id = ? AND comp_ctask.competition_id = ?",
			team.ID, ctx.Competition.ID).
		Order("comp_submission.id").
		Find(&submissions)

	// 逐任务取最高分
	best := map[uint32]int{}
	for _, s := range submissions {
		if s.Score > best[s.CtaskID] {
			best[s.CtaskID] = s.Score
		}
	}
	scores := make([]gin.H, 0, len(best))
	for ctaskID, score := range best {
		scores = append(scores, gin.H{"ctask_id": ctaskID, "score": score})
	}

	utils.Success(c, "success", gin.H{
		"team":         resp,
		"ctask_scores": scores,
	})
}

// AdminTeamSubmissions —— 队伍的完整提交流水
func AdminTeamSubmissions(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)
	team, ok := loadTeam(c)
	if !ok {
		return
	}

	var submissions []models.Submission
	if err := database.DB.
		Joins("JOIN comp_ctask ON comp_ctask.id = comp_submission.ctask_id").
		Where("comp_submission.team_id = ? AND comp_ctask.competition_id = ?",
			team.ID, ctx.Competition.ID).
		Order("comp_submission.id desc").
		Find(&submissions).Error; err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}

	items := make([]gin.H, 0, len(submissions))
	for _, s := range submissions {
		items = append(items, gin.H{
			"id":       s.ID,
			"ctask_id": s.CtaskID,
			"result":   s.Result,
			"score":    s.Score,
			"date":     s.Date.Format("2006-01-02 15:04:05"),
		})
	}
	utils.Success(c, "success", gin.H{
		"total":       len(items),
		"submissions": items,
	})
}

// AdminDeleteSubmission —— 删除单条提交并重算该队得分
func AdminDeleteSubmission(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)
	submissionID, _ := strconv.Atoi(c.Param("submission_id"))

	var submission models.Submission
	if err := database.DB.
		Joins("JOIN comp_ctask ON comp_ctask.id = comp_submission.ctask_id").
		Where("comp_submission.id = ? AND comp_ctask.competition_id = ?",
			submissionID, ctx.Competition.ID).
		First(&submission).Error; err != nil {
		utils.Error(c, 4004, "提交记录不存在")
		return
	}

	if err := database.DB.Delete(&submission).Error; err != nil {
		utils.Error(c, 5000, "删除失败: "+err.Error())
		return
	}

	// 删提交会降低缓存分，整体重算一遍最稳妥
	if _, err := services.RefreshTeamsCacheScore(database.DB, ctx.Competition); err != nil {
		utils.Error(c, 5000, "重算失败: "+err.Error())
		return
	}
	utils.Success(c, "Submission deleted successfully", gin.H{})
}

// AdminDeleteTeam —— 删除队伍及其成员、提交记录与白名单项
func AdminDeleteTeam(c *gin.Context) {
	team, ok := loadTeam(c)
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", team.ID).
			Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", team.ID).
			Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("team_id = ?", team.ID).
			Delete(&models.ChainTeam{}).Error; err != nil {
			return err
		}
		return tx.Delete(team).Error
	})
	if err != nil {
		utils.Error(c, 5000, "删除队伍失败: "+err.Error())
		return
	}
	services.InvalidateScoreboardCache(team.CompetitionID)
	utils.Success(c, "Team deleted successfully", gin.H{})
}
