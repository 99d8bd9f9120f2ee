// file: controllers/chain_controller.go
package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"skoljka/database"
	"skoljka/dto"
	"skoljka/middlewares"
	"skoljka/models"
	"skoljka/services"
	"skoljka/utils"
)

// loadChain 取出属于当前赛事的链，不存在时统一回 4004
func loadChain(c *gin.Context) (*models.Chain, bool) {
	ctx := middlewares.GetCompetitionContext(c)
	chainID, _ := strconv.Atoi(c.Param("chain_id"))

	var chain models.Chain
	if err := database.DB.
		Where("id = ? AND competition_id = ?", chainID, ctx.Competition.ID).
		First(&chain).Error; err != nil {
		utils.Error(c, 4004, "任务链不存在")
		return nil, false
	}
	return &chain, true
}

// AdminListChains —— 管理端链列表，附带每条链的任务数
func AdminListChains(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)

	var chains []models.Chain
	if err := database.DB.
		Where("competition_id = ?", ctx.Competition.ID).
		Order("category, position, name").
		Find(&chains).Error; err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}

	type row struct {
		models.Chain
		CtaskCount int64 `json:"ctask_count"`
	}
	items := make([]row, 0, len(chains))
	for _, ch := range chains {
		var count int64
		database.DB.Model(&models.CompetitionTask{}).
			Where("chain_id = ?", ch.ID).Count(&count)
		items = append(items, row{Chain: ch, CtaskCount: count})
	}

	utils.Success(c, "success", gin.H{
		"total":  len(items),
		"chains": items,
	})
}

// CreateChain —— 管理员创建任务链
func CreateChain(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)

	var req dto.CreateChainReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}
	req.Normalize()

	if req.Name == "" {
		utils.Error(c, 1001, "缺少必填字段")
		return
	}
	if req.UnlockMode != string(models.UnlockGradual) && req.UnlockMode != string(models.UnlockAll) {
		utils.Error(c, 1001, "unlock_mode 取值无效（gradual/all）")
		return
	}
	if req.Descriptor != "" && req.Descriptor != models.DescriptorManual {
		utils.Error(c, 1001, "descriptor 取值无效")
		return
	}

	bonus := 1
	if req.BonusScore != nil {
		bonus = *req.BonusScore
	}
	chain := models.Chain{
		CompetitionID:    ctx.Competition.ID,
		Name:             req.Name,
		Category:         req.Category,
		Position:         req.Position,
		UnlockMinutes:    req.UnlockMinutes,
		CloseMinutes:     req.CloseMinutes,
		UnlockMode:       models.UnlockMode(req.UnlockMode),
		Descriptor:       req.Descriptor,
		BonusScore:       bonus,
		MaxSubmissions:   req.MaxSubmissions,
		RestrictedAccess: req.RestrictedAccess,
	}
	if err := database.DB.Create(&chain).Error; err != nil {
		utils.Error(c, 5000, "创建任务链失败: "+err.Error())
		return
	}
	utils.Success(c, "Chain created successfully", gin.H{"id": chain.ID})
}

// UpdateChain —— 部分更新，未传的字段保持原值
func UpdateChain(c *gin.Context) {
	chain, ok := loadChain(c)
	if !ok {
		return
	}

	var req dto.UpdateChainReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	if req.Name != nil {
		chain.Name = *req.Name
	}
	if req.Category != nil {
		chain.Category = *req.Category
	}
	if req.Position != nil {
		chain.Position = *req.Position
	}
	// 时间偏移原样接受，负值表示赛前就已解锁
	if req.UnlockMinutes != nil {
		chain.UnlockMinutes = *req.UnlockMinutes
	}
	if req.CloseMinutes != nil {
		chain.CloseMinutes = *req.CloseMinutes
	}
	if req.UnlockMode != nil {
		mode := models.UnlockMode(*req.UnlockMode)
		if mode != models.UnlockGradual && mode != models.UnlockAll {
			utils.Error(c, 1001, "unlock_mode 取值无效（gradual/all）")
			return
		}
		chain.UnlockMode = mode
	}
	if req.Descriptor != nil {
		if *req.Descriptor != "" && *req.Descriptor != models.DescriptorManual {
			utils.Error(c, 1001, "descriptor 取值无效")
			return
		}
		chain.Descriptor = *req.Descriptor
		// 改回按时间关闭时清掉手动关闭标记
		if chain.Descriptor != models.DescriptorManual {
			chain.ManuallyClosed = false
		}
	}
	if req.BonusScore != nil {
		chain.BonusScore = *req.BonusScore
	}
	if req.MaxSubmissions != nil {
		chain.MaxSubmissions = *req.MaxSubmissions
	}
	if req.RestrictedAccess != nil {
		chain.RestrictedAccess = *req.RestrictedAccess
	}

	if err := database.DB.Save(chain).Error; err != nil {
		utils.Error(c, 5000, "更新任务链失败: "+err.Error())
		return
	}
	services.InvalidateScoreboardCache(chain.CompetitionID)
	utils.Success(c, "Chain updated successfully", gin.H{"id": chain.ID})
}

// DeleteChain —— 删除链并摘除其下全部任务（任务本身保留）
func DeleteChain(c *gin.Context) {
	chain, ok := loadChain(c)
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CompetitionTask{}).
			Where("chain_id = ?", chain.ID).
			Updates(map[string]interface{}{"chain_id": nil, "chain_position": -1}).Error; err != nil {
			return err
		}
		if err := tx.Where("chain_id = ?", chain.ID).
			Delete(&models.ChainTeam{}).Error; err != nil {
			return err
		}
		return tx.Delete(chain).Error
	})
	if err != nil {
		utils.Error(c, 5000, "删除任务链失败: "+err.Error())
		return
	}
	services.InvalidateScoreboardCache(chain.CompetitionID)
	utils.Success(c, "Chain deleted successfully", gin.H{})
}

// CloseChain —— 手动关闭，仅对 MANUAL 链有效
func CloseChain(c *gin.Context) {
	setManuallyClosed(c, true)
}

// ReopenChain —— 重新开放手动关闭的链
func ReopenChain(c *gin.Context) {
	setManuallyClosed(c, false)
}

func setManuallyClosed(c *gin.Context, closed bool) {
	chain, ok := loadChain(c)
	if !ok {
		return
	}
	if !chain.IsManuallyClosable() {
		utils.Error(c, 3001, "该链不是手动关闭模式")
		return
	}
	chain.ManuallyClosed = closed
	if err := database.DB.Save(chain).Error; err != nil {
		utils.Error(c, 5000, "更新失败: "+err.Error())
		return
	}
	utils.Success(c, "success", gin.H{"manually_closed": chain.ManuallyClosed})
}

// GetChainAccess —— 白名单编辑表：赛事全部普通队伍 + 是否在白名单内
func GetChainAccess(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)
	chain, ok := loadChain(c)
	if !ok {
		return
	}

	var teams []models.Team
	if err := database.DB.
		Where("competition_id = ? AND team_type = ?", ctx.Competition.ID, models.TeamTypeNormal).
		Order("name").
		Find(&teams).Error; err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}

	var links []models.ChainTeam
	database.DB.Where("chain_id = ?", chain.ID).Find(&links)
	allowed := make(map[uint32]bool, len(links))
	for _, l := range links {
		allowed[l.TeamID] = true
	}

	cfg := ctx.Competition.ParseTeamCategories()
	categories := cfg.CategoriesFor(c.DefaultQuery("lang", "en"))

	rows := make([]dto.ChainAccessRow, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, dto.ChainAccessRow{
			TeamID:       t.ID,
			TeamName:     t.Name,
			CategoryName: categories[t.Category],
			HasAccess:    allowed[t.ID],
		})
	}

	utils.Success(c, "success", dto.ChainAccessResp{
		ChainID:           chain.ID,
		RestrictedAccess:  chain.RestrictedAccess,
		HasTeamCategories: len(categories) > 0,
		Teams:             rows,
	})
}

// UpdateChainAccess —— 整表替换白名单。提交里已删除或不属于本赛事的队伍直接忽略
func UpdateChainAccess(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)
	chain, ok := loadChain(c)
	if !ok {
		return
	}

	var req dto.UpdateChainAccessReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	// 只接受本赛事现存队伍的 id
	var valid []uint32
	if len(req.TeamIDs) > 0 {
		database.DB.Model(&models.Team{}).
			Where("competition_id = ? AND id IN ?", ctx.Competition.ID, req.TeamIDs).
			Pluck("id", &valid)
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chain_id = ?", chain.ID).
			Delete(&models.ChainTeam{}).Error; err != nil {
			return err
		}
		for _, teamID := range valid {
			if err := tx.Create(&models.ChainTeam{ChainID: chain.ID, TeamID: teamID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.Error(c, 5000, "更新白名单失败: "+err.Error())
		return
	}
	utils.Success(c, "success", gin.H{"count": len(valid)})
}

// ChainTasksAction —— 链内任务调序（move-up/move-down）或摘除（detach）
func ChainTasksAction(c *gin.Context) {
	chain, ok := loadChain(c)
	if !ok {
		return
	}

	var req dto.ChainTasksActionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	var ctask models.CompetitionTask
	if err := database.DB.
		Where("id = ? AND chain_id = ?", req.CtaskID, chain.ID).
		First(&ctask).Error; err != nil {
		utils.Error(c, 4004, "任务不在该链中")
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		switch req.Action {
		case "move-up":
			return swapWithNeighbor(tx, &ctask, ctask.ChainPosition-1)
		case "move-down":
			return swapWithNeighbor(tx, &ctask, ctask.ChainPosition+1)
		case "detach":
			// 后面的任务依次前移
			if err := tx.Model(&models.CompetitionTask{}).
				Where("chain_id = ? AND chain_position > ?", chain.ID, ctask.ChainPosition).
				Update("chain_position", gorm.Expr("chain_position - 1")).Error; err != nil {
				return err
			}
			return tx.Model(&ctask).
				Updates(map[string]interface{}{"chain_id": nil, "chain_position": -1}).Error
		default:
			return errInvalidAction
		}
	})
	if err == errInvalidAction {
		utils.Error(c, 1001, "action 取值无效（move-up/move-down/detach）")
		return
	}
	if err != nil {
		utils.Error(c, 5000, "操作失败: "+err.Error())
		return
	}
	utils.Success(c, "success", gin.H{})
}

var errInvalidAction = errors.New("invalid action")

// swapWithNeighbor 与相邻位置的任务交换 chain_position。越界视为空操作
func swapWithNeighbor(tx *gorm.DB, ctask *models.CompetitionTask, otherPos int) error {
	var other models.CompetitionTask
	if err := tx.Where("chain_id = ? AND chain_position = ?", *ctask.ChainID, otherPos).
		First(&other).Error; err != nil {
		return nil
	}
	if err := tx.Model(&other).Update("chain_position", ctask.ChainPosition).Error; err != nil {
		return err
	}
	return tx.Model(ctask).Update("chain_position", otherPos).Error
}

// CreateCtask —— 创建任务，可直接挂到某条链的末尾
func CreateCtask(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)

	var req dto.CreateCtaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}
	if req.MaxScore <= 0 {
		req.MaxScore = 1
	}

	ctask := models.CompetitionTask{
		CompetitionID:  ctx.Competition.ID,
		Descriptor:     req.Descriptor,
		MaxScore:       req.MaxScore,
		MaxSubmissions: req.MaxSubmissions,
		Text:           req.Text,
		Comment:        req.Comment,
		ChainPosition:  -1,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if req.ChainID != nil {
			var chain models.Chain
			if err := tx.Where("id = ? AND competition_id = ?", *req.ChainID, ctx.Competition.ID).
				First(&chain).Error; err != nil {
				return err
			}
			var count int64
			if err := tx.Model(&models.CompetitionTask{}).
				Where("chain_id = ?", chain.ID).Count(&count).Error; err != nil {
				return err
			}
			ctask.ChainID = &chain.ID
			ctask.ChainPosition = int(count) + 1
		}
		return tx.Create(&ctask).Error
	})
	if err != nil {
		utils.Error(c, 5000, "创建任务失败: "+err.Error())
		return
	}
	utils.Success(c, "Ctask created successfully", gin.H{"id": ctask.ID})
}

// UpdateCtask —— 部分更新；改分值后注意手动触发重算
func UpdateCtask(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)
	ctaskID, _ := strconv.Atoi(c.Param("ctask_id"))

	var ctask models.CompetitionTask
	if err := database.DB.
		Where("id = ? AND competition_id = ?", ctaskID, ctx.Competition.ID).
		First(&ctask).Error; err != nil {
		utils.Error(c, 4004, "任务不存在")
		return
	}

	var req dto.UpdateCtaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	if req.Descriptor != nil {
		ctask.Descriptor = *req.Descriptor
	}
	if req.MaxScore != nil {
		if *req.MaxScore <= 0 {
			utils.Error(c, 1001, "max_score 必须为正数")
			return
		}
		ctask.MaxScore = *req.MaxScore
	}
	if req.MaxSubmissions != nil {
		ctask.MaxSubmissions = *req.MaxSubmissions
	}
	if req.Text != nil {
		ctask.Text = *req.Text
	}
	if req.Comment != nil {
		ctask.Comment = *req.Comment
	}

	if err := database.DB.Save(&ctask).Error; err != nil {
		utils.Error(c, 5000, "更新任务失败: "+err.Error())
		return
	}
	utils.Success(c, "Ctask updated successfully", gin.H{"id": ctask.ID})
}

// DeleteCtask —— 删除任务及其提交记录，链内后续任务前移
func DeleteCtask(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)
	ctaskID, _ := strconv.Atoi(c.Param("ctask_id"))

	var ctask models.CompetitionTask
	if err := database.DB.
		Where("id = ? AND competition_id = ?", ctaskID, ctx.Competition.ID).
		First(&ctask).Error; err != nil {
		utils.Error(c, 4004, "任务不存在")
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if ctask.ChainID != nil {
			if err := tx.Model(&models.CompetitionTask{}).
				Where("chain_id = ? AND chain_position > ?", *ctask.ChainID, ctask.ChainPosition).
				Update("chain_position", gorm.Expr("chain_position - 1")).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("ctask_id = ?", ctask.ID).
			Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ctask).Error
	})
	if err != nil {
		utils.Error(c, 5000, "删除任务失败: "+err.Error())
		return
	}
	services.InvalidateScoreboardCache(ctx.Competition.ID)
	utils.Success(c, "Ctask deleted successfully", gin.H{})
}
