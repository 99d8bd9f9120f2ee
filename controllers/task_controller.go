// file: controllers/task_controller.go
package controllers

import (
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skoljka/database"
	"skoljka/dto"
	"skoljka/mappers"
	"skoljka/middlewares"
	"skoljka/models"
	"skoljka/services"
	"skoljka/utils"
)

// TaskList —— 任务列表：按链分组展示每个 ctask 的锁定/开放/关闭状态
func TaskList(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)

	var chains []models.Chain
	if err := database.DB.Where("competition_id = ?", ctx.Competition.ID).
		Find(&chains).Error; err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}

	items := make([]dto.ChainItemResp, 0, len(chains))
	for i := range chains {
		chain := &chains[i]
		status := services.ChainStatusAt(chain, ctx.MinutesPassed)
		if !ctx.IsAdmin {
			// 未解锁的链整体隐藏，受限链只给白名单里的队伍看
			if status == services.ChainLocked {
				continue
			}
			if !services.TeamHasAccess(database.DB, chain, ctx.Team) {
				continue
			}
		}

		states, _, err := services.LoadChainStates(
			database.DB, ctx.Competition, chain, ctx.Team, ctx.HasFinished)
		if err != nil {
			utils.Error(c, 5000, "查询失败")
			return
		}
		items = append(items, mappers.MapChainItem(ctx.Competition, chain, status, states))
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		if items[i].Position != items[j].Position {
			return items[i].Position < items[j].Position
		}
		return items[i].Name < items[j].Name
	})

	utils.Success(c, "success", gin.H{
		"competition": ctx.Competition.Name,
		"chains":      items,
	})
}

// loadAccessibleCtask 按访问规则加载单个 ctask，违规一律 404，不暴露存在性。
// 返回 nil 表示已经写好了响应。
func loadAccessibleCtask(c *gin.Context, ctx *middlewares.CompetitionContext) (
	*models.CompetitionTask, *models.Chain, []*services.CtaskState, []models.Submission,
) {
	ctaskID, err := strconv.Atoi(c.Param("ctask_id"))
	if err != nil {
		utils.NotFound(c)
		return nil, nil, nil, nil
	}

	var ctask models.CompetitionTask
	if err := database.DB.Where("competition_id = ?", ctx.Competition.ID).
		First(&ctask, ctaskID).Error; err != nil {
		utils.NotFound(c)
		return nil, nil, nil, nil
	}
	if ctask.ChainID == nil {
		utils.NotFound(c)
		return nil, nil, nil, nil
	}

	var chain models.Chain
	if err := database.DB.First(&chain, *ctask.ChainID).Error; err != nil {
		utils.NotFound(c)
		return nil, nil, nil, nil
	}

	if !ctx.IsAdmin {
		if (ctx.Team == nil && !ctx.HasFinished) || !ctx.HasStarted {
			utils.NotFound(c)
			return nil, nil, nil, nil
		}
		if services.ChainStatusAt(&chain, ctx.MinutesPassed) == services.ChainLocked {
			utils.NotFound(c)
			return nil, nil, nil, nil
		}
		if !services.TeamHasAccess(database.DB, &chain, ctx.Team) {
			utils.NotFound(c)
			return nil, nil, nil, nil
		}
	}

	states, submissions, err := services.LoadChainStates(
		database.DB, ctx.Competition, &chain, ctx.Team, ctx.HasFinished)
	if err != nil {
		utils.Error(c, 5000, "查询失败")
		return nil, nil, nil, nil
	}

	for _, state := range states {
		if state.Ctask.ID == ctask.ID {
			if state.IsLocked && !ctx.IsAdmin {
				utils.NotFound(c)
				return nil, nil, nil, nil
			}
			return state.Ctask, &chain, states, submissions
		}
	}
	utils.NotFound(c)
	return nil, nil, nil, nil
}

// TaskDetail —— 单个任务视图
func TaskDetail(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)

	ctask, chain, states, submissions := loadAccessibleCtask(c, ctx)
	if ctask == nil {
		return
	}

	var state *services.CtaskState
	for _, s := range states {
		if s.Ctask.ID == ctask.ID {
			state = s
			break
		}
	}

	status := services.ChainStatusAt(chain, ctx.MinutesPassed)
	maxSubmissions := ctask.EffectiveMaxSubmissions(chain, ctx.Competition)
	resp := mappers.MapTaskDetail(ctask, chain, state, submissions, maxSubmissions)

	resp.Open = status == services.ChainOpen && !ctx.HasFinished &&
		ctx.Team != nil && resp.SubmissionsLeft > 0
	if status.Closed() {
		resp.ClosedMessage = "Submissions are now closed."
	}
	if status == services.ChainOpen {
		if remaining, ok := services.RemainingSeconds(chain, ctx.CurrentTime, ctx.Competition.StartDate); ok {
			resp.ShowCountdown = true
			resp.RemainingSeconds = remaining
		}
	}

	utils.Success(c, "success", resp)
}

// SubmitSolution —— 提交答案。链关闭后拒绝，已有提交保持可见
func SubmitSolution(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)

	var req dto.SubmitResultReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	if ctx.Team == nil {
		utils.Error(c, 4001, "请先报名参赛")
		return
	}

	ctask, chain, states, submissions := loadAccessibleCtask(c, ctx)
	if ctask == nil {
		return
	}

	status := services.ChainStatusAt(chain, ctx.MinutesPassed)
	hasFinished := ctx.HasFinished && !ctx.IsAdmin

	var state *services.CtaskState
	for _, s := range states {
		if s.Ctask.ID == ctask.ID {
			state = s
			break
		}
	}
	maxSubmissions := ctask.EffectiveMaxSubmissions(chain, ctx.Competition)
	if err := services.ValidateSubmission(status, hasFinished, state.SubmissionCount, maxSubmissions); err != nil {
		respondSubmissionError(c, err)
		return
	}

	score := 0
	if services.CheckResult(ctask.Descriptor, req.Result) {
		score = ctask.MaxScore
	}
	submission := models.Submission{
		CtaskID: ctask.ID,
		TeamID:  ctx.Team.ID,
		Date:    time.Now(),
		Result:  req.Result,
		Score:   score,
	}

	ctasks := make([]models.CompetitionTask, 0, len(states))
	for _, s := range states {
		ctasks = append(ctasks, *s.Ctask)
	}

	submissionsLeft := 0
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// 对 ctask 行加锁，把同队伍的并发提交串行化
		var lockedCtask models.CompetitionTask
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&lockedCtask, ctask.ID).Error; err != nil {
			return err
		}

		// 事务内重新计数：上面的检查基于事务外的快照，并发时会一起通过
		var count int64
		if err := tx.Model(&models.Submission{}).
			Where("ctask_id = ? AND team_id = ?", ctask.ID, ctx.Team.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if err := services.ValidateSubmission(status, hasFinished, int(count), maxSubmissions); err != nil {
			return err
		}

		if err := tx.Create(&submission).Error; err != nil {
			return err
		}
		submissionsLeft = maxSubmissions - int(count) - 1

		newSubmissions := append(append([]models.Submission{}, submissions...), submission)
		return services.UpdateScoreOnCtaskAction(
			tx, ctx.Competition, ctx.Team, chain, ctasks, submissions, newSubmissions)
	})
	if err != nil {
		respondSubmissionError(c, err)
		return
	}

	utils.Success(c, "success", gin.H{
		"correct":          score > 0,
		"score":            score,
		"submissions_left": submissionsLeft,
	})
}

func respondSubmissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCompetitionFinished):
		utils.Error(c, 3002, "比赛已结束")
	case errors.Is(err, services.ErrChainClosed):
		utils.Error(c, 3003, "Submissions are now closed.")
	case errors.Is(err, services.ErrNoSubmissionsLeft):
		utils.Error(c, 3004, "提交次数已用完")
	default:
		utils.Error(c, 5000, "提交失败: "+err.Error())
	}
}

// PersonalStatus —— 个人任务标记（与队伍得分无关的前端徽标）
func PersonalStatus(c *gin.Context) {
	userIDAny, exists := c.Get("user_id")
	if !exists {
		utils.Error(c, 4001, "未登录")
		return
	}
	userID := userIDAny.(uint32)

	ctaskID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.NotFound(c)
		return
	}
	var ctask models.CompetitionTask
	if err := database.DB.First(&ctask, ctaskID).Error; err != nil {
		utils.NotFound(c)
		return
	}

	var req dto.PersonalStatusReq
	if err := c.ShouldBind(&req); err != nil {
		utils.Error(c, 1001, "参数无效")
		return
	}
	status := models.PersonalStatus(req.Action)
	if status != models.PersonalAsSolved && status != models.PersonalTodo && status != models.PersonalBlank {
		utils.Error(c, 1001, "action 取值无效（as_solved/todo/blank）")
		return
	}

	entry := models.TaskStatus{
		UserID:  userID,
		CtaskID: ctask.ID,
		Status:  status,
	}
	if err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "ctask_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&entry).Error; err != nil {
		utils.Error(c, 5000, "保存失败")
		return
	}

	// 前端直接用这段 JSON 换徽标或行样式，维持旧接口的返回格式
	if status == models.PersonalBlank {
		c.JSON(200, gin.H{"tr_class": status.TrClass()})
		return
	}
	labelClass, labelText := status.LabelClass()
	c.JSON(200, gin.H{"label_class": labelClass, "label_text": labelText})
}
