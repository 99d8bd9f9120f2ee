// file: controllers/competition_controller.go
package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"skoljka/database"
	"skoljka/dto"
	"skoljka/middlewares"
	"skoljka/models"
	"skoljka/services"
	"skoljka/utils"
)

// ListCompetitions —— 公开的赛事列表
func ListCompetitions(c *gin.Context) {
	var competitions []models.Competition
	if err := database.DB.Order("start_date desc").Find(&competitions).Error; err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}

	items := make([]gin.H, 0, len(competitions))
	for _, comp := range competitions {
		items = append(items, gin.H{
			"name":            comp.Name,
			"url_path_prefix": comp.URLPathPrefix,
			"kind":            comp.Kind,
			"start_date":      comp.StartDate,
			"end_date":        comp.EndDate,
		})
	}
	utils.Success(c, "success", gin.H{
		"total":        len(items),
		"competitions": items,
	})
}

// GetCompetitionInfo —— 赛事首页数据：赛事信息 + 当前用户的队伍视角
func GetCompetitionInfo(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)
	competition := ctx.Competition
	lang := c.DefaultQuery("lang", "en")

	resp := gin.H{
		"name":            competition.Name,
		"url_path_prefix": competition.URLPathPrefix,
		"kind":            competition.Kind,
		"description":     competition.Description,
		"start_date":      competition.StartDate,
		"end_date":        competition.EndDate,
		"max_team_size":   competition.MaxTeamSize,
		"has_started":     ctx.HasStarted,
		"has_finished":    ctx.HasFinished,
		"minutes_passed":  int(ctx.MinutesPassed),
	}

	// 分类配置可由队伍自选时才下发选项；HIDDEN 的配置只有管理员能看到
	cfg := competition.ParseTeamCategories()
	if cfg != nil && (!cfg.Hidden || ctx.IsAdmin) {
		categories := cfg.CategoriesFor(lang)
		if len(categories) > 0 {
			choices := make([]gin.H, 0, len(categories))
			for _, id := range cfg.SortedIDs(lang) {
				choices = append(choices, gin.H{"id": id, "name": categories[id]})
			}
			resp["category_choices"] = choices
			resp["category_configurable"] = cfg.Configurable
		}
	}

	if ctx.Team != nil {
		resp["team"] = teamResp(ctx.Team, cfg, lang, true)
	}
	if len(ctx.TeamInvitations) > 0 {
		invitations := make([]gin.H, 0, len(ctx.TeamInvitations))
		for i := range ctx.TeamInvitations {
			invitations = append(invitations, gin.H{
				"team_id":   ctx.TeamInvitations[i].ID,
				"team_name": ctx.TeamInvitations[i].Name,
			})
		}
		resp["team_invitations"] = invitations
	}

	utils.Success(c, "success", resp)
}

func teamResp(team *models.Team, cfg *models.TeamCategoriesConfig, lang string, withCode bool) dto.TeamResp {
	var members []models.TeamMember
	database.DB.Where("team_id = ? AND invitation_status <> ?",
		team.ID, models.InvitationDeclined).Order("id").Find(&members)

	memberResps := make([]dto.TeamMemberResp, 0, len(members))
	for _, m := range members {
		r := dto.TeamMemberResp{
			MemberName:       m.MemberName,
			InvitationStatus: string(m.InvitationStatus),
		}
		if m.MemberID != nil {
			r.MemberID = *m.MemberID
		}
		memberResps = append(memberResps, r)
	}

	resp := dto.TeamResp{
		ID:           team.ID,
		Name:         team.Name,
		Category:     team.Category,
		CategoryName: cfg.CategoriesFor(lang)[team.Category],
		CacheScore:   team.CacheScore,
		Members:      memberResps,
	}
	if withCode {
		resp.InvitationCode = team.InvitationCode
	}
	return resp
}

// RegisterTeam —— 报名：创建或更新当前用户的队伍。
// members 中已注册的用户名会生成邀请，其余作为占位成员直接计入
func RegisterTeam(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)
	competition := ctx.Competition

	if ctx.HasFinished {
		utils.Error(c, 3002, "比赛已结束")
		return
	}

	userIDAny, exists := c.Get("user_id")
	if !exists {
		utils.Error(c, 4001, "未登录")
		return
	}
	userID := userIDAny.(uint32)

	var req dto.RegistrationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}
	req.Normalize()
	if req.TeamName == "" {
		utils.Error(c, 1001, "队伍名不能为空")
		return
	}
	if len(req.Members) > competition.MaxTeamSize-1 {
		utils.Error(c, 1001, "队伍人数超出上限")
		return
	}

	var author models.User
	if err := database.DB.First(&author, userID).Error; err != nil {
		utils.Error(c, 4004, "用户不存在")
		return
	}

	team := ctx.Team
	if team != nil && team.AuthorID != userID {
		utils.Error(c, 4003, "只有队伍创建者可以修改队伍")
		return
	}

	// 分类只在配置允许自选时生效，无效值一律回落
	category := 0
	cfg := competition.ParseTeamCategories()
	if cfg != nil && cfg.Configurable {
		for _, categories := range cfg.LangToCategories {
			if _, ok := categories[req.Category]; ok {
				category = req.Category
				break
			}
		}
	}
	if team != nil && category == 0 {
		category = team.Category
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if team == nil {
			teamType := models.TeamTypeNormal
			if ctx.IsAdmin {
				teamType = models.TeamTypeAdminPrivate
			}
			team = &models.Team{
				CompetitionID:  competition.ID,
				Name:           req.TeamName,
				AuthorID:       userID,
				Category:       category,
				TeamType:       teamType,
				InvitationCode: utils.GenerateInvitationCode(8),
			}
			if err := tx.Create(team).Error; err != nil {
				return err
			}
			// 作者自动成为已选中的成员
			if err := clearSelectedTeam(tx, competition.ID, userID); err != nil {
				return err
			}
			if err := tx.Create(&models.TeamMember{
				TeamID:           team.ID,
				MemberID:         &userID,
				MemberName:       author.Username,
				InvitationStatus: models.InvitationAccepted,
				IsSelected:       true,
			}).Error; err != nil {
				return err
			}
		} else {
			team.Name = req.TeamName
			team.Category = category
			if err := tx.Save(team).Error; err != nil {
				return err
			}
		}
		return reconcileMembers(tx, team, author.Username, req.Members)
	})
	if err != nil {
		utils.Error(c, 5000, "报名失败: "+err.Error())
		return
	}

	services.InvalidateScoreboardCache(competition.ID)
	utils.Success(c, "success", teamResp(team, cfg, c.DefaultQuery("lang", "en"), true))
}

// reconcileMembers 将成员表对齐到提交的名单。
// 已有的邀请保持原状态（重复提交不会重置），弃用的名字被移除
func reconcileMembers(tx *gorm.DB, team *models.Team, authorName string, names []string) error {
	var existing []models.TeamMember
	if err := tx.Where("team_id = ?", team.ID).Find(&existing).Error; err != nil {
		return err
	}

	keep := map[string]bool{authorName: true}
	for _, name := range names {
		if name == authorName || keep[name] {
			continue
		}
		keep[name] = true

		already := false
		for _, m := range existing {
			if m.MemberName == name {
				already = true
				break
			}
		}
		if already {
			continue
		}

		member := models.TeamMember{
			TeamID:     team.ID,
			MemberName: name,
		}
		var user models.User
		if err := tx.Where("username = ?", name).First(&user).Error; err == nil {
			member.MemberID = &user.ID
			member.InvitationStatus = models.InvitationUnanswered
		} else {
			// 未注册的占位成员，留下认领标识
			member.MemberToken = utils.GenerateMemberToken()
			member.InvitationStatus = models.InvitationAccepted
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
	}

	for _, m := range existing {
		if !keep[m.MemberName] {
			if err := tx.Delete(&m).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func clearSelectedTeam(tx *gorm.DB, competitionID, userID uint32) error {
	return tx.Model(&models.TeamMember{}).
		Where("member_id = ? AND team_id IN (?)", userID,
			tx.Model(&models.Team{}).Select("id").Where("competition_id = ?", competitionID)).
		Update("is_selected", false).Error
}

// AnswerInvitation —— 回应入队邀请；接受后该队伍成为当前生效队伍
func AnswerInvitation(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)

	userIDAny, exists := c.Get("user_id")
	if !exists {
		utils.Error(c, 4001, "未登录")
		return
	}
	userID := userIDAny.(uint32)

	var req dto.InvitationAnswerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}

	var member models.TeamMember
	if err := database.DB.
		Joins("JOIN comp_team ON comp_team.id = comp_team_member.team_id").
		Where("comp_team.competition_id = ? AND comp_team_member.team_id = ? AND comp_team_member.member_id = ?",
			ctx.Competition.ID, req.TeamID, userID).
		First(&member).Error; err != nil {
		utils.Error(c, 4004, "邀请不存在")
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if req.Accept {
			if err := clearSelectedTeam(tx, ctx.Competition.ID, userID); err != nil {
				return err
			}
			member.InvitationStatus = models.InvitationAccepted
			member.IsSelected = true
		} else {
			member.InvitationStatus = models.InvitationDeclined
			member.IsSelected = false
		}
		return tx.Save(&member).Error
	})
	if err != nil {
		utils.Error(c, 5000, "操作失败: "+err.Error())
		return
	}
	utils.Success(c, "success", gin.H{"invitation_status": member.InvitationStatus})
}

// --- 仅管理员可访问的接口 ---

type competitionReq struct {
	Name                  string     `json:"name" binding:"required"`
	URLPathPrefix         string     `json:"url_path_prefix" binding:"required"`
	Kind                  string     `json:"kind"`
	Description           string     `json:"description"`
	StartDate             time.Time  `json:"start_date" binding:"required"`
	EndDate               time.Time  `json:"end_date" binding:"required"`
	ScoreboardFreezeDate  *time.Time `json:"scoreboard_freeze_date"`
	TeamCategories        string     `json:"team_categories"`
	DefaultMaxSubmissions int        `json:"default_max_submissions"`
	MaxTeamSize           int        `json:"max_team_size"`
	PublicScoreboard      *bool      `json:"public_scoreboard"`
}

func (r *competitionReq) validate(c *gin.Context) bool {
	if r.Kind == "" {
		r.Kind = string(models.KindCompetition)
	}
	if r.Kind != string(models.KindCompetition) && r.Kind != string(models.KindCourse) {
		utils.Error(c, 1001, "kind 取值无效（competition/course）")
		return false
	}
	if !r.EndDate.After(r.StartDate) {
		utils.Error(c, 1001, "end_date 必须晚于 start_date")
		return false
	}
	if r.DefaultMaxSubmissions <= 0 {
		r.DefaultMaxSubmissions = 3
	}
	if r.MaxTeamSize <= 0 {
		r.MaxTeamSize = 1
	}
	return true
}

// AdminCreateCompetition —— 创建赛事。team_categories 不做校验：
// 解析失败的配置在展示层自动降级为单表
func AdminCreateCompetition(c *gin.Context) {
	var req competitionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}
	if !req.validate(c) {
		return
	}

	var existing models.Competition
	if err := database.DB.Where("url_path_prefix = ?", req.URLPathPrefix).First(&existing).Error; err == nil {
		utils.Error(c, 2001, "url_path_prefix 已被占用")
		return
	}

	publicScoreboard := true
	if req.PublicScoreboard != nil {
		publicScoreboard = *req.PublicScoreboard
	}
	competition := models.Competition{
		Name:                  req.Name,
		URLPathPrefix:         req.URLPathPrefix,
		Kind:                  models.CompetitionKind(req.Kind),
		Description:           req.Description,
		StartDate:             req.StartDate,
		EndDate:               req.EndDate,
		ScoreboardFreezeDate:  req.ScoreboardFreezeDate,
		TeamCategories:        req.TeamCategories,
		DefaultMaxSubmissions: req.DefaultMaxSubmissions,
		MaxTeamSize:           req.MaxTeamSize,
		PublicScoreboard:      publicScoreboard,
	}
	if err := database.DB.Create(&competition).Error; err != nil {
		utils.Error(c, 5000, "创建赛事失败: "+err.Error())
		return
	}
	utils.Success(c, "Competition created successfully", gin.H{"id": competition.ID})
}

// AdminUpdateCompetition —— 整体更新赛事配置
func AdminUpdateCompetition(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)
	competition := ctx.Competition

	var req competitionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 1001, "参数无效: "+err.Error())
		return
	}
	if !req.validate(c) {
		return
	}
	if req.URLPathPrefix != competition.URLPathPrefix {
		var existing models.Competition
		if err := database.DB.Where("url_path_prefix = ?", req.URLPathPrefix).First(&existing).Error; err == nil {
			utils.Error(c, 2001, "url_path_prefix 已被占用")
			return
		}
	}

	competition.Name = req.Name
	competition.URLPathPrefix = req.URLPathPrefix
	competition.Kind = models.CompetitionKind(req.Kind)
	competition.Description = req.Description
	competition.StartDate = req.StartDate
	competition.EndDate = req.EndDate
	competition.ScoreboardFreezeDate = req.ScoreboardFreezeDate
	competition.TeamCategories = req.TeamCategories
	competition.DefaultMaxSubmissions = req.DefaultMaxSubmissions
	competition.MaxTeamSize = req.MaxTeamSize
	if req.PublicScoreboard != nil {
		competition.PublicScoreboard = *req.PublicScoreboard
	}

	if err := database.DB.Save(competition).Error; err != nil {
		utils.Error(c, 5000, "更新赛事失败: "+err.Error())
		return
	}
	services.InvalidateScoreboardCache(competition.ID)
	utils.Success(c, "Competition updated successfully", gin.H{"id": competition.ID})
}
