// file: controllers/scoreboard_controller.go
package controllers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"skoljka/database"
	"skoljka/middlewares"
	"skoljka/models"
	"skoljka/services"
	"skoljka/utils"
)

// Scoreboard —— 排行榜：主表 + 按 SCOREBOARD 模式拆出的子表
func Scoreboard(c *gin.Context) {
	teamList(c, false)
}

// Participants —— 课程的参与者列表，与排行榜同构，默认按名字排序
func Participants(c *gin.Context) {
	teamList(c, true)
}

func teamList(c *gin.Context, asParticipants bool) {
	ctx := middlewares.GetCompetitionContext(c)
	competition := ctx.Competition

	if !competition.PublicScoreboard && !ctx.IsAdmin {
		utils.Error(c, 4003, "排行榜未公开")
		return
	}

	defaultSort := services.SortByScore
	if asParticipants || competition.IsCourse() {
		defaultSort = services.SortByName
	}
	lang := c.DefaultQuery("lang", "en")

	viewerCategory := 0
	if ctx.Team != nil {
		viewerCategory = ctx.Team.Category
	}
	cacheKey := fmt.Sprintf("scoreboard:%d:%s:%s:%d:%t",
		competition.ID, lang, c.Request.URL.RawQuery, viewerCategory, ctx.IsAdmin)

	// 1. 先查 Redis 缓存
	if tables, ok := cachedTables(cacheKey); ok {
		utils.Success(c, "success (from cache)", gin.H{"tables": tables})
		return
	}

	db := database.DB.Where("competition_id = ?", competition.ID)
	if !ctx.IsAdmin {
		db = db.Where("team_type = ?", models.TeamTypeNormal)
	}
	var teams []models.Team
	if err := db.Find(&teams).Error; err != nil {
		utils.Error(c, 5000, "查询失败")
		return
	}

	rows := make([]services.TeamRow, 0, len(teams))
	for i := range teams {
		rows = append(rows, services.TeamRow{
			ID:          teams[i].ID,
			Name:        teams[i].Name,
			Category:    teams[i].Category,
			Score:       teams[i].CacheScoreBeforeFreeze,
			ActualScore: teams[i].CacheScore,
			IsNormal:    teams[i].IsNormal(),
		})
	}

	cfg := competition.ParseTeamCategories()
	tables := services.BuildScoreboard(
		cfg, lang, rows, ctx.Team, c.Request.URL.Query(), ctx.IsAdmin, defaultSort)

	// 2. 缓存 15 秒，准实时即可
	storeTables(cacheKey, tables)

	utils.Success(c, "success", gin.H{"tables": tables})
}

// cachedTables / storeTables 在 Redis 未初始化时退化为直算，
// 与 InvalidateScoreboardCache 的空值保护保持一致
func cachedTables(key string) ([]services.ScoreboardTable, bool) {
	if database.RDB == nil {
		return nil, false
	}
	val, err := database.RDB.Get(database.Ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var tables []services.ScoreboardTable
	if json.Unmarshal([]byte(val), &tables) != nil {
		return nil, false
	}
	return tables, true
}

func storeTables(key string, tables []services.ScoreboardTable) {
	if database.RDB == nil {
		return
	}
	if jsonData, err := json.Marshal(tables); err == nil {
		database.RDB.Set(database.Ctx, key, jsonData, 15*time.Second)
	}
}

// RefreshScoreboard —— 管理员触发的全量重算
func RefreshScoreboard(c *gin.Context) {
	ctx := middlewares.GetCompetitionContext(c)

	elapsed, err := services.RefreshTeamsCacheScore(database.DB, ctx.Competition)
	if err != nil {
		utils.Error(c, 5000, "重算失败: "+err.Error())
		return
	}
	utils.Success(c, "success", gin.H{
		"calculation_time_ms": elapsed.Milliseconds(),
	})
}
