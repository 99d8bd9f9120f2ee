// file: middlewares/competition.go
package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"

	"skoljka/database"
	"skoljka/models"
	"skoljka/utils"
)

// CompetitionContext 汇总一次请求内的赛事视角：赛事本身、当前用户的队伍、
// 相对时间。所有赛事路由的控制器都从这里取数据，不再各自查询。
type CompetitionContext struct {
	Competition     *models.Competition
	Team            *models.Team // 当前生效的队伍，可能为 nil
	Teams           []models.Team
	TeamInvitations []models.Team
	IsAdmin         bool
	HasStarted      bool
	HasFinished     bool
	CurrentTime     time.Time
	MinutesPassed   float64
}

const competitionContextKey = "competition_ctx"

// CompetitionMiddleware 按 URL 前缀解析赛事并装配 CompetitionContext。
// 赛事不存在时直接 404。
func CompetitionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("competition")

		var competition models.Competition
		if err := database.DB.Where("url_path_prefix = ?", slug).First(&competition).Error; err != nil {
			utils.NotFound(c)
			return
		}

		now := time.Now()
		ctx := &CompetitionContext{
			Competition:   &competition,
			HasStarted:    competition.StartDate.Before(now),
			HasFinished:   competition.EndDate.Before(now),
			CurrentTime:   now,
			MinutesPassed: now.Sub(competition.StartDate).Minutes(),
		}

		if roleAny, ok := c.Get("user_role"); ok {
			role := roleAny.(models.UserRole)
			ctx.IsAdmin = role == models.RoleModerator || role == models.RoleAdmin
		}

		if userIDAny, ok := c.Get("user_id"); ok {
			userID := userIDAny.(uint32)
			var entries []models.TeamMember
			database.DB.
				Joins("JOIN comp_team ON comp_team.id = comp_team_member.team_id").
				Where("comp_team.competition_id = ? AND comp_team_member.member_id = ?", competition.ID, userID).
				Find(&entries)

			for _, entry := range entries {
				var team models.Team
				if err := database.DB.First(&team, entry.TeamID).Error; err != nil {
					continue
				}
				switch entry.InvitationStatus {
				case models.InvitationAccepted:
					ctx.Teams = append(ctx.Teams, team)
					if entry.IsSelected {
						selected := team
						ctx.Team = &selected
					}
				case models.InvitationUnanswered:
					ctx.TeamInvitations = append(ctx.TeamInvitations, team)
				}
			}
		}

		c.Set(competitionContextKey, ctx)
		c.Next()
	}
}

// GetCompetitionContext 取出 CompetitionMiddleware 装配好的上下文
func GetCompetitionContext(c *gin.Context) *CompetitionContext {
	ctxAny, _ := c.Get(competitionContextKey)
	return ctxAny.(*CompetitionContext)
}
