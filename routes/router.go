// file: routes/router.go
package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"skoljka/controllers"
	"skoljka/middlewares"
	"skoljka/models"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	apiV1 := r.Group("/api/v1")
	{
		// --- 用户模块 ---
		usersPublic := apiV1.Group("/users")
		{
			usersPublic.POST("/register", controllers.Register)
			usersPublic.POST("/login", controllers.Login)
		}
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminRoutes.GET("/users", controllers.GetUserList)
			adminRoutes.PUT("/users/:id/status", controllers.UpdateUserStatus)
			adminRoutes.PUT("/users/:id/role", controllers.UpdateUserRole)
			adminRoutes.POST("/competitions", controllers.AdminCreateCompetition)
		}

		// --- 赛事列表 ---
		apiV1.GET("/competitions", controllers.ListCompetitions)

		// 个人任务标记，与具体赛事视角无关
		apiV1.POST("/ajax/task/:id", middlewares.JWTAuthMiddleware(), controllers.PersonalStatus)

		// --- 单个赛事，按 URL 前缀路由 ---
		comp := apiV1.Group("/:competition")
		comp.Use(middlewares.JWTTryAuthMiddleware(), middlewares.CompetitionMiddleware())
		{
			comp.GET("", controllers.GetCompetitionInfo)
			comp.GET("/scoreboard", controllers.Scoreboard)
			comp.GET("/participants", controllers.Participants)
			comp.GET("/tasks", controllers.TaskList)
			comp.GET("/tasks/:ctask_id", controllers.TaskDetail)
			// 暴力提交没有意义，但也不给机器人刷接口的机会
			comp.POST("/tasks/:ctask_id/submit",
				middlewares.JWTAuthMiddleware(),
				middlewares.RateLimitMiddleware(rate.Every(time.Second), 5),
				controllers.SubmitSolution)
			comp.POST("/registration", middlewares.JWTAuthMiddleware(), controllers.RegisterTeam)
			comp.POST("/invitation", middlewares.JWTAuthMiddleware(), controllers.AnswerInvitation)

			// 赛事管理，moderator 及以上
			mod := comp.Group("/admin")
			mod.Use(middlewares.JWTAuthMiddleware(), middlewares.RoleAuthMiddleware(models.RoleModerator))
			{
				mod.PUT("", controllers.AdminUpdateCompetition)
				mod.POST("/scoreboard/refresh", controllers.RefreshScoreboard)

				mod.GET("/chains", controllers.AdminListChains)
				mod.POST("/chains", controllers.CreateChain)
				mod.PUT("/chains/:chain_id", controllers.UpdateChain)
				mod.DELETE("/chains/:chain_id", controllers.DeleteChain)
				mod.POST("/chains/:chain_id/close", controllers.CloseChain)
				mod.POST("/chains/:chain_id/reopen", controllers.ReopenChain)
				mod.GET("/chains/:chain_id/access", controllers.GetChainAccess)
				mod.PUT("/chains/:chain_id/access", controllers.UpdateChainAccess)
				mod.POST("/chains/:chain_id/tasks/action", controllers.ChainTasksAction)

				mod.POST("/ctasks", controllers.CreateCtask)
				mod.PUT("/ctasks/:ctask_id", controllers.UpdateCtask)
				mod.DELETE("/ctasks/:ctask_id", controllers.DeleteCtask)

				mod.GET("/teams", controllers.AdminListTeams)
				mod.GET("/teams/:team_id", controllers.AdminTeamDetail)
				mod.GET("/teams/:team_id/submissions", controllers.AdminTeamSubmissions)
				mod.DELETE("/teams/:team_id", controllers.AdminDeleteTeam)
				mod.DELETE("/submissions/:submission_id", controllers.AdminDeleteSubmission)
			}
		}
	}

	return r
}
