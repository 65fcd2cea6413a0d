package webserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rawthoughts/modfeed/src/api/config"
	"github.com/rawthoughts/modfeed/src/store"
	"github.com/rawthoughts/modfeed/src/workflow"
	"github.com/redis/go-redis/v9"
)

func New(cfg config.Config, st *store.Store, wf *workflow.Workflow, rdb *redis.Client) *gin.Engine {
	r := gin.Default()
	attachRoutes(r, cfg, st, wf, rdb)
	return r
}

func attachRoutes(r *gin.Engine, cfg config.Config, st *store.Store, wf *workflow.Workflow, rdb *redis.Client) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authH := NewAuth(rdb, []byte(cfg.JWTSecret), cfg.ModeratorKey)
	subH := NewSubmissions(wf)
	modH := NewModeration(wf, st)
	voteH := NewVotes(wf)
	exportH := NewExport(st)

	submitLimiter := NewRateLimiter(cfg.SubmitRate, time.Minute)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/login", authH.Login)

		v1.POST("/submissions", RateLimitMiddleware(submitLimiter), subH.Create)
		v1.GET("/submissions/:id", subH.Get)
		v1.POST("/votes", voteH.Toggle)

		secured := v1.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		secured.GET("/submissions", subH.List)
		secured.GET("/stats", subH.Stats)
		secured.GET("/export", exportH.CSV)
		secured.POST("/moderation/:id/approve", modH.Approve)
		secured.POST("/moderation/:id/reject", modH.Reject)
		secured.POST("/moderation/:id/recount", modH.Recount)
	}
}
