package router

import (
	"net/http"

	"forumcore/internal/handlers"
	"forumcore/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes 需要在 sessions 中间件之后调用
func RegisterRoutes(r *gin.Engine, h *handlers.Set, gatherer prometheus.Gatherer) {
	r.Use(middleware.LoadUser())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// 公共路由 (Public Routes)
	r.GET("/posts", h.Post.List)                 // 帖子列表，?sort=hot|top|new|controversial
	r.GET("/posts/:id", h.Post.Detail)           // 帖子详情
	r.GET("/posts/:id/comments", h.Comment.Tree) // 评论树
	r.GET("/votes/:type/:id", h.Vote.Count)      // 投票统计
	r.GET("/awards/:type/:id", h.Award.List)     // 打赏汇总
	r.GET("/karma/:user_id", h.Karma.Balance)    // 积分余额
	r.GET("/karma/:user_id/logs", h.Karma.Logs)  // 积分明细

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/votes/:type/:id", h.Vote.Vote)         // 投票/改票
		authorized.DELETE("/votes/:type/:id", h.Vote.Clear)      // 取消投票
		authorized.POST("/awards/:type/:id", h.Award.Give)       // 打赏
		authorized.POST("/posts/:id/comments", h.Comment.Create) // 发表评论
		authorized.POST("/reports/:type/:id", h.Report.Report)   // 举报
		authorized.PUT("/saved/:type/:id", h.Saved.Save)         // 收藏
		authorized.DELETE("/saved/:type/:id", h.Saved.Unsave)    // 取消收藏
		authorized.GET("/saved", h.Saved.List)                   // 我的收藏
		authorized.GET("/notifications", h.Notification.List)    // 我的通知
		authorized.POST("/notifications/read-all", h.Notification.ReadAll)
		authorized.POST("/notifications/:id/read", h.Notification.Read)
		authorized.DELETE("/notifications/:id", h.Notification.Delete)
	}
}
