package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// 登录流程在外部，会话里只需要 user_id
const (
	SessionUserKey = "user_id"
	CheckUserKey   = "user_id"
)

// LoadUser 从会话读取用户 ID 放进 context
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if id, ok := session.Get(SessionUserKey).(string); ok && id != "" {
			c.Set(CheckUserKey, id)
		}
		c.Next()
	}
}

// AuthRequired 未登录返回 401
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请先登录"})
			return
		}
		c.Next()
	}
}

// UserID 当前登录用户
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(CheckUserKey)
	return id, id != ""
}

// ViewerID 匿名访客返回 nil
func ViewerID(c *gin.Context) *string {
	if id, ok := UserID(c); ok {
		return &id
	}
	return nil
}
