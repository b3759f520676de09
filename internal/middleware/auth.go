package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"course-classroom/internal/domain"
)

// ContextUserKey 是认证用户在 gin.Context 中的键
const ContextUserKey = "user"

// IdentityResolver 把 bearer token 解析为用户，失败返回 nil
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) *domain.User
}

// Auth 返回一个 Gin 中间件，要求请求携带可解析的 bearer token。
func Auth(identities IdentityResolver) gin.HandlerFunc {
	if identities == nil {
		panic("IdentityResolver cannot be nil for Auth middleware")
	}

	return func(c *gin.Context) {
		tokenStr := TokenFromRequest(c)
		if tokenStr == "" {
			logrus.Warn("Auth middleware: Missing bearer token")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		user := identities.Resolve(c.Request.Context(), tokenStr)
		if user == nil {
			// Resolver 已经记录了具体原因
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		logrus.WithField("user_id", user.ID).Debug("Auth middleware: User authenticated via JWT")
		c.Next()
	}
}

// TokenFromRequest 依次从 Authorization: Bearer 头和 token 查询参数中取令牌。
// 浏览器的 WebSocket 客户端无法设置请求头，所以查询参数同样有效。
func TokenFromRequest(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}

// CurrentUser 返回 Auth 中间件写入的用户
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok && user != nil
}
