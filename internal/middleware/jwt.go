package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/doctran/doctran/internal/pkg/errcode"
	"github.com/doctran/doctran/internal/pkg/jwt"
	"github.com/doctran/doctran/internal/pkg/response"
)

const ContextOwnerIDKey = "owner_id"

func JWTAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := ""
		switch {
		case header != "":
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.Error(c, errcode.ErrUnauthorized, "invalid authorization")
				c.Abort()
				return
			}
			token = parts[1]
		case c.Query("token") != "":
			// EventSource cannot set headers, so the SSE endpoint
			// accepts the token as a query parameter.
			token = c.Query("token")
		default:
			response.Error(c, errcode.ErrUnauthorized, "missing authorization")
			c.Abort()
			return
		}
		claims, err := jwt.ParseToken(token, secret)
		if err != nil {
			response.Error(c, errcode.ErrUnauthorized, "invalid token")
			c.Abort()
			return
		}
		c.Set(ContextOwnerIDKey, claims.OwnerID)
		c.Next()
	}
}
