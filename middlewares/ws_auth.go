package middlewares

import (
	"foodorder/pkg/resp"
	"foodorder/utils"

	"github.com/gin-gonic/gin"
)

// WSAuthMiddleware authenticates websocket upgrades. Browsers cannot set
// headers on a websocket handshake so the token may come as ?token=.
func WSAuthMiddleware(v TokenVerifier, r IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			t, err := utils.BearerToken(c.GetHeader("Authorization"))
			if err != nil {
				resp.Unauthorized(c)
				return
			}
			tokenStr = t
		}

		claims, err := v.Verify(tokenStr)
		if err != nil {
			resp.Unauthorized(c)
			return
		}
		ident, err := r.ResolveIdentity(c.Request.Context(), claims.Subject)
		if err != nil {
			resp.Unauthorized(c)
			return
		}

		utils.SetSubject(c, claims.Subject)
		utils.SetIdentity(c, ident)
		c.Next()
	}
}
