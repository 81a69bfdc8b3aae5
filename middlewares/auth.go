package middlewares

import (
	"context"

	"foodorder/pkg/apperr"
	"foodorder/pkg/resp"
	"foodorder/utils"

	"github.com/gin-gonic/gin"
)

type TokenVerifier interface {
	Verify(tokenStr string) (*utils.Claims, error)
}

type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, subject string) (utils.Identity, error)
}

// JWTCheck rejects requests without a valid bearer token and records the
// token subject on the context.
func JWTCheck(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := utils.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			resp.Unauthorized(c)
			return
		}
		claims, err := v.Verify(tokenStr)
		if err != nil {
			resp.Unauthorized(c)
			return
		}
		utils.SetSubject(c, claims.Subject)
		c.Next()
	}
}

// JWTParse maps the verified subject to a local user. Runs after JWTCheck.
func JWTParse(r IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub, ok := utils.CurrentSubject(c)
		if !ok {
			resp.Unauthorized(c)
			return
		}
		ident, err := r.ResolveIdentity(c.Request.Context(), sub)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindInternal {
				resp.Fail(c, err, "something went wrong")
				c.Abort()
				return
			}
			resp.Unauthorized(c)
			return
		}
		utils.SetIdentity(c, ident)
		c.Next()
	}
}
