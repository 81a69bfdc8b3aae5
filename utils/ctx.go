package utils

import "github.com/gin-gonic/gin"

const (
	subjectKey  = "authSubject"
	identityKey = "identity"
)

// Identity is the authenticated caller as resolved by the auth middleware.
// Handlers read it once and pass it on to services explicitly.
type Identity struct {
	Subject string
	UserID  uint
}

func SetSubject(c *gin.Context, sub string) { c.Set(subjectKey, sub) }

func CurrentSubject(c *gin.Context) (string, bool) {
	v, ok := c.Get(subjectKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func SetIdentity(c *gin.Context, id Identity) { c.Set(identityKey, id) }

func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok && id.UserID != 0
}
