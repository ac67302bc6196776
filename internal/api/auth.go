package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"voicedoc/internal/utils"
)

const userIDKey = "userID"

// RequireIdentity verifies the HS256 bearer token and stores its subject as
// the caller's user id. Token issuance happens elsewhere; this only needs the
// identity for the per-user listing.
func RequireIdentity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			utils.Error(c, http.StatusBadRequest, "user identity is required")
			c.Abort()
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			utils.Error(c, http.StatusBadRequest, "invalid identity token")
			c.Abort()
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			utils.Error(c, http.StatusBadRequest, "identity token has no subject")
			c.Abort()
			return
		}

		c.Set(userIDKey, sub)
		c.Next()
	}
}
