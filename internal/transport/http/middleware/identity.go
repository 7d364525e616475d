package middleware

import (
	"github.com/gin-gonic/gin"

	"go-threads-api/internal/core/auth"
)

// Identity derives the request identity from the Authorization header once
// per request and attaches it to the context. It never aborts: a bad or
// missing token just leaves the request unauthenticated, and each resolver
// decides whether that matters.
func Identity(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := j.DeriveIdentity(c.GetHeader("Authorization")); id != nil {
			c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		}
		c.Next()
	}
}
