package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Domenick1991/airline-booking/internal/service/tickets"
)

const (
	identityKey    = "identity"
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
	staffRole      = "staff"
	requestsPerSec = 100
)

// Auth extracts the caller identity supplied by the authentication
// front end. Requests without a user id are rejected before reaching
// the handlers.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(headerUserID)
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "code": "unauthenticated"})
			return
		}
		c.Set(identityKey, tickets.Identity{
			UserID: userID,
			Staff:  c.GetHeader(headerUserRole) == staffRole,
		})
		c.Next()
	}
}

func identityFrom(c *gin.Context) tickets.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(tickets.Identity); ok {
			return id
		}
	}
	return tickets.Identity{}
}

func RateLimit() gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Every(time.Second), requestsPerSec)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": "1s",
			})
			return
		}
		c.Next()
	}
}

func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-User-ID, X-User-Role")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
