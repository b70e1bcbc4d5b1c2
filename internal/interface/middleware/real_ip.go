package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// realIPKey is where the resolved client address lives in the Gin context;
// the rate limiter keys on it.
const realIPKey = "real_ip"

// RealIP resolves the client address behind proxies: Cloudflare's header
// first, then the left-most X-Forwarded-For hop, then Gin's own resolution.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(realIPKey, resolveIP(c))
		c.Next()
	}
}

func resolveIP(c *gin.Context) string {
	if ip := validIP(c.GetHeader("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := validIP(first); ip != "" {
			return ip
		}
	}
	return c.ClientIP()
}

func validIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
