package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS limita los orígenes permitidos según CORS_ORIGINS (lista separada por
// comas). "*" — el default de desarrollo — permite cualquier origen.
func CORS(origenes string) gin.HandlerFunc {
	permitidos := make(map[string]bool)
	comodin := false
	for _, o := range strings.Split(origenes, ",") {
		if o = strings.TrimSpace(o); o == "*" {
			comodin = true
		} else if o != "" {
			permitidos[o] = true
		}
	}

	return func(c *gin.Context) {
		origen := c.GetHeader("Origin")
		switch {
		case comodin:
			c.Header("Access-Control-Allow-Origin", "*")
		case permitidos[origen]:
			c.Header("Access-Control-Allow-Origin", origen)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
