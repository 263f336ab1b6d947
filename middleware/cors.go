package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	WidgetPrefix = "/api/widget/"

	widgetAllowHeaders    = "authorization, x-client-info, apikey, content-type"
	dashboardAllowHeaders = "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With"
)

// CORSMiddleware applies two policies. Widget routes are embedded on
// arbitrary sites and allow any origin without credentials; everything else
// is the dashboard and only allows the frontend origin, with cookies.
// It is installed globally so preflights reach it before route matching.
func CORSMiddleware(frontendOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		if strings.HasPrefix(c.Request.URL.Path, WidgetPrefix) {
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Headers", widgetAllowHeaders)
			h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusOK)
				return
			}
			c.Next()
			return
		}

		h.Set("Access-Control-Allow-Origin", frontendOrigin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", dashboardAllowHeaders)
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")
		h.Add("Vary", "Origin")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
