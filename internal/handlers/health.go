package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "HEALTH"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
