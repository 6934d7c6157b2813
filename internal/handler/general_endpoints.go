package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *UserHandler) healthCheck(c *gin.Context) {
	n := h.visits.Visit()
	c.String(http.StatusOK, fmt.Sprintf("I've been seen %d times", n))
}

// health is the liveness probe for orchestrators. It does not touch the visit counter.
func (h *UserHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": h.healthMessage})
}
