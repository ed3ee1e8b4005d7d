package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getServiceInfo godoc
// @Summary Show service identity
// @Description Returns the service name and API version for smoke checks.
// @Tags root
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func getServiceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "hishab_backend",
		"api":     "v1",
	})
}
