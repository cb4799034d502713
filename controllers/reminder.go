package controllers

import (
	"errors"
	"net/http"

	"journal-management-api/services"

	"github.com/gin-gonic/gin"
)

// RunReminders triggers every reminder sweep once and reports the
// per-sweep totals. Normally the scheduler does this; the endpoint
// exists for manual catch-up runs.
func RunReminders(c *gin.Context) {
	svc := services.NewReminderService(getDB(), services.DefaultDelivery())
	summaries := svc.RunAll()
	c.JSON(http.StatusOK, gin.H{"sweeps": summaries})
}

// RunReminderSweep triggers a single named sweep.
func RunReminderSweep(c *gin.Context) {
	svc := services.NewReminderService(getDB(), services.DefaultDelivery())
	summary, err := svc.RunSweep(c.Param("kind"))
	if err != nil {
		if errors.Is(err, services.ErrUnknownSweep) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sweep": c.Param("kind"), "summary": summary})
}
