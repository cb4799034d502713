package controllers

import (
	"log"

	"journal-management-api/config"
	"journal-management-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func getDB() *gorm.DB { return config.DB }

func getCurrentUserID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("userID"); ok {
		switch t := v.(type) {
		case int:
			return t, true
		case int64:
			return int(t), true
		case float64:
			return int(t), true
		}
	}
	return 0, false
}

func currentUserHasRole(c *gin.Context, role string) bool {
	v, ok := c.Get("roles")
	if !ok {
		return false
	}
	roles, ok := v.(map[string]bool)
	if !ok {
		return false
	}
	return roles[role]
}

// notifier returns the notification service wired to the process-wide
// delivery channel.
func notifier() *services.NotificationService {
	return services.NewNotificationService(nil, services.DefaultDelivery())
}

// notifySafe dispatches best-effort: the domain action already
// succeeded, so a failed notification is logged, never surfaced.
func notifySafe(action string, ctx services.DispatchContext) {
	if err := notifier().Dispatch(action, ctx); err != nil {
		log.Printf("notification dispatch failed (action=%s): %v", action, err)
	}
}
