package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// pollNotifications serves GET /notifications?since=<RFC3339>&unread=true
func (h *handler) pollNotifications(c *gin.Context) {
	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "since must be an RFC3339 timestamp")
			return
		}
		since = &t
	}
	unreadOnly := c.Query("unread") == "true"

	res, err := h.svc.Notifications.Poll(c.Request.Context(), currentUser(c), since, unreadOnly)
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Notifications retrieved successfully", res)
}

func (h *handler) markNotificationRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Notifications.MarkRead(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Notification marked as read", nil)
}

func (h *handler) markAllNotificationsRead(c *gin.Context) {
	n, err := h.svc.Notifications.MarkAllRead(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	success(c, http.StatusOK, "Notifications marked as read", gin.H{"updated": n})
}
