package users

import (
	"net/http"

	lib "yemenflix/src/modules/users/lib"
	service "yemenflix/src/modules/users/services"
	"yemenflix/src/utils"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	svc *service.NotificationService
}

func NewNotificationController(svc *service.NotificationService) *NotificationController {
	return &NotificationController{svc: svc}
}

func (ctl *NotificationController) ListNotifications(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	unread := c.Query("unread") == "true"
	res, err := ctl.svc.List(c.Request.Context(), id, unread, utils.QueryInt(c, "limit", 50))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *NotificationController) MarkRead(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	viewerID, isAdmin := viewer(c)
	if err := ctl.svc.MarkRead(c.Request.Context(), id, viewerID, isAdmin); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (ctl *NotificationController) MarkAllRead(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	n, err := ctl.svc.MarkAllRead(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read", "updated": n})
}

func (ctl *NotificationController) DeleteNotification(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	viewerID, isAdmin := viewer(c)
	if err := ctl.svc.Delete(c.Request.Context(), id, viewerID, isAdmin); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

func (ctl *NotificationController) GetSettings(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	settings, err := ctl.svc.Settings(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (ctl *NotificationController) UpdateSettings(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var p lib.NotificationSettingsPatch
	if err := utils.BindJson(c, &p); err != nil {
		utils.RespondError(c, err)
		return
	}
	settings, err := ctl.svc.UpdateSettings(c.Request.Context(), id, p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
