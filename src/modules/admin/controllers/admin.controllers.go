package admin

import (
	"fmt"
	"net/http"
	"time"

	lib "yemenflix/src/modules/admin/lib"
	service "yemenflix/src/modules/admin/services"
	"yemenflix/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AdminController struct {
	svc     *service.AdminService
	reports *service.ReportService
}

func NewAdminController(svc *service.AdminService, reports *service.ReportService) *AdminController {
	return &AdminController{svc: svc, reports: reports}
}

func (ctl *AdminController) GetStats(c *gin.Context) {
	stats, err := ctl.svc.Stats(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (ctl *AdminController) GetSettings(c *gin.Context) {
	settings, err := ctl.svc.Settings(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (ctl *AdminController) UpdateSettings(c *gin.Context) {
	var req lib.SettingsRequest
	if err := utils.BindJson(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	settings, err := ctl.svc.UpdateSettings(c.Request.Context(), req.Settings)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully", "settings": settings})
}

func (ctl *AdminController) ClearCache(c *gin.Context) {
	var req lib.ClearCacheRequest
	// an empty body clears everything
	if c.Request.ContentLength > 0 {
		if err := utils.BindJson(c, &req); err != nil {
			utils.RespondError(c, err)
			return
		}
	}
	n, err := ctl.svc.ClearCache(c.Request.Context(), req.Prefix)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cache cleared successfully", "cleared": n})
}

// BackupDatabase streams a SQL dump as a download.
func (ctl *AdminController) BackupDatabase(c *gin.Context) {
	name := fmt.Sprintf("yemenflix-backup-%s.sql", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Type", "application/sql; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Status(http.StatusOK)
	if err := ctl.svc.Backup(c.Request.Context(), c.Writer); err != nil {
		// headers are already sent
		log.Ctx(c.Request.Context()).Error().Err(err).Msg("backup failed")
		_ = c.Error(err)
	}
}

func (ctl *AdminController) RestoreDatabase(c *gin.Context) {
	fh, err := c.FormFile("backup")
	if err != nil {
		utils.RespondError(c, utils.BadRequest("backup file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	defer f.Close()
	if err := ctl.svc.Restore(c.Request.Context(), f); err != nil {
		utils.RespondError(c, utils.BadRequest("restore failed: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Database restored successfully"})
}

func (ctl *AdminController) ListReports(c *gin.Context) {
	var q lib.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondError(c, utils.BadRequest("invalid query: "+err.Error()))
		return
	}
	page, err := ctl.reports.List(c.Request.Context(), q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (ctl *AdminController) UpdateReport(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var p lib.ReportPatch
	if err := utils.BindJson(c, &p); err != nil {
		utils.RespondError(c, err)
		return
	}
	report, err := ctl.reports.Update(c.Request.Context(), id, p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// CreateReport is public.
func (ctl *AdminController) CreateReport(c *gin.Context) {
	var req lib.ReportRequest
	if err := utils.BindJson(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	report, err := ctl.reports.Create(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "تم إرسال التبليغ بنجاح. شكراً لك على مساعدتنا في تحسين الخدمة.",
		"reportId": report.ID,
	})
}
