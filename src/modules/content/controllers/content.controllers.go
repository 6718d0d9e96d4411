package content

import (
	"net/http"

	"yemenflix/src/middleware"
	lib "yemenflix/src/modules/content/lib"
	models "yemenflix/src/modules/content/models"
	service "yemenflix/src/modules/content/services"
	"yemenflix/src/utils"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	svc *service.ContentService
}

func NewContentController(svc *service.ContentService) *ContentController {
	return &ContentController{svc: svc}
}

func bindList(c *gin.Context) (lib.ListQuery, bool) {
	var q lib.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query: " + err.Error()})
		return q, false
	}
	q.Normalize(middleware.IsAdmin(c))
	return q, true
}

func (ctl *ContentController) ListContent(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}
	res, err := ctl.svc.List(c.Request.Context(), q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *ContentController) SearchContent(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}
	res, err := ctl.svc.Search(c.Request.Context(), q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *ContentController) RecentContent(c *gin.Context) {
	q, ok := bindList(c)
	if !ok {
		return
	}
	res, err := ctl.svc.Recent(c.Request.Context(), q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func respondCurated(c *gin.Context, items []models.Content, err error) {
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": items, "total": len(items), "page": 1, "limit": len(items), "totalPages": 1})
}

func (ctl *ContentController) FeaturedContent(c *gin.Context) {
	items, err := ctl.svc.Featured(c.Request.Context())
	respondCurated(c, items, err)
}

func (ctl *ContentController) TrendingContent(c *gin.Context) {
	items, err := ctl.svc.Trending(c.Request.Context())
	respondCurated(c, items, err)
}

func (ctl *ContentController) LatestContent(c *gin.Context) {
	items, err := ctl.svc.Latest(c.Request.Context())
	respondCurated(c, items, err)
}

func (ctl *ContentController) ContentStats(c *gin.Context) {
	stats, err := ctl.svc.Stats(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (ctl *ContentController) GetContent(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	details, err := ctl.svc.Get(c.Request.Context(), id, middleware.IsAdmin(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (ctl *ContentController) CreateContent(c *gin.Context) {
	var in lib.ContentInput
	if err := utils.BindJson(c, &in); err != nil {
		utils.RespondError(c, err)
		return
	}
	item, err := ctl.svc.Create(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (ctl *ContentController) UpdateContent(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var p lib.ContentPatch
	if err := utils.BindJson(c, &p); err != nil {
		utils.RespondError(c, err)
		return
	}
	item, err := ctl.svc.Update(c.Request.Context(), id, p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (ctl *ContentController) DeleteContent(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	if err := ctl.svc.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Content deleted successfully"})
}

func (ctl *ContentController) RecordView(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	if err := ctl.svc.RecordView(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (ctl *ContentController) ListCategories(c *gin.Context) {
	res, err := ctl.svc.Categories(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *ContentController) ListGenres(c *gin.Context) {
	res, err := ctl.svc.Genres(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
