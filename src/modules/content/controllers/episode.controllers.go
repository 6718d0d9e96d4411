package content

import (
	"net/http"

	lib "yemenflix/src/modules/content/lib"
	service "yemenflix/src/modules/content/services"
	"yemenflix/src/utils"

	"github.com/gin-gonic/gin"
)

type EpisodeController struct {
	svc *service.EpisodeService
}

func NewEpisodeController(svc *service.EpisodeService) *EpisodeController {
	return &EpisodeController{svc: svc}
}

func (ctl *EpisodeController) ListEpisodes(c *gin.Context) {
	contentID, perr := utils.ParseID(c, "contentId")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	res, err := ctl.svc.List(c.Request.Context(), contentID, utils.QueryInt(c, "season", 0))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *EpisodeController) CreateEpisode(c *gin.Context) {
	var in lib.EpisodeInput
	if err := utils.BindJson(c, &in); err != nil {
		utils.RespondError(c, err)
		return
	}
	ep, err := ctl.svc.Create(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ep)
}

func (ctl *EpisodeController) UpdateEpisode(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var p lib.EpisodePatch
	if err := utils.BindJson(c, &p); err != nil {
		utils.RespondError(c, err)
		return
	}
	ep, err := ctl.svc.Update(c.Request.Context(), id, p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ep)
}

func (ctl *EpisodeController) DeleteEpisode(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	if err := ctl.svc.Delete(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Episode deleted successfully"})
}
