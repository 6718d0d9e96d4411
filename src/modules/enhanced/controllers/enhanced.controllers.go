package enhanced

import (
	"net/http"

	lib "yemenflix/src/modules/enhanced/lib"
	service "yemenflix/src/modules/enhanced/services"
	"yemenflix/src/utils"

	"github.com/gin-gonic/gin"
)

type EnhancedController struct {
	svc *service.EnhancedService
}

func NewEnhancedController(svc *service.EnhancedService) *EnhancedController {
	return &EnhancedController{svc: svc}
}

func (ctl *EnhancedController) ListCastMembers(c *gin.Context) {
	people, err := ctl.svc.CastMembers(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, people)
}

func (ctl *EnhancedController) GetCastMember(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	person, err := ctl.svc.CastMember(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, person)
}

func (ctl *EnhancedController) CreateCastMember(c *gin.Context) {
	var req lib.CastMemberRequest
	if err := utils.BindJson(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	person, err := ctl.svc.CreateCastMember(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, person)
}

func (ctl *EnhancedController) UpdateCastMember(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var p lib.CastMemberPatch
	if err := utils.BindJson(c, &p); err != nil {
		utils.RespondError(c, err)
		return
	}
	person, err := ctl.svc.UpdateCastMember(c.Request.Context(), id, p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, person)
}

func (ctl *EnhancedController) DeleteCastMember(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	if err := ctl.svc.DeleteCastMember(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cast member deleted successfully"})
}

func (ctl *EnhancedController) ListContentCast(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	cast, err := ctl.svc.ContentCast(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cast)
}

func (ctl *EnhancedController) AddContentCast(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var req lib.ContentCastRequest
	if err := utils.BindJson(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	link, err := ctl.svc.AddContentCast(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (ctl *EnhancedController) RemoveContentCast(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	castID, perr := utils.ParseID(c, "castId")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	if err := ctl.svc.RemoveContentCast(c.Request.Context(), id, castID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cast member removed from content successfully"})
}

func (ctl *EnhancedController) ListImages(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	images, err := ctl.svc.Images(c.Request.Context(), id, c.Query("type"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, images)
}

func (ctl *EnhancedController) AddImage(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var req lib.ImageRequest
	if err := utils.BindJson(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	img, err := ctl.svc.AddImage(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}

func (ctl *EnhancedController) DeleteImage(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	if err := ctl.svc.DeleteImage(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Content image deleted successfully"})
}

func (ctl *EnhancedController) ListExternalRatings(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	ratings, err := ctl.svc.ExternalRatings(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}

func (ctl *EnhancedController) UpsertExternalRating(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var req lib.ExternalRatingRequest
	if err := utils.BindJson(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	rating, err := ctl.svc.UpsertExternalRating(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

func (ctl *EnhancedController) DeleteExternalRating(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	if err := ctl.svc.DeleteExternalRating(c.Request.Context(), id); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "External rating deleted successfully"})
}
