package users

import (
	"net/http"

	"yemenflix/src/middleware"
	lib "yemenflix/src/modules/users/lib"
	service "yemenflix/src/modules/users/services"
	"yemenflix/src/utils"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	svc *service.UserService
}

func NewUserController(svc *service.UserService) *UserController {
	return &UserController{svc: svc}
}

// viewer returns the caller's id (0 when anonymous) and admin flag.
func viewer(c *gin.Context) (uint, bool) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return 0, false
	}
	return claims.UserID, claims.IsAdmin
}

func (ctl *UserController) GetProfile(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	user, err := ctl.svc.Profile(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ctl *UserController) UpdateProfile(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var p lib.ProfilePatch
	if err := utils.BindJson(c, &p); err != nil {
		utils.RespondError(c, err)
		return
	}
	user, err := ctl.svc.UpdateProfile(c.Request.Context(), id, p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ctl *UserController) GetStats(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	stats, err := ctl.svc.Stats(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (ctl *UserController) ListFavorites(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	favs, err := ctl.svc.Favorites(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favs})
}

func (ctl *UserController) AddFavorite(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var req lib.FavoriteRequest
	if err := utils.BindJson(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	fav, err := ctl.svc.AddFavorite(c.Request.Context(), id, req.ContentID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fav)
}

func (ctl *UserController) RemoveFavorite(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	contentID, perr := utils.ParseID(c, "contentId")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	if err := ctl.svc.RemoveFavorite(c.Request.Context(), id, contentID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from favorites"})
}

func (ctl *UserController) ListHistory(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	history, err := ctl.svc.WatchHistory(c.Request.Context(), id, utils.QueryInt(c, "limit", 50))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (ctl *UserController) RecordProgress(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var req lib.ProgressRequest
	if err := utils.BindJson(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	entry, err := ctl.svc.RecordProgress(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (ctl *UserController) RemoveHistory(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	contentID, perr := utils.ParseID(c, "contentId")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	if err := ctl.svc.RemoveHistory(c.Request.Context(), id, contentID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from watch history"})
}

// ListWatchlists shows private lists only to their owner and admins.
func (ctl *UserController) ListWatchlists(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	viewerID, isAdmin := viewer(c)
	lists, err := ctl.svc.Watchlists(c.Request.Context(), id, isAdmin || viewerID == id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"watchlists": lists})
}

func (ctl *UserController) CreateWatchlist(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var req lib.WatchlistRequest
	if err := utils.BindJson(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	wl, err := ctl.svc.CreateWatchlist(c.Request.Context(), id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, wl)
}

func (ctl *UserController) GetWatchlistItems(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	viewerID, isAdmin := viewer(c)
	wl, err := ctl.svc.WatchlistItems(c.Request.Context(), id, viewerID, isAdmin)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wl)
}

func (ctl *UserController) AddWatchlistItem(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var req lib.WatchlistItemRequest
	if err := utils.BindJson(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	viewerID, isAdmin := viewer(c)
	item, err := ctl.svc.AddWatchlistItem(c.Request.Context(), id, viewerID, isAdmin, req.ContentID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (ctl *UserController) RemoveWatchlistItem(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	contentID, perr := utils.ParseID(c, "contentId")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	viewerID, isAdmin := viewer(c)
	if err := ctl.svc.RemoveWatchlistItem(c.Request.Context(), id, viewerID, isAdmin, contentID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from watchlist"})
}

func (ctl *UserController) DeleteWatchlist(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	viewerID, isAdmin := viewer(c)
	if err := ctl.svc.DeleteWatchlist(c.Request.Context(), id, viewerID, isAdmin); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Watchlist deleted successfully"})
}

func (ctl *UserController) AdminListUsers(c *gin.Context) {
	page, err := ctl.svc.ListUsers(c.Request.Context(), utils.QueryInt(c, "page", 1), utils.QueryInt(c, "limit", 24))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (ctl *UserController) AdminUpdateUser(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var p lib.AdminUserPatch
	if err := utils.BindJson(c, &p); err != nil {
		utils.RespondError(c, err)
		return
	}
	actorID, _ := viewer(c)
	user, err := ctl.svc.AdminUpdate(c.Request.Context(), id, actorID, p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
