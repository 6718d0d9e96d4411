package reviews

import (
	"net/http"

	"yemenflix/src/middleware"
	lib "yemenflix/src/modules/reviews/lib"
	service "yemenflix/src/modules/reviews/services"
	"yemenflix/src/utils"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	svc *service.ReviewService
}

func NewReviewController(svc *service.ReviewService) *ReviewController {
	return &ReviewController{svc: svc}
}

func (ctl *ReviewController) ListReviews(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	res, err := ctl.svc.ListReviews(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *ReviewController) CreateReview(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var req lib.ReviewRequest
	if err := utils.BindJson(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	claims, _ := middleware.CurrentUser(c)
	review, err := ctl.svc.CreateReview(c.Request.Context(), claims.UserID, id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (ctl *ReviewController) GetUserReview(c *gin.Context) {
	userID, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	contentID, perr := utils.ParseID(c, "contentId")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	review, err := ctl.svc.UserReview(c.Request.Context(), userID, contentID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (ctl *ReviewController) UpdateReview(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var p lib.ReviewPatch
	if err := utils.BindJson(c, &p); err != nil {
		utils.RespondError(c, err)
		return
	}
	claims, _ := middleware.CurrentUser(c)
	review, err := ctl.svc.UpdateReview(c.Request.Context(), id, claims.UserID, claims.IsAdmin, p)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (ctl *ReviewController) DeleteReview(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	claims, _ := middleware.CurrentUser(c)
	if err := ctl.svc.DeleteReview(c.Request.Context(), id, claims.UserID, claims.IsAdmin); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

func (ctl *ReviewController) LikeReview(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var req lib.LikeRequest
	if err := utils.BindJson(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondError(c, err)
		return
	}
	claims, _ := middleware.CurrentUser(c)
	review, err := ctl.svc.LikeReview(c.Request.Context(), id, claims.UserID, *req.IsLike)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (ctl *ReviewController) ListComments(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	threads, err := ctl.svc.ListComments(c.Request.Context(), id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": threads})
}

func (ctl *ReviewController) CreateComment(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	var req lib.CommentRequest
	if err := utils.BindJson(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	claims, _ := middleware.CurrentUser(c)
	comment, err := ctl.svc.CreateComment(c.Request.Context(), claims.UserID, id, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (ctl *ReviewController) DeleteComment(c *gin.Context) {
	id, perr := utils.ParseID(c, "id")
	if perr != nil {
		utils.RespondError(c, perr)
		return
	}
	claims, _ := middleware.CurrentUser(c)
	if err := ctl.svc.DeleteComment(c.Request.Context(), id, claims.UserID, claims.IsAdmin); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}
