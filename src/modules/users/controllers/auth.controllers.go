package users

import (
	"net/http"

	"yemenflix/src/middleware"
	lib "yemenflix/src/modules/users/lib"
	service "yemenflix/src/modules/users/services"
	"yemenflix/src/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	svc *service.AuthService
}

func NewAuthController(svc *service.AuthService) *AuthController {
	return &AuthController{svc: svc}
}

func (ctl *AuthController) Register(c *gin.Context) {
	var req lib.RegisterRequest
	if err := utils.BindJson(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	res, err := ctl.svc.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (ctl *AuthController) Login(c *gin.Context) {
	var req lib.LoginRequest
	if err := utils.BindJson(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	res, err := ctl.svc.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *AuthController) Me(c *gin.Context) {
	claims, _ := middleware.CurrentUser(c)
	user, err := ctl.svc.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ctl *AuthController) Logout(c *gin.Context) {
	claims, _ := middleware.CurrentUser(c)
	if err := ctl.svc.Logout(c.Request.Context(), claims); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
