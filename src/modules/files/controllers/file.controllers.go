package files

import (
	"net/http"

	service "yemenflix/src/modules/files/services"
	"yemenflix/src/utils"

	"github.com/gin-gonic/gin"
)

type FileController struct {
	svc *service.FileService
}

func NewFileController(svc *service.FileService) *FileController {
	return &FileController{svc: svc}
}

// Upload takes a multipart "file" field.
func (ctl *FileController) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		utils.RespondError(c, utils.BadRequest("file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	defer f.Close()

	res, err := ctl.svc.Upload(c.Request.Context(), f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (ctl *FileController) Serve(c *gin.Context) {
	filepath := c.Param("filepath")
	if filepath == "" || filepath == "/" {
		utils.RespondError(c, utils.BadRequest("invalid filepath"))
		return
	}
	data, contentType, err := ctl.svc.Get(c.Request.Context(), filepath)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, contentType, data)
}
