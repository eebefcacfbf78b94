package controller

import (
	"literacy_backend/internal/service"
	"literacy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	Service *service.UploadService
}

func NewUploadController(svc *service.UploadService) *UploadController {
	return &UploadController{Service: svc}
}

// @Summary Get a pre-signed upload URL
// @Description Returns a short-lived PUT URL and the public URL the file will have.
// @Tags Uploads
// @Accept json
// @Produce json
// @Param body body service.UploadURLRequest true "File"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/interventions/upload-url [post]
func (c *UploadController) CreateUploadURL(ctx *gin.Context) {
	var req service.UploadURLRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	res, err := c.Service.CreateUploadURL(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}
