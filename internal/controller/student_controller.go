package controller

import (
	"literacy_backend/internal/service"
	"literacy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	Identity *service.IdentityService
}

func NewStudentController(identity *service.IdentityService) *StudentController {
	return &StudentController{Identity: identity}
}

// @Summary Find a student by idNumber or name, creating one if absent
// @Tags Students
// @Accept json
// @Produce json
// @Param body body service.FindOrCreateStudentRequest true "Student"
// @Success 200 {object} util.Response "Existing student"
// @Success 201 {object} util.Response "Created student"
// @Router /api/students/find-or-create [post]
func (c *StudentController) FindOrCreate(ctx *gin.Context) {
	var req service.FindOrCreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	user, created, err := c.Identity.FindOrCreateStudent(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if created {
		util.Created(ctx, "Student created", user)
		return
	}
	util.SuccessMessage(ctx, "Student found", user)
}
