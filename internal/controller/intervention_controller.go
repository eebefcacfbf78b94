package controller

import (
	"literacy_backend/internal/service"
	"literacy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InterventionController struct {
	Service *service.InterventionService
}

func NewInterventionController(svc *service.InterventionService) *InterventionController {
	return &InterventionController{Service: svc}
}

// @Summary List a student's intervention plans
// @Tags Interventions
// @Produce json
// @Param studentId path string true "Student ObjectId or idNumber"
// @Success 200 {object} util.Response
// @Router /api/interventions/student/{studentId} [get]
func (c *InterventionController) GetByStudent(ctx *gin.Context) {
	plans, err := c.Service.GetInterventionsByStudent(ctx.Request.Context(), ctx.Param("studentId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessList(ctx, plans)
}

// @Summary Get an intervention plan with its progress
// @Tags Interventions
// @Produce json
// @Param interventionId path string true "Plan ObjectId"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/interventions/{interventionId} [get]
func (c *InterventionController) GetByID(ctx *gin.Context) {
	detail, err := c.Service.GetInterventionByID(ctx.Request.Context(), ctx.Param("interventionId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary Check whether a plan exists for a student and category
// @Tags Interventions
// @Produce json
// @Param studentId query string true "Student ObjectId or idNumber"
// @Param category query string true "Category, human or machine form"
// @Success 200 {object} util.Response
// @Router /api/interventions/check [get]
func (c *InterventionController) Check(ctx *gin.Context) {
	res, err := c.Service.CheckExistingIntervention(ctx.Request.Context(), ctx.Query("studentId"), ctx.Query("category"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary Create an intervention plan
// @Tags Interventions
// @Accept json
// @Produce json
// @Param body body service.CreateInterventionRequest true "Plan"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/interventions [post]
func (c *InterventionController) Create(ctx *gin.Context) {
	var req service.CreateInterventionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	detail, err := c.Service.CreateIntervention(ctx.Request.Context(), req, actorID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "Intervention created successfully", detail)
}

// @Summary Update a draft intervention plan
// @Tags Interventions
// @Accept json
// @Produce json
// @Param interventionId path string true "Plan ObjectId"
// @Param body body service.UpdateInterventionRequest true "Fields to change"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "Plan is active or completed"
// @Router /api/interventions/{interventionId} [put]
func (c *InterventionController) Update(ctx *gin.Context) {
	var req service.UpdateInterventionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	detail, err := c.Service.UpdateIntervention(ctx.Request.Context(), ctx.Param("interventionId"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Intervention updated successfully", detail)
}

// @Summary Delete an intervention plan with its progress and responses
// @Tags Interventions
// @Produce json
// @Param interventionId path string true "Plan ObjectId"
// @Success 200 {object} util.Response
// @Router /api/interventions/{interventionId} [delete]
func (c *InterventionController) Delete(ctx *gin.Context) {
	if err := c.Service.DeleteIntervention(ctx.Request.Context(), ctx.Param("interventionId")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Intervention deleted successfully", nil)
}

// @Summary Push a plan to the student's mobile app
// @Tags Interventions
// @Produce json
// @Param interventionId path string true "Plan ObjectId"
// @Success 200 {object} util.Response
// @Router /api/interventions/{interventionId}/push [post]
func (c *InterventionController) Push(ctx *gin.Context) {
	plan, err := c.Service.PushIntervention(ctx.Request.Context(), ctx.Param("interventionId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Intervention pushed to mobile", plan)
}

// @Summary Activate a draft plan
// @Tags Interventions
// @Produce json
// @Param interventionId path string true "Plan ObjectId"
// @Success 200 {object} util.Response
// @Router /api/interventions/{interventionId}/activate [put]
func (c *InterventionController) Activate(ctx *gin.Context) {
	plan, err := c.Service.ActivateIntervention(ctx.Request.Context(), ctx.Param("interventionId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Intervention activated", plan)
}

// @Summary Backfill legacy plans
// @Description Links missing prescriptive analyses and fills missing choice descriptions.
// @Tags Interventions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/interventions/update-existing [post]
func (c *InterventionController) UpdateExisting(ctx *gin.Context) {
	summary, err := c.Service.UpdateExistingInterventions(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Existing interventions updated", summary)
}

// @Summary Record a student's answer
// @Tags Interventions
// @Accept json
// @Produce json
// @Param body body service.RecordResponseRequest true "Answer"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response "Plan already completed"
// @Router /api/interventions/responses [post]
func (c *InterventionController) RecordResponse(ctx *gin.Context) {
	var req service.RecordResponseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}

	res, err := c.Service.RecordResponse(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "Response recorded", res)
}
