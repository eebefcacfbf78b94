package controller

import (
	"strings"

	"literacy_backend/internal/service"
	"literacy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TemplateController struct {
	Service *service.TemplateService
}

func NewTemplateController(svc *service.TemplateService) *TemplateController {
	return &TemplateController{Service: svc}
}

// @Summary List main assessment questions
// @Tags Templates
// @Produce json
// @Param category query string false "Category"
// @Param readingLevel query string false "Reading level"
// @Success 200 {object} util.Response
// @Router /api/interventions/questions/main [get]
func (c *TemplateController) ListMainQuestions(ctx *gin.Context) {
	items, err := c.Service.ListMainAssessmentQuestions(ctx.Request.Context(), ctx.Query("category"), ctx.Query("readingLevel"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessList(ctx, items)
}

// @Summary List question templates
// @Tags Templates
// @Produce json
// @Param category query string false "Category"
// @Success 200 {object} util.Response
// @Router /api/interventions/templates/questions [get]
func (c *TemplateController) ListQuestions(ctx *gin.Context) {
	items, err := c.Service.ListQuestionTemplates(ctx.Request.Context(), ctx.Query("category"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessList(ctx, items)
}

// @Summary Create a question template
// @Tags Templates
// @Accept json
// @Produce json
// @Param body body service.QuestionTemplateRequest true "Template"
// @Success 201 {object} util.Response
// @Router /api/interventions/templates/questions [post]
func (c *TemplateController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	q, err := c.Service.CreateQuestionTemplate(ctx.Request.Context(), req, actorID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "Question template created", q)
}

// @Summary Update a question template
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Template ObjectId"
// @Param body body service.QuestionTemplateRequest true "Template"
// @Success 200 {object} util.Response
// @Router /api/interventions/templates/questions/{id} [put]
func (c *TemplateController) UpdateQuestion(ctx *gin.Context) {
	var req service.QuestionTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	q, err := c.Service.UpdateQuestionTemplate(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Question template updated", q)
}

// @Summary Delete a question template
// @Tags Templates
// @Produce json
// @Param id path string true "Template ObjectId"
// @Success 200 {object} util.Response
// @Router /api/interventions/templates/questions/{id} [delete]
func (c *TemplateController) DeleteQuestion(ctx *gin.Context) {
	if err := c.Service.DeleteQuestionTemplate(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Question template deleted", nil)
}

// @Summary List choice templates
// @Tags Templates
// @Produce json
// @Param choiceTypes query string false "Comma separated choice types"
// @Success 200 {object} util.Response
// @Router /api/interventions/templates/choices [get]
func (c *TemplateController) ListChoices(ctx *gin.Context) {
	var types []string
	if raw := ctx.Query("choiceTypes"); raw != "" {
		types = strings.Split(raw, ",")
	}
	items, err := c.Service.ListChoiceTemplates(ctx.Request.Context(), types)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessList(ctx, items)
}

// @Summary Create a choice template
// @Tags Templates
// @Accept json
// @Produce json
// @Param body body service.ChoiceTemplateRequest true "Choice"
// @Success 201 {object} util.Response
// @Router /api/interventions/templates/choices [post]
func (c *TemplateController) CreateChoice(ctx *gin.Context) {
	var req service.ChoiceTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	choice, err := c.Service.CreateChoiceTemplate(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "Choice template created", choice)
}

// @Summary Update a choice template
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Choice ObjectId"
// @Param body body service.ChoiceTemplateRequest true "Choice"
// @Success 200 {object} util.Response
// @Router /api/interventions/templates/choices/{id} [put]
func (c *TemplateController) UpdateChoice(ctx *gin.Context) {
	var req service.ChoiceTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	choice, err := c.Service.UpdateChoiceTemplate(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Choice template updated", choice)
}

// @Summary Delete a choice template
// @Tags Templates
// @Produce json
// @Param id path string true "Choice ObjectId"
// @Success 200 {object} util.Response
// @Router /api/interventions/templates/choices/{id} [delete]
func (c *TemplateController) DeleteChoice(ctx *gin.Context) {
	if err := c.Service.DeleteChoiceTemplate(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Choice template deleted", nil)
}

// @Summary List sentence templates
// @Tags Templates
// @Produce json
// @Param readingLevel query string false "Reading level"
// @Success 200 {object} util.Response
// @Router /api/interventions/templates/sentences [get]
func (c *TemplateController) ListSentences(ctx *gin.Context) {
	items, err := c.Service.ListSentenceTemplates(ctx.Request.Context(), ctx.Query("readingLevel"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessList(ctx, items)
}

// @Summary Create a sentence template
// @Tags Templates
// @Accept json
// @Produce json
// @Param body body service.SentenceTemplateRequest true "Passage"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/interventions/templates/sentences [post]
func (c *TemplateController) CreateSentence(ctx *gin.Context) {
	var req service.SentenceTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	t, err := c.Service.CreateSentenceTemplate(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "Sentence template created", t)
}

// @Summary Update a sentence template
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Sentence template ObjectId"
// @Param body body service.SentenceTemplateRequest true "Passage"
// @Success 200 {object} util.Response
// @Router /api/interventions/templates/sentences/{id} [put]
func (c *TemplateController) UpdateSentence(ctx *gin.Context) {
	var req service.SentenceTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	t, err := c.Service.UpdateSentenceTemplate(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Sentence template updated", t)
}

// @Summary Delete a sentence template
// @Tags Templates
// @Produce json
// @Param id path string true "Sentence template ObjectId"
// @Success 200 {object} util.Response
// @Router /api/interventions/templates/sentences/{id} [delete]
func (c *TemplateController) DeleteSentence(ctx *gin.Context) {
	if err := c.Service.DeleteSentenceTemplate(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Sentence template deleted", nil)
}

// @Summary All templates for the authoring wizard
// @Tags Templates
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/interventions/templates/all [get]
func (c *TemplateController) All(ctx *gin.Context) {
	all, err := c.Service.GetAllTemplates(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, all)
}
