package controller

import (
	"strconv"

	"literacy_backend/internal/service"
	"literacy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalysisController struct {
	Results  *service.CategoryResultService
	Analyses *service.PrescriptiveAnalysisService
}

func NewAnalysisController(results *service.CategoryResultService, analyses *service.PrescriptiveAnalysisService) *AnalysisController {
	return &AnalysisController{Results: results, Analyses: analyses}
}

// @Summary A student's category results
// @Description With `below`, returns only the categories whose latest score is under that value.
// @Tags Analysis
// @Produce json
// @Param studentId path string true "Student ObjectId or idNumber"
// @Param below query number false "Score threshold, e.g. 75"
// @Success 200 {object} util.Response
// @Router /api/category-results/student/{studentId} [get]
func (c *AnalysisController) CategoryResults(ctx *gin.Context) {
	studentID := ctx.Param("studentId")
	if raw := ctx.Query("below"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			util.BadRequest(ctx, "below must be a number")
			return
		}
		weak, err := c.Results.WeakCategories(ctx.Request.Context(), studentID, threshold)
		if err != nil {
			util.HandleError(ctx, err)
			return
		}
		util.SuccessList(ctx, weak)
		return
	}

	results, err := c.Results.ListByStudent(ctx.Request.Context(), studentID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessList(ctx, results)
}

// @Summary Backfill studentObjectId on category results
// @Tags Analysis
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/category-results/migrate-student-ids [post]
func (c *AnalysisController) MigrateStudentIDs(ctx *gin.Context) {
	summary, err := c.Results.MigrateStudentObjectIDs(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Category results migrated", summary)
}

// @Summary A student's prescriptive analyses
// @Tags Analysis
// @Produce json
// @Param studentId path string true "Student ObjectId or idNumber"
// @Param category query string false "Restrict to one category"
// @Success 200 {object} util.Response
// @Router /api/prescriptive-analysis/student/{studentId} [get]
func (c *AnalysisController) PrescriptiveAnalyses(ctx *gin.Context) {
	studentID := ctx.Param("studentId")
	if category := ctx.Query("category"); category != "" {
		pa, err := c.Analyses.FindByStudentAndCategory(ctx.Request.Context(), studentID, category)
		if err != nil {
			util.HandleError(ctx, err)
			return
		}
		util.Success(ctx, pa)
		return
	}

	items, err := c.Analyses.ListByStudent(ctx.Request.Context(), studentID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessList(ctx, items)
}

// @Summary Create or replace a prescriptive analysis
// @Tags Analysis
// @Accept json
// @Produce json
// @Param body body service.UpsertAnalysisRequest true "Analysis"
// @Success 200 {object} util.Response
// @Router /api/prescriptive-analysis [put]
func (c *AnalysisController) UpsertPrescriptiveAnalysis(ctx *gin.Context) {
	var req service.UpsertAnalysisRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindError(ctx, err)
		return
	}
	pa, err := c.Analyses.Upsert(ctx.Request.Context(), req, actorID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Prescriptive analysis saved", pa)
}
