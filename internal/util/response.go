package util

import (
	"errors"
	"net/http"

	"literacy_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success          bool         `json:"success"`
	Data             interface{}  `json:"data,omitempty"`
	Message          string       `json:"message,omitempty"`
	Error            string       `json:"error,omitempty"`
	Count            *int         `json:"count,omitempty"`
	ErrorType        string       `json:"errorType,omitempty"`
	ValidationErrors []FieldError `json:"validationErrors,omitempty"`
	CastError        *CastError   `json:"castError,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// SuccessList also reports the number of items.
func SuccessList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	c.JSON(http.StatusOK, Response{Success: true, Data: items, Count: &n})
}

func SuccessMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{Success: false, Message: message})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Error(c, http.StatusNotFound, message)
}

func InternalServerError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Message: "Internal server error",
		Error:   "Internal server error",
	})
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	InternalServerError(c)
}

// BindError answers a failed ShouldBindJSON with per-field details when the
// validator produced them.
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Message: "failed on '" + fe.Tag() + "'"})
		}
		c.JSON(http.StatusBadRequest, Response{
			Success:          false,
			Message:          "Validation failed",
			ErrorType:        "ValidationError",
			ValidationErrors: fields,
		})
		return
	}
	BadRequest(c, "Invalid request body: "+err.Error())
}

// HandleError maps service errors onto the envelope and status codes.
func HandleError(c *gin.Context, err error) {
	var verr *ValidationError
	var cerr *CastError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, Response{
			Success:          false,
			Message:          verr.Error(),
			ErrorType:        "ValidationError",
			ValidationErrors: verr.Fields,
		})
	case errors.As(err, &cerr):
		c.JSON(http.StatusBadRequest, Response{
			Success:   false,
			Message:   cerr.Error(),
			ErrorType: "CastError",
			CastError: cerr,
		})
	case errors.Is(err, ErrStudentNotFound),
		errors.Is(err, ErrPlanNotFound),
		errors.Is(err, ErrNotFound):
		NotFound(c, rootMessage(err))
	case errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrChoiceNotFound):
		BadRequest(c, rootMessage(err))
	case errors.Is(err, ErrPlanLocked),
		errors.Is(err, ErrPlanCompleted),
		errors.Is(err, ErrInvalidTransition):
		Error(c, http.StatusConflict, rootMessage(err))
	case errors.Is(err, ErrPermissionDenied):
		Forbidden(c)
	default:
		LogInternalError(c, err)
	}
}

func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
