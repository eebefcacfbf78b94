package service

import (
	"errors"
	"fmt"
	"sync"

	"literacy_backend/internal/util"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// validateStruct runs the same `binding` tags gin checks, so callers that do
// not come through HTTP get identical validation.
func validateStruct(v interface{}) error {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")
	})
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]util.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, util.FieldError{
			Field:   fe.Namespace(),
			Message: fmt.Sprintf("failed on '%s'", fe.Tag()),
		})
	}
	return util.NewValidationError("", fields...)
}

// parseObjectID converts a hex id, reporting failures the way the HTTP layer
// expects them.
func parseObjectID(path, value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, &util.CastError{Path: path, Value: value, Kind: "ObjectId"}
	}
	return id, nil
}

func parseOptionalObjectID(path, value string) (*primitive.ObjectID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := parseObjectID(path, value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
