package graph

import (
	"errors"
	"math"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "lakemap/backend/pkg/errors"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("finite", isFinite)
	})
	return validate
}

// isFinite rejects NaN and the infinities, which the store would keep but no
// JSON reader could render.
func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// validateRequest runs the struct tags on req and reports the first failing
// field as an ErrValidation for entity.
func validateRequest(entity string, req any) error {
	err := structValidator().Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewValidation(entity, "request", err.Error())
	}
	fe := fieldErrs[0]
	return apperrors.NewValidation(entity, fieldName(fe.Namespace()), describeTag(fe))
}

// fieldName strips the struct name: "CreateRouteRequest.PointIDs[1]" -> "PointIDs[1]".
func fieldName(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be an email address"
	case "url":
		return "must be a URL"
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "finite":
		return "must be a finite number"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	}
	return "failed " + fe.Tag() + " check"
}
