package data

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError marks input rejected at the request boundary before
// any inference runs. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ValidateRequest checks one prediction request against the boundary
// contract: at least 24 readings, none negative, sensor id 1-50 chars.
func ValidateRequest(req *PredictionRequest) error {
	return translate(validate.Struct(req))
}

// ValidateBatch checks every sensor in the batch. One malformed item
// rejects the whole batch; nothing is partially accepted.
func ValidateBatch(req *BatchPredictionRequest) error {
	return translate(validate.Struct(req))
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return &ValidationError{Field: "request", Reason: err.Error()}
	}
	fe := errs[0]
	reason := ""
	switch fe.Tag() {
	case "required":
		reason = "field is required"
	case "min":
		reason = fmt.Sprintf("must have at least %s elements or characters", fe.Param())
	case "max":
		reason = fmt.Sprintf("must have at most %s characters", fe.Param())
	case "gte":
		reason = "energy usage values cannot be negative"
	default:
		reason = fmt.Sprintf("failed %s constraint", fe.Tag())
	}
	return &ValidationError{Field: fe.Namespace(), Reason: reason}
}
