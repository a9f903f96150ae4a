package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared across handlers; field paths in error details use the
// JSON names, not the Go struct names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldDetail is one entry of a validation-error detail list.
type fieldDetail struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// decodeAndValidate parses the request body into dst and validates it against
// its schema tags. A nil return means the request is well-formed; otherwise
// the details describe every offending field.
func decodeAndValidate(r *http.Request, dst interface{}) []fieldDetail {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			path := typeErr.Field
			if path == "" {
				path = "body"
			}
			return []fieldDetail{{
				Path:    path,
				Message: fmt.Sprintf("expected %s", typeErr.Type.String()),
			}}
		}
		return []fieldDetail{{Path: "body", Message: "invalid JSON"}}
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return []fieldDetail{{Path: "body", Message: "invalid request"}}
		}
		details := make([]fieldDetail, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, fieldDetail{
				Path:    fieldPath(fe),
				Message: fieldMessage(fe),
			})
		}
		return details
	}
	return nil
}

// fieldPath strips the root struct name from the validator namespace,
// leaving e.g. "messages[0].role".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s items", fe.Param())
	case "max":
		return fmt.Sprintf("exceeds the maximum of %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "uuid4":
		return "must be a valid UUID"
	default:
		return fmt.Sprintf("failed the %s rule", fe.Tag())
	}
}

// writeValidationError writes the structured 400 response for a malformed
// request body.
func writeValidationError(w http.ResponseWriter, details []fieldDetail) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":   "Validation error",
		"details": details,
	})
}
