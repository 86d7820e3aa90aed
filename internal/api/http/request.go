package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/taskdeck/taskdeck/pkg/httpx"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeAndValidate decodes a JSON body into v and runs struct validation.
// On failure it writes the error response and returns false; handlers just
// bail out.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		httpx.WriteFieldErrors(w, validationFields(err))
		return false
	}
	return true
}

// validationFields flattens validator errors into field -> message pairs.
func validationFields(err error) map[string]string {
	fields := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["body"] = "invalid request"
		return fields
	}

	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = "is required"
		case "email":
			fields[name] = "must be a valid email address"
		case "min":
			fields[name] = "must be at least " + fe.Param() + " characters"
		case "max":
			fields[name] = "must be at most " + fe.Param() + " characters"
		case "gte":
			fields[name] = "must be at least " + fe.Param()
		default:
			fields[name] = "is invalid"
		}
	}
	return fields
}
