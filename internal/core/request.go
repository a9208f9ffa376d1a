// AngelaMos | 2026
// request.go

package core

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeJSON reads a JSON request body into dst and validates its struct
// tags. On failure it writes a 400 and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			JSONError(w, NewAppError(err, "request body too large",
				http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE"))
			return false
		}
		BadRequest(w, "invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		BadRequest(w, FormatValidationError(err))
		return false
	}
	return true
}
