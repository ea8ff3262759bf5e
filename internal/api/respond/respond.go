// Package respond centralizes JSON response and error-mapping helpers for
// the HTTP handlers.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// JSON writes v as a JSON body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields []faults.FieldError `json:"fields,omitempty"`
}

// Error maps a domain error onto the wire: validation failures carry their
// field list, everything else follows the faults taxonomy.
func Error(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}
	var v *faults.ValidationError
	if errors.As(err, &v) {
		body.Fields = v.Fields
	}
	JSON(w, faults.HTTPStatus(err), body)
}
