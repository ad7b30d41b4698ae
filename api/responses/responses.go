package responses

import (
	"encoding/json"
	"net/http"

	pkgerrors "github.com/hkb-commerce/storefront-backend/pkg/errors"
	"github.com/hkb-commerce/storefront-backend/pkg/logger"
	"github.com/hkb-commerce/storefront-backend/pkg/types"
)

// WriteSuccess writes the success envelope with the given status.
func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.SuccessEnvelope{Data: data})
}

// WriteError maps the error to its code's status and public message.
// Internal detail is logged, never returned.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code := pkgerrors.CodeOf(err)

	apiErr := types.APIError{
		Code:    string(code),
		Message: code.PublicMessage(),
	}
	if coded, ok := pkgerrors.As(err); ok && code.DetailsAllowed() {
		apiErr.Message = coded.Message
		if len(coded.Metadata) > 0 {
			apiErr.Details = coded.Metadata
		}
	}

	if code.HTTPStatus() >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).WithFields(pkgerrors.Dump(err)).Error(err, "request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code.HTTPStatus())
	_ = json.NewEncoder(w).Encode(types.ErrorEnvelope{Error: apiErr})
}
