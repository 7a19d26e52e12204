package transport

import (
	"encoding/json"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-gateway/core"
)

func transportError(
	message string,
	category goerrors.Category,
	code int,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return core.GatewayErrorBadInput
	case goerrors.CategoryNotFound:
		return core.GatewayErrorNotFound
	case goerrors.CategoryAuth:
		return core.GatewayErrorUnauthorized
	case goerrors.CategoryAuthz:
		return core.GatewayErrorScopeNotAuthorized
	case goerrors.CategoryOperation:
		return core.GatewayErrorOperationFailed
	case goerrors.CategoryExternal:
		return core.GatewayErrorUpstreamRefresh
	default:
		return core.GatewayErrorInternal
	}
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message  string `json:"message"`
	TextCode string `json:"text_code,omitempty"`
}

// WriteError renders an error as the JSON envelope shared by both
// transports, falling back to a 500 for errors with no envelope.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Message: "An unexpected error occurred"}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if richErr.Code > 0 {
			status = richErr.Code
		}
		body.Message = richErr.Message
		body.TextCode = richErr.TextCode
	} else if err != nil {
		body.Message = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorEnvelope{Error: body})
}
