package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	GatewayErrorBadInput           = "GATEWAY_BAD_INPUT"
	GatewayErrorNotFound           = "GATEWAY_NOT_FOUND"
	GatewayErrorUnauthorized       = "GATEWAY_UNAUTHORIZED"
	GatewayErrorScopeNotAuthorized = "GATEWAY_SCOPE_NOT_AUTHORIZED"
	GatewayErrorNoTokenForScope    = "GATEWAY_NO_TOKEN_FOR_SCOPE"
	GatewayErrorTokenExpired       = "GATEWAY_TOKEN_EXPIRED"
	GatewayErrorDriverNotFound     = "GATEWAY_DRIVER_NOT_FOUND"
	GatewayErrorMethodNotSupported = "GATEWAY_METHOD_NOT_SUPPORTED"
	GatewayErrorUpstreamRefresh    = "GATEWAY_UPSTREAM_REFRESH_FAILED"
	GatewayErrorOperationFailed    = "GATEWAY_OPERATION_FAILED"
	GatewayErrorInternal           = "GATEWAY_INTERNAL_ERROR"
)

func scopeNotAuthorizedError(scopes []string) *goerrors.Error {
	return gatewayError(
		"core: scope not authorized: "+strings.Join(scopes, ", "),
		goerrors.CategoryAuthz,
		http.StatusForbidden,
		GatewayErrorScopeNotAuthorized,
		map[string]any{"scopes": append([]string(nil), scopes...)},
	)
}

func noTokenForScopeError(scope string) *goerrors.Error {
	return gatewayError(
		"core: no token for scope "+scope,
		goerrors.CategoryAuthz,
		http.StatusForbidden,
		GatewayErrorNoTokenForScope,
		map[string]any{"scope": scope},
	)
}

func tokenExpiredError(tokenID string) *goerrors.Error {
	return gatewayError(
		"core: token is expired",
		goerrors.CategoryAuth,
		http.StatusUnauthorized,
		GatewayErrorTokenExpired,
		map[string]any{"token_id": tokenID},
	)
}

// DriverNotFoundError signals a location naming a driver nobody
// registered. This is a server-side configuration fault, not caller
// error.
func DriverNotFoundError(name string) *goerrors.Error {
	return gatewayError(
		"core: driver "+name+" is not registered",
		goerrors.CategoryInternal,
		http.StatusInternalServerError,
		GatewayErrorDriverNotFound,
		map[string]any{"driver": name},
	)
}

// MethodNotSupportedError signals a driver lacking the requested
// capability. It maps to a client error, never a server fault.
func MethodNotSupportedError(driver string, method string) *goerrors.Error {
	return gatewayError(
		"core: driver "+driver+" does not support "+method,
		goerrors.CategoryOperation,
		http.StatusMethodNotAllowed,
		GatewayErrorMethodNotSupported,
		map[string]any{"driver": driver, "method": method},
	)
}

func gatewayError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) *goerrors.Error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func serviceErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureGatewayErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "not found"):
		return newGatewayError(err.Error(), goerrors.CategoryNotFound, GatewayErrorNotFound)
	case strings.Contains(msg, "not registered"):
		return newGatewayError(err.Error(), goerrors.CategoryInternal, GatewayErrorDriverNotFound)
	case strings.Contains(msg, "does not support"):
		return newGatewayError(err.Error(), goerrors.CategoryOperation, GatewayErrorMethodNotSupported)
	case strings.Contains(msg, "expired"):
		return newGatewayError(err.Error(), goerrors.CategoryAuth, GatewayErrorTokenExpired)
	case strings.Contains(msg, "upstream"):
		return newGatewayError(err.Error(), goerrors.CategoryExternal, GatewayErrorUpstreamRefresh)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newGatewayError(err.Error(), goerrors.CategoryBadInput, GatewayErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureGatewayErrorEnvelope(mapped)
}

func newGatewayError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureGatewayErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureGatewayErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = gatewayHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultGatewayTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultGatewayTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return GatewayErrorBadInput
	case goerrors.CategoryNotFound:
		return GatewayErrorNotFound
	case goerrors.CategoryAuth:
		return GatewayErrorUnauthorized
	case goerrors.CategoryAuthz:
		return GatewayErrorScopeNotAuthorized
	case goerrors.CategoryOperation:
		return GatewayErrorOperationFailed
	case goerrors.CategoryExternal:
		return GatewayErrorUpstreamRefresh
	default:
		return GatewayErrorInternal
	}
}

func gatewayHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsScopeNotAuthorized reports whether the error is a scope
// authorization failure.
func IsScopeNotAuthorized(err error) bool {
	return hasTextCode(err, GatewayErrorScopeNotAuthorized)
}

// IsNoTokenForScope reports whether the error aborted issuance because
// the owning user cannot satisfy a requested scope.
func IsNoTokenForScope(err error) bool {
	return hasTextCode(err, GatewayErrorNoTokenForScope)
}

// IsMethodNotSupported reports whether a driver lacked the requested
// capability.
func IsMethodNotSupported(err error) bool {
	return hasTextCode(err, GatewayErrorMethodNotSupported)
}

// IsDriverNotFound reports whether a location named an unregistered
// driver.
func IsDriverNotFound(err error) bool {
	return hasTextCode(err, GatewayErrorDriverNotFound)
}

func hasTextCode(err error, textCode string) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == textCode
}
