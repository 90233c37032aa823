package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeStorageError       ErrorCode = "COMMON_015"
	ErrCodeMessageQueueError  ErrorCode = "COMMON_016"
	ErrCodeInvalidState       ErrorCode = "COMMON_017"
	ErrCodeNotImplemented     ErrorCode = "COMMON_018"
)

// Aliases used at call sites that predate the ErrCode prefix.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Design Module Error Codes
const (
	ErrCodeDesignNotFound        ErrorCode = "DESIGN_001"
	ErrCodeDesignVersionConflict ErrorCode = "DESIGN_002"
	ErrCodeDesignNotReady        ErrorCode = "DESIGN_003"
	ErrCodeSnapshotInvalid       ErrorCode = "DESIGN_004"
	ErrCodeProductColorInvalid   ErrorCode = "DESIGN_005"
	ErrCodeDesignLocked          ErrorCode = "DESIGN_006"
)

// Logo Module Error Codes
const (
	ErrCodeLogoNotFound        ErrorCode = "LOGO_001"
	ErrCodeLogoDuplicate       ErrorCode = "LOGO_002"
	ErrCodeLogoDecodeFailed    ErrorCode = "LOGO_003"
	ErrCodeLogoTooLarge        ErrorCode = "LOGO_004"
	ErrCodeLogoUnsupportedType ErrorCode = "LOGO_005"
)

// Location / Catalog Module Error Codes
const (
	ErrCodeLocationUnknown    ErrorCode = "LOCATION_001"
	ErrCodeProductTypeUnknown ErrorCode = "LOCATION_002"
	ErrCodeCatalogInvalid     ErrorCode = "LOCATION_003"
)

// Render Module Error Codes
const (
	ErrCodeTextureSynthesisFailed ErrorCode = "RENDER_001"
	ErrCodeTextureEncodeFailed    ErrorCode = "RENDER_002"
	ErrCodeTextureFormatInvalid   ErrorCode = "RENDER_003"
)

// Pricing Module Error Codes
const (
	ErrCodeQuantityInvalid   ErrorCode = "PRICING_001"
	ErrCodeBasePriceMissing  ErrorCode = "PRICING_002"
	ErrCodeQuoteRequestKind  ErrorCode = "PRICING_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeMessageQueueError:  http.StatusInternalServerError,
	ErrCodeInvalidState:       http.StatusConflict,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeDesignNotFound:        http.StatusNotFound,
	ErrCodeDesignVersionConflict: http.StatusConflict,
	ErrCodeDesignNotReady:        http.StatusConflict,
	ErrCodeSnapshotInvalid:       http.StatusBadRequest,
	ErrCodeProductColorInvalid:   http.StatusBadRequest,
	ErrCodeDesignLocked:          http.StatusLocked,

	ErrCodeLogoNotFound:        http.StatusNotFound,
	ErrCodeLogoDuplicate:       http.StatusConflict,
	ErrCodeLogoDecodeFailed:    http.StatusUnprocessableEntity,
	ErrCodeLogoTooLarge:        http.StatusRequestEntityTooLarge,
	ErrCodeLogoUnsupportedType: http.StatusUnsupportedMediaType,

	ErrCodeLocationUnknown:    http.StatusBadRequest,
	ErrCodeProductTypeUnknown: http.StatusNotFound,
	ErrCodeCatalogInvalid:     http.StatusInternalServerError,

	ErrCodeTextureSynthesisFailed: http.StatusInternalServerError,
	ErrCodeTextureEncodeFailed:    http.StatusInternalServerError,
	ErrCodeTextureFormatInvalid:   http.StatusBadRequest,

	ErrCodeQuantityInvalid:  http.StatusBadRequest,
	ErrCodeBasePriceMissing: http.StatusUnprocessableEntity,
	ErrCodeQuoteRequestKind: http.StatusBadRequest,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeMessageQueueError:  "message queue error",
	ErrCodeInvalidState:       "invalid state for operation",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeDesignNotFound:        "design not found",
	ErrCodeDesignVersionConflict: "design was modified concurrently",
	ErrCodeDesignNotReady:        "design is not ready",
	ErrCodeSnapshotInvalid:       "invalid design snapshot",
	ErrCodeProductColorInvalid:   "invalid product color",
	ErrCodeDesignLocked:          "design is locked by another request",

	ErrCodeLogoNotFound:        "logo not found",
	ErrCodeLogoDuplicate:       "logo already registered",
	ErrCodeLogoDecodeFailed:    "logo image could not be decoded",
	ErrCodeLogoTooLarge:        "logo image too large",
	ErrCodeLogoUnsupportedType: "unsupported logo image type",

	ErrCodeLocationUnknown:    "unknown placement location",
	ErrCodeProductTypeUnknown: "unknown product type",
	ErrCodeCatalogInvalid:     "invalid location catalog",

	ErrCodeTextureSynthesisFailed: "texture synthesis failed",
	ErrCodeTextureEncodeFailed:    "texture encoding failed",
	ErrCodeTextureFormatInvalid:   "unsupported texture format",

	ErrCodeQuantityInvalid:  "quantity must be at least one",
	ErrCodeBasePriceMissing: "no base price for product type",
	ErrCodeQuoteRequestKind: "unsupported quote request kind",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
