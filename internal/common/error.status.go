package common

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP status code constants used across handlers and the error taxonomy.
const (
	StatusOK        = 200
	StatusCreated   = 201
	StatusAccepted  = 202
	StatusNoContent = 204

	StatusBadRequest         = 400
	StatusUnauthorized       = 401
	StatusForbidden          = 403
	StatusNotFound           = 404
	StatusConflict           = 409
	StatusGone               = 410
	StatusPreconditionFailed = 412
	StatusTooManyRequests    = 429

	StatusInternalServerError = 500
	StatusNotImplemented      = 501
	StatusServiceUnavailable  = 503
	StatusGatewayTimeout      = 504
)

// ErrorCode identifies a class of failure in the catalog below.
type ErrorCode struct {
	Code        string // machine code, e.g. ORD_001
	Category    string
	SubCategory string
	Description string
}

var (
	// System errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "Internal system failure",
	}

	// Authentication errors (AUTH_xxx)
	ErrCodeAuthToken = ErrorCode{
		Code:        "AUTH_001",
		Category:    "Authentication",
		SubCategory: "Token",
		Description: "Bearer token missing, malformed or expired",
	}

	// Validation errors (VAL_xxx)
	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "Request input failed validation",
	}
	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "Payload format is not parseable",
	}

	// Database errors (DB_xxx)
	ErrCodeDatabase = ErrorCode{
		Code:        "DB_001",
		Category:    "Database",
		SubCategory: "General",
		Description: "Generic database failure",
	}
	ErrCodeDatabaseConnection = ErrorCode{
		Code:        "DB_002",
		Category:    "Database",
		SubCategory: "Connection",
		Description: "Store connectivity or configuration problem",
	}
	ErrCodeDatabaseQuery = ErrorCode{
		Code:        "DB_003",
		Category:    "Database",
		SubCategory: "Query",
		Description: "Query-level database failure",
	}

	// Order-core errors (ORD_xxx)
	ErrCodeOrderNotFound = ErrorCode{
		Code:        "ORD_001",
		Category:    "Order",
		SubCategory: "Resolution",
		Description: "Identifier resolved to zero orders",
	}
	ErrCodeOrderAmbiguous = ErrorCode{
		Code:        "ORD_002",
		Category:    "Order",
		SubCategory: "Resolution",
		Description: "Identifier resolved to more than one order",
	}
	ErrCodeOrderTransition = ErrorCode{
		Code:        "ORD_003",
		Category:    "Order",
		SubCategory: "State",
		Description: "Requested status is not reachable from the current status",
	}
	ErrCodePartialWrite = ErrorCode{
		Code:        "ORD_004",
		Category:    "Order",
		SubCategory: "Sync",
		Description: "One dual-write target failed while the other succeeded",
	}
	ErrCodeMalformedLegacy = ErrorCode{
		Code:        "ORD_005",
		Category:    "Order",
		SubCategory: "Legacy",
		Description: "Legacy record could not be fully normalized",
	}
)

// Error is the service-wide error shape. StatusCode maps the error onto HTTP
// at the handler boundary; Details carries structured context for logs.
type Error struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Details    any
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches two catalog errors by code so errors.Is works on wrapped values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code.Code == t.Code.Code
}

// NewError builds a catalog error with full context.
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Sentinel errors. Handlers and services compare with errors.Is.
var (
	ErrNotFound          = NewError(ErrCodeOrderNotFound, "No record matches the given identifier", StatusNotFound, nil)
	ErrAmbiguous         = NewError(ErrCodeOrderAmbiguous, "Identifier matches more than one record, a more specific identifier is required", StatusConflict, nil)
	ErrInvalidTransition = NewError(ErrCodeOrderTransition, "Order status transition is not allowed", StatusConflict, nil)
	ErrStoreUnavailable  = NewError(ErrCodeDatabaseConnection, "Record store is not available or not configured", StatusServiceUnavailable, nil)

	ErrInvalidInput  = NewError(ErrCodeValidationInput, "Request input is not valid", StatusBadRequest, nil)
	ErrInvalidFormat = NewError(ErrCodeValidationFormat, "Payload format is not valid", StatusBadRequest, nil)

	ErrTokenMissing = NewError(ErrCodeAuthToken, "Missing authentication token", StatusUnauthorized, nil)
	ErrTokenInvalid = NewError(ErrCodeAuthToken, "Authentication token is not valid", StatusUnauthorized, nil)

	ErrDuplicate = NewError(ErrCodeDatabaseQuery, "Record already exists", StatusConflict, nil)
)

// StatusOf extracts the HTTP status from a catalog error, defaulting to 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return StatusInternalServerError
}

// CodeOf extracts the machine code from a catalog error.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code.Code
	}
	return ErrCodeInternalServer.Code
}

// ConvertMongoError maps driver errors onto the catalog. Document-absence maps
// to ErrNotFound; connectivity problems map to ErrStoreUnavailable so callers
// can tell a config/network fault apart from a data fault.
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	var catalogErr *Error
	if errors.As(err, &catalogErr) {
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return NewError(ErrCodeDatabaseConnection, "MongoDB is unreachable", StatusServiceUnavailable, err)
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch {
		case cmdErr.Code >= 100 && cmdErr.Code < 200:
			return NewError(ErrCodeDatabaseConnection, "MongoDB connection error", StatusServiceUnavailable, err)
		default:
			return NewError(ErrCodeDatabaseQuery, "MongoDB command error", StatusInternalServerError, err)
		}
	}

	return NewError(ErrCodeDatabase, "Database operation failed", StatusInternalServerError, err)
}
