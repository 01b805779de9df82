// Package errors defines the error taxonomy shared by the rendering pipeline,
// the component registry and the query layer.
//
// Parse and build failures are fatal to the call that produced them. Query
// and cache failures are meant to be logged and degraded by the immediate
// caller. Component lookup failures let the caller pick a fallback.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeParse          ErrorType = "parse"
	ErrorTypeComponent      ErrorType = "component"
	ErrorTypeQuery          ErrorType = "query"
	ErrorTypeCache          ErrorType = "cache"
	ErrorTypeTransformation ErrorType = "transformation"
	ErrorTypeRender         ErrorType = "render"
	ErrorTypeConfig         ErrorType = "config"
	ErrorTypeIO             ErrorType = "io"
)

// Sentinel errors, one per ErrorType. errors.Is(err, ErrParse) matches any
// WikiError of type parse in the chain.
var (
	ErrParse           = errors.New("parse failure")
	ErrComponentLookup = errors.New("component lookup failure")
	ErrQuery           = errors.New("query failure")
	ErrCache           = errors.New("cache failure")
	ErrTransformation  = errors.New("transformation failure")
	ErrRender          = errors.New("render failure")
	ErrConfig          = errors.New("invalid configuration")
	ErrIO              = errors.New("i/o failure")
)

var sentinels = map[ErrorType]error{
	ErrorTypeParse:          ErrParse,
	ErrorTypeComponent:      ErrComponentLookup,
	ErrorTypeQuery:          ErrQuery,
	ErrorTypeCache:          ErrCache,
	ErrorTypeTransformation: ErrTransformation,
	ErrorTypeRender:         ErrRender,
	ErrorTypeConfig:         ErrConfig,
	ErrorTypeIO:             ErrIO,
}

// Common error codes.
const (
	ErrCodeSyntax             = "ERR_SYNTAX"
	ErrCodeUnbalancedEvents   = "ERR_UNBALANCED_EVENTS"
	ErrCodeEmptyReference     = "ERR_EMPTY_REFERENCE"
	ErrCodeBrokenReference    = "ERR_BROKEN_REFERENCE"
	ErrCodeComponentNotFound  = "ERR_COMPONENT_NOT_FOUND"
	ErrCodeCircularDependency = "ERR_CIRCULAR_DEPENDENCY"
	ErrCodeFactoryFailed      = "ERR_FACTORY_FAILED"
	ErrCodeQuerySyntax        = "ERR_QUERY_SYNTAX"
	ErrCodeUnknownAlias       = "ERR_UNKNOWN_ALIAS"
	ErrCodeQueryExecution     = "ERR_QUERY_EXECUTION"
	ErrCodeCacheInit          = "ERR_CACHE_INIT"
	ErrCodeMacroNotFound      = "ERR_MACRO_NOT_FOUND"
	ErrCodeMacroFailed        = "ERR_MACRO_FAILED"
	ErrCodeMacroDepth         = "ERR_MACRO_DEPTH"
	ErrCodeTransformFailed    = "ERR_TRANSFORM_FAILED"
	ErrCodeRenderFailed       = "ERR_RENDER_FAILED"
	ErrCodeConfigInvalid      = "ERR_CONFIG_INVALID"
	ErrCodeFileNotFound       = "ERR_FILE_NOT_FOUND"
	ErrCodeIO                 = "ERR_IO"
)

// WikiError is a structured error type with context.
type WikiError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Line        int
	Column      int
	Recoverable bool
}

// Error implements the error interface.
func (e *WikiError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Line > 0 {
		location := fmt.Sprintf("line %d", e.Line)
		if e.Column > 0 {
			location += fmt.Sprintf(":%d", e.Column)
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *WikiError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel of the error's type, or another WikiError with the
// same type and code.
func (e *WikiError) Is(target error) bool {
	if sentinel, ok := sentinels[e.Type]; ok && target == sentinel {
		return true
	}

	var t *WikiError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *WikiError) WithContext(key string, value interface{}) *WikiError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithLocation adds source position information.
func (e *WikiError) WithLocation(line, column int) *WikiError {
	e.Line = line
	e.Column = column

	return e
}

// Error creation functions

// NewParseError creates a parse error. Parse errors abort the parse call.
func NewParseError(code, message string, cause error) *WikiError {
	return &WikiError{
		Type:        ErrorTypeParse,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewComponentLookupError creates a component lookup error for a role/hint.
func NewComponentLookupError(role, hint string, cause error) *WikiError {
	msg := fmt.Sprintf("can't find descriptor for the component with role [%s] and hint [%s]", role, hint)
	return (&WikiError{
		Type:        ErrorTypeComponent,
		Code:        ErrCodeComponentNotFound,
		Message:     msg,
		Cause:       cause,
		Recoverable: true,
	}).WithContext("role", role).WithContext("hint", hint)
}

// NewComponentError creates a component error with an explicit code.
func NewComponentError(code, message string, cause error) *WikiError {
	return &WikiError{
		Type:        ErrorTypeComponent,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewQueryError creates a query error.
func NewQueryError(code, message string, cause error) *WikiError {
	return &WikiError{
		Type:        ErrorTypeQuery,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewCacheError creates a cache error.
func NewCacheError(code, message string, cause error) *WikiError {
	return &WikiError{
		Type:        ErrorTypeCache,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewTransformationError creates a transformation error.
func NewTransformationError(code, message string, cause error) *WikiError {
	return &WikiError{
		Type:        ErrorTypeTransformation,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewRenderError creates a render error.
func NewRenderError(code, message string, cause error) *WikiError {
	return &WikiError{
		Type:        ErrorTypeRender,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *WikiError {
	return &WikiError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// IsParseError reports whether err is, or wraps, a parse error.
func IsParseError(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsComponentLookupError reports whether err is, or wraps, a lookup error.
func IsComponentLookupError(err error) bool {
	return errors.Is(err, ErrComponentLookup)
}

// IsQueryError reports whether err is, or wraps, a query error.
func IsQueryError(err error) bool {
	return errors.Is(err, ErrQuery)
}

// IsCacheError reports whether err is, or wraps, a cache error.
func IsCacheError(err error) bool {
	return errors.Is(err, ErrCache)
}

// IsTransformationError reports whether err is, or wraps, a transformation
// error.
func IsTransformationError(err error) bool {
	return errors.Is(err, ErrTransformation)
}

// IsRenderError reports whether err is, or wraps, a render error.
func IsRenderError(err error) bool {
	return errors.Is(err, ErrRender)
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var we *WikiError
	if errors.As(err, &we) {
		return we.Recoverable
	}

	return false
}
