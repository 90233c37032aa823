// Package errors carries the customizer's one structured error type.  Every
// layer returns *AppError so the HTTP and gRPC edges can map a code to a
// status without string matching.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const stackDepth = 32

// AppError is a coded error with an optional cause.
//
//	return errors.New(errors.ErrCodeDesignNotFound, "design not found").WithDetail("id=" + id)
//	return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load design")
type AppError struct {
	Code    ErrorCode
	Message string
	// Detail is debugging context such as ids.  It is part of Error() but the
	// HTTP layer never shows it to shoppers.
	Detail string
	Cause  error
	// Stack is where the error was created.  Loggers read it; Error() does not.
	Stack string
}

// Error renders "[CODE] message" or "[CODE] message: detail".
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(e.Code.String())
	b.WriteString("] ")
	b.WriteString(e.Message)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// ErrorCode lets packages that cannot import this one (logging) read the code.
func (e *AppError) ErrorCode() string { return string(e.Code) }

func (e *AppError) Unwrap() error { return e.Cause }

// WithDetail returns a copy with Detail set.  Sentinels stay untouched.
func (e *AppError) WithDetail(detail string) *AppError {
	return e.derive(func(c *AppError) { c.Detail = detail })
}

// WithCause returns a copy with Cause set.
func (e *AppError) WithCause(err error) *AppError {
	return e.derive(func(c *AppError) { c.Cause = err })
}

func (e *AppError) derive(edit func(*AppError)) *AppError {
	if e == nil {
		return nil
	}
	c := *e
	edit(&c)
	return &c
}

// ─────────────────────────────────────────────────────────────────────────────
// Construction
// ─────────────────────────────────────────────────────────────────────────────

// build is called directly by every exported constructor, so the first
// recorded frame is always the constructor's caller.
func build(code ErrorCode, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause, Stack: callerStack()}
}

// callerStack skips runtime.Callers, callerStack, build and the constructor.
func callerStack() string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(4, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var b strings.Builder
	for n > 0 {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&b, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return b.String()
}

func New(code ErrorCode, message string) *AppError { return build(code, message, nil) }

func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return build(code, fmt.Sprintf(format, args...), nil)
}

// Wrap returns nil for a nil err, so it can wrap a call's result inline.
// CodeUnknown keeps the code of an AppError already in err's chain.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		code = GetCode(err)
	}
	return build(code, message, err)
}

func NotFound(message string) *AppError     { return build(CodeNotFound, message, nil) }
func InvalidParam(message string) *AppError { return build(CodeInvalidParam, message, nil) }
func Internal(message string) *AppError     { return build(CodeInternal, message, nil) }
func Conflict(message string) *AppError     { return build(CodeConflict, message, nil) }
func RateLimit(message string) *AppError    { return build(CodeRateLimit, message, nil) }

// InvalidState reports an operation whose precondition on aggregate state
// does not hold.
func InvalidState(message string) *AppError { return build(ErrCodeInvalidState, message, nil) }

func Unavailable(message string) *AppError { return build(ErrCodeServiceUnavailable, message, nil) }

// ─────────────────────────────────────────────────────────────────────────────
// Inspection
// ─────────────────────────────────────────────────────────────────────────────

// anyCode walks err's chain, testing every AppError on it, including ones
// wrapped beneath another AppError.
func anyCode(err error, match func(ErrorCode) bool) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && match(ae.Code) {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

func hasStatus(statuses ...int) func(ErrorCode) bool {
	return func(c ErrorCode) bool {
		s := HTTPStatusForCode(c)
		for _, want := range statuses {
			if s == want {
				return true
			}
		}
		return false
	}
}

func IsCode(err error, code ErrorCode) bool {
	return anyCode(err, func(c ErrorCode) bool { return c == code })
}

func IsNotFound(err error) bool   { return anyCode(err, hasStatus(404)) }
func IsValidation(err error) bool { return anyCode(err, hasStatus(400, 422)) }
func IsConflict(err error) bool   { return anyCode(err, hasStatus(409)) }

// GetCode is the code of the outermost AppError, CodeOK for nil and
// CodeUnknown when err carries none.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// Is and As mirror the standard library so callers need one errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target interface{}) bool { return errors.As(err, target) }

//Personal.AI order the ending
