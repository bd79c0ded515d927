package bridge

import "fmt"

// Code identifies a dispatch-level failure kind. The set is closed; module
// handlers signal anything else as a plain error and the dispatcher wraps it
// as CodeModuleError.
type Code string

const (
	CodeUnknownModule        Code = "UNKNOWN_MODULE"
	CodeUnknownAction        Code = "UNKNOWN_ACTION"
	CodeInvalidPayload       Code = "INVALID_PAYLOAD"
	CodeModuleError          Code = "MODULE_ERROR"
	CodeInvalidMessageFormat Code = "INVALID_MESSAGE_FORMAT"
)

// Error is a structured dispatch error. Message is the human-readable string
// that ends up in the Response error field.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// UnknownModule reports a request for a module not present in the registry.
func UnknownModule(name string) *Error {
	return &Error{Code: CodeUnknownModule, Message: fmt.Sprintf("Unknown module: %s", name)}
}

// UnknownAction reports an action outside the resolved module's supported set.
func UnknownAction(action string) *Error {
	return &Error{Code: CodeUnknownAction, Message: fmt.Sprintf("Unknown action: %s", action)}
}

// InvalidPayload reports a structurally wrong payload. Module handlers return
// this so the dispatcher formats the message directly instead of wrapping it.
func InvalidPayload(reason string) *Error {
	return &Error{Code: CodeInvalidPayload, Message: fmt.Sprintf("Invalid payload: %s", reason)}
}

// ModuleError wraps an arbitrary handler failure.
func ModuleError(err error) *Error {
	return &Error{Code: CodeModuleError, Message: fmt.Sprintf("Module error: %v", err)}
}

// InvalidMessageFormat reports raw text that did not parse into a Request.
func InvalidMessageFormat(reason string) *Error {
	return &Error{Code: CodeInvalidMessageFormat, Message: fmt.Sprintf("Invalid message format: %s", reason)}
}
