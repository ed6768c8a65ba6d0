package engine

import "fmt"

// ErrorCode classifies a rule rejection.
type ErrorCode string

const (
	CodePlayerNotFound ErrorCode = "PlayerNotFound"
	CodeRoomNotFound   ErrorCode = "RoomNotFound"
	CodeNotEnoughAP    ErrorCode = "NotEnoughAP"
	CodeInvalidMove    ErrorCode = "InvalidMove"
	CodeRoomBlocked    ErrorCode = "RoomBlocked"
	CodeSilenced       ErrorCode = "Silenced"
	CodeInvalidItem    ErrorCode = "InvalidItem"
	CodeInventoryFull  ErrorCode = "InventoryFull"
	CodeWrongPhase     ErrorCode = "WrongPhase"
	CodeInvalidAction  ErrorCode = "InvalidAction"
)

// RuleError is returned by Engine.ApplyAction when the rules reject an
// action.
type RuleError struct {
	Code ErrorCode
	Msg  string
}

func (e *RuleError) Error() string {
	if e.Msg == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Msg
}

// Is matches any RuleError with the same code, so the sentinels below work
// with errors.Is.
func (e *RuleError) Is(target error) bool {
	t, ok := target.(*RuleError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrPlayerNotFound = &RuleError{Code: CodePlayerNotFound}
	ErrRoomNotFound   = &RuleError{Code: CodeRoomNotFound}
	ErrNotEnoughAP    = &RuleError{Code: CodeNotEnoughAP}
	ErrInvalidMove    = &RuleError{Code: CodeInvalidMove}
	ErrRoomBlocked    = &RuleError{Code: CodeRoomBlocked}
	ErrSilenced       = &RuleError{Code: CodeSilenced}
	ErrInvalidItem    = &RuleError{Code: CodeInvalidItem}
	ErrInventoryFull  = &RuleError{Code: CodeInventoryFull}
	ErrWrongPhase     = &RuleError{Code: CodeWrongPhase}
	ErrInvalidAction  = &RuleError{Code: CodeInvalidAction}
)

// Reject builds a RuleError with a formatted message.
func Reject(code ErrorCode, format string, args ...any) *RuleError {
	return &RuleError{Code: code, Msg: fmt.Sprintf(format, args...)}
}
