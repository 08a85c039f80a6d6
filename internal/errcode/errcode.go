// Package errcode enumerates the fixed outcome codes the REPL maps to
// the exact user-facing strings the system promises.
package errcode

// Code classifies a parse- or execute-time failure the REPL must report
// with one of a fixed set of outcome strings.
type Code int

const (
	SyntaxError Code = iota
	TableNotFound
	NegativeID
	StringTooLong
	UnrecognizedStatement
	InternalError
	TableFull
)

func (c Code) String() string {
	switch c {
	case SyntaxError:
		return "SYNTAX_ERROR"
	case TableNotFound:
		return "TABLE_NOT_FOUND"
	case NegativeID:
		return "NEGATIVE_ID"
	case StringTooLong:
		return "STRING_TOO_LONG"
	case UnrecognizedStatement:
		return "UNRECOGNIZED_STATEMENT"
	case InternalError:
		return "INTERNAL_ERROR"
	case TableFull:
		return "TABLE_FULL"
	default:
		return "UNKNOWN"
	}
}

// Error wraps a Code with the offending input line so callers can render
// both a fixed outcome string and (for the unrecognized-keyword case) the
// original line.
type Error struct {
	Code Code
	Line string
}

func (e *Error) Error() string {
	return e.Code.String() + ": " + e.Line
}

// New builds an *Error for code, capturing line for messages that embed
// the original input.
func New(code Code, line string) *Error {
	return &Error{Code: code, Line: line}
}
